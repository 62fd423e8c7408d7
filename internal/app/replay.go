package app

import (
	"bufio"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/fsnotify/fsnotify"

	"github.com/iranmap/inventory-bot/internal/config"
	"github.com/iranmap/inventory-bot/internal/parser"
)

// Per-file read offsets so only appended lines get processed
var (
	replayOffsets    = make(map[string]int64)
	replayOffsetsMux sync.RWMutex
)

func getReplayOffset(path string) int64 {
	replayOffsetsMux.RLock()
	defer replayOffsetsMux.RUnlock()
	return replayOffsets[path]
}

func setReplayOffset(path string, offset int64) {
	replayOffsetsMux.Lock()
	defer replayOffsetsMux.Unlock()
	replayOffsets[path] = offset
}

func isReplayFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".txt" || ext == ".log"
}

// runReplayWatcher watches a local directory of plain-text log dumps and
// feeds appended lines through the parser. On start the current size of
// every existing file becomes its offset, so restarts do not re-apply
// lines that were already ingested.
func runReplayWatcher(ctx context.Context, s *discordgo.Session) {
	cfg := config.AppConfig

	if err := os.MkdirAll(cfg.ReplayLogsPath, 0o755); err != nil {
		log.Printf("❌ Error creating replay directory: %v", err)
		return
	}

	entries, err := os.ReadDir(cfg.ReplayLogsPath)
	if err != nil {
		log.Printf("❌ Error reading replay directory: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isReplayFile(entry.Name()) {
			continue
		}
		path := filepath.Join(cfg.ReplayLogsPath, entry.Name())
		if info, err := entry.Info(); err == nil {
			setReplayOffset(path, info.Size())
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("❌ Error creating file watcher: %v", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.ReplayLogsPath); err != nil {
		log.Printf("❌ Error watching replay directory: %v", err)
		return
	}

	log.Printf("👀 Replay watcher active on %s", cfg.ReplayLogsPath)

	for {
		select {
		case <-ctx.Done():
			log.Println("✅ [REPLAY] Shutting down gracefully")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isReplayFile(event.Name) {
				continue
			}
			processReplayFile(s, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️ [REPLAY] Watcher error: %v", err)
		}
	}
}

// processReplayFile reads a replay file from its stored offset and applies
// every parseable line
func processReplayFile(s *discordgo.Session, path string) {
	file, err := os.Open(path)
	if err != nil {
		log.Printf("❌ Error opening replay file %s: %v", path, err)
		return
	}
	defer file.Close()

	offset := getReplayOffset(path)

	info, err := file.Stat()
	if err != nil {
		log.Printf("❌ Error getting replay file info: %v", err)
		return
	}
	// Truncated or rotated file: start over
	if info.Size() < offset {
		offset = 0
	}
	if info.Size() == offset {
		return
	}

	if _, err := file.Seek(offset, 0); err != nil {
		log.Printf("❌ Error seeking replay file: %v", err)
		return
	}

	cfg := config.AppConfig
	applied := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if applyReplayLine(s, line, cfg.TrackedItems) {
			applied++
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("⚠️ [REPLAY] Scan error in %s: %v", path, err)
	}

	setReplayOffset(path, info.Size())

	if applied > 0 {
		log.Printf("📂 [REPLAY] Applied %d records from %s", applied, filepath.Base(path))
		config.UpdateSharedActivity()
		refreshInventoryStatus(s)
		refreshDrugTaskStatus(s)
		refreshGangTaskStatus(s)
	}
}

// applyReplayLine parses one replay line and applies it to the matching
// ledger. Replayed lines never trigger reactions or replies.
func applyReplayLine(s *discordgo.Session, line string, trackedItems []string) bool {
	record := parser.Parse(line, parser.Config{TrackedItems: trackedItems})
	if record == nil {
		return false
	}

	var err error
	switch record.Kind {
	case parser.KindXP:
		switch record.XPType {
		case parser.XPDrug:
			_, err = store.AddDrugTaskXP(record.ICPlayerName, record.OOCPlayerName, record.XPAmount)
		case parser.XPGang:
			_, err = store.AddGangTaskXP(record.ICPlayerName, record.OOCPlayerName, record.XPAmount)
		}
	default:
		_, err = store.ApplyTransaction(string(record.Action), record.ItemName, record.Quantity,
			record.ICPlayerName, record.OOCPlayerName)
	}

	if err != nil {
		log.Printf("⚠️ [REPLAY] Skipping line: %v", err)
		return false
	}
	return true
}
