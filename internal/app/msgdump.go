package app

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/iranmap/inventory-bot/internal/config"
)

// dumpMessage writes a raw copy of an inbound message to the dump directory
// for offline debugging of unparsed formats. Dump failures never block the
// event pipeline.
func dumpMessage(m *discordgo.MessageCreate) {
	cfg := config.AppConfig
	if !cfg.IsMessageDumpActive() {
		return
	}

	if err := os.MkdirAll(cfg.MessageDumpDir, 0o755); err != nil {
		log.Printf("⚠️ Error creating message dump directory: %v", err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "channel: %s\n", m.ChannelID)
	fmt.Fprintf(&b, "author: %s (bot: %t)\n", m.Author.Username, m.Author.Bot)
	fmt.Fprintf(&b, "content: %s\n", m.Content)
	for idx, embed := range m.Embeds {
		fmt.Fprintf(&b, "embed[%d].title: %s\n", idx, embed.Title)
		fmt.Fprintf(&b, "embed[%d].description: %s\n", idx, embed.Description)
		for _, field := range embed.Fields {
			if field == nil {
				continue
			}
			fmt.Fprintf(&b, "embed[%d].field: %s = %s\n", idx, field.Name, field.Value)
		}
	}

	path := filepath.Join(cfg.MessageDumpDir, fmt.Sprintf("message-%s.txt", uuid.NewString()))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		log.Printf("⚠️ Error writing message dump: %v", err)
	}
}
