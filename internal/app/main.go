package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/iranmap/inventory-bot/internal/config"
	"github.com/iranmap/inventory-bot/internal/ledger"
)

// Package state shared across the event handlers and background workers
var (
	store     *ledger.Store
	statusMgr *statusManager
)

// safeGo runs fn in a goroutine with panic recovery
func safeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("❌ [%s] Panic recovered: %v\n%s", name, r, debug.Stack())
			}
		}()
		fn()
	}()
}

// heartbeat logs system status periodically
func heartbeat(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lastActivity := config.GetSharedLastActivity()

			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			log.Printf("💓 Heartbeat: Last activity %v ago | Memory: %dMB | Goroutines: %d | GC: %d",
				time.Since(lastActivity).Round(time.Second),
				m.Alloc/1024/1024,
				runtime.NumGoroutine(),
				m.NumGC)
		}
	}
}

// xpRetentionWorker prunes expired XP completions once a day
func xpRetentionWorker(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneExpiredXP()
		}
	}
}

func pruneExpiredXP() {
	cfg := config.AppConfig
	removed, err := store.PruneExpiredXP(cfg.XPRetentionDays)
	if err != nil {
		log.Printf("❌ Error pruning expired XP records: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("🧹 Pruned %d XP records older than %d days", removed, cfg.XPRetentionDays)
	}
}

// Run starts the bot and blocks until a shutdown signal arrives
func Run() {
	log.Println("🚀 Starting Inventory Bot...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	cfg := config.Load()

	// Database
	log.Printf("💾 Opening database at %s...", cfg.DBPath)
	var err error
	store, err = ledger.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	statusMgr = newStatusManager(cfg.StatusSearchLimit)

	pruneExpiredXP()

	// Discord session
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatalf("Error creating Discord session: %v", err)
	}
	config.SharedSession = session

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("🤖 Inventory Bot logged in as %s", r.User.Username)
		config.UpdateSharedActivity()
	})

	session.AddHandler(func(s *discordgo.Session, d *discordgo.Disconnect) {
		log.Printf("⚠️ Discord disconnected")
		config.UpdateSharedActivity()
	})

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Resumed) {
		log.Printf("✅ Discord connection resumed")
		config.UpdateSharedActivity()
	})

	session.AddHandler(handleMessageCreate)
	session.AddHandler(handleInteractionCreate)

	log.Println("🔌 Opening Discord connection...")
	if err := session.Open(); err != nil {
		log.Fatalf("Error opening Discord session: %v", err)
	}

	// Slash commands
	if cfg.GuildID != "" {
		log.Println("📝 Registering slash commands...")
		if err := registerCommands(session, cfg.GuildID); err != nil {
			log.Printf("⚠️ Failed to register commands: %v", err)
		}
	} else {
		log.Printf("⚠️ GUILD_ID not set - slash commands not registered")
	}

	// Background services
	safeGo("HEARTBEAT", func() { heartbeat(ctx) })
	safeGo("XP-RETENTION", func() { xpRetentionWorker(ctx) })

	if cfg.IsReplayModuleActive() {
		log.Printf("📂 Starting replay watcher on %s...", cfg.ReplayLogsPath)
		safeGo("REPLAY", func() { runReplayWatcher(ctx, session) })
	}

	// Seed the status messages so the channels are current at boot
	if cfg.IsStatusModuleActive() {
		refreshInventoryStatus(session)
		refreshDrugTaskStatus(session)
		refreshGangTaskStatus(session)
	}

	log.Println("✅ Inventory Bot is running!")

	<-sigChan
	log.Println("\n🛑 Shutdown signal received! Starting graceful shutdown...")

	shutdownWithTimeout(cancel, session)
}

// shutdownWithTimeout handles graceful shutdown with a timeout
func shutdownWithTimeout(cancel context.CancelFunc, session *discordgo.Session) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	done := make(chan struct{})
	go func() {
		log.Println("  → Closing Discord session...")
		if err := session.Close(); err != nil {
			log.Printf("⚠️ Error closing Discord session: %v", err)
		}
		log.Println("  → Closing database...")
		if err := store.Close(); err != nil {
			log.Printf("⚠️ Error closing database: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
		log.Println("✅ Graceful shutdown completed successfully")
	case <-shutdownCtx.Done():
		log.Println("⚠️ Shutdown timeout reached, forcing exit")
	}
}
