package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
)

// Config holds the shared configuration for the application
type Config struct {
	DiscordToken string
	GuildID      string

	// Discord Channel IDs
	LogChannelID      string // channel the logging bot posts into
	StatusChannelID   string // inventory status message lives here
	XPStatusChannelID string // drug/gang task status messages live here

	// Inventory settings
	TrackedItems []string

	// Database
	DBPath string

	// Replay ingestion (local text files of log lines)
	ReplayLogsPath    string
	EnableFileWatcher bool

	// Message dump (raw inbound log candidates written to disk)
	MessageDumpDir string

	// Retention for XP completion rows, in days. 0 disables pruning.
	XPRetentionDays int

	// How many recent messages to scan when relocating a status message
	StatusSearchLimit int
}

// Global shared variables
var (
	SharedSession      *discordgo.Session
	SharedLastActivity = time.Now()
	SharedActivityMux  sync.RWMutex
)

// Global instance
var AppConfig *Config

// The five drug names the server tracks by default
var defaultTrackedItems = []string{"Crack", "Ghaarch", "Marijuana", "Shishe", "Cocaine"}

// Load initializes and returns the application configuration
func Load() *Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	AppConfig = &Config{
		DiscordToken: getEnv("DISCORD_TOKEN", ""),
		GuildID:      getEnv("GUILD_ID", ""),

		LogChannelID:      getEnv("LOG_CHANNEL_ID", ""),
		StatusChannelID:   getEnv("STATUS_CHANNEL_ID", ""),
		XPStatusChannelID: getEnv("XP_STATUS_CHANNEL_ID", ""),

		TrackedItems: getEnvList("TRACKED_ITEMS", defaultTrackedItems),

		DBPath: getEnv("DB_PATH", "database/inventory.db"),

		ReplayLogsPath:    getEnv("REPLAY_LOGS_PATH", ""),
		EnableFileWatcher: getEnvBool("ENABLE_FILE_WATCHER", true),

		MessageDumpDir: getEnv("MESSAGE_DUMP_DIR", ""),

		XPRetentionDays: getEnvInt("XP_RETENTION_DAYS", 90),

		StatusSearchLimit: getEnvInt("STATUS_SEARCH_LIMIT", 15),
	}

	// Validate configuration
	if AppConfig.DiscordToken == "" {
		log.Fatal("Missing required environment variable: DISCORD_TOKEN")
	}
	if len(AppConfig.TrackedItems) == 0 {
		log.Fatal("TRACKED_ITEMS must name at least one item")
	}

	logConfiguration()

	return AppConfig
}

func logConfiguration() {
	log.Printf("🔧 Configuration loaded:")
	log.Printf("   Log Channel ID: %s", AppConfig.LogChannelID)
	log.Printf("   Status Channel ID: %s", AppConfig.StatusChannelID)
	log.Printf("   XP Status Channel ID: %s", AppConfig.XPStatusChannelID)
	log.Printf("   Tracked Items: %s", strings.Join(AppConfig.TrackedItems, ", "))
	log.Printf("   Database Path: %s", AppConfig.DBPath)
	log.Printf("   Replay Logs Path: %s", AppConfig.ReplayLogsPath)
	log.Printf("   File Watcher: %v", AppConfig.EnableFileWatcher)
	log.Printf("   Message Dump Dir: %s", AppConfig.MessageDumpDir)
	log.Printf("   XP Retention: %d days", AppConfig.XPRetentionDays)
}

// UpdateSharedActivity updates the last activity timestamp
func UpdateSharedActivity() {
	SharedActivityMux.Lock()
	SharedLastActivity = time.Now()
	SharedActivityMux.Unlock()
}

// GetSharedLastActivity gets the last activity timestamp safely
func GetSharedLastActivity() time.Time {
	SharedActivityMux.RLock()
	defer SharedActivityMux.RUnlock()
	return SharedLastActivity
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true"
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			items = append(items, p)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// Module activity check functions
func (c *Config) IsStatusModuleActive() bool {
	return c.StatusChannelID != "" || c.XPStatusChannelID != ""
}

func (c *Config) IsReplayModuleActive() bool {
	return c.ReplayLogsPath != "" && c.EnableFileWatcher
}

func (c *Config) IsMessageDumpActive() bool {
	return c.MessageDumpDir != ""
}
