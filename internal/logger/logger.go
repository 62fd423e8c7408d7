package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// ANSI color codes
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m"

	BoldRed   = "\033[1;31m"
	BoldBlue  = "\033[1;34m"
	BoldCyan  = "\033[1;36m"
	BoldWhite = "\033[1;37m"
)

// ColoredWriter wraps an io.Writer and adds colors based on content
type ColoredWriter struct {
	out io.Writer
	mu  sync.Mutex
}

var (
	initialized   bool
	initMu        sync.Mutex
	defaultLogger *ColoredWriter
)

// Init sets up colored logging over the stdlib logger
func Init() {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		return
	}

	defaultLogger = &ColoredWriter{out: os.Stdout}
	log.SetOutput(defaultLogger)
	log.SetFlags(0) // We'll handle timestamp ourselves

	initialized = true
}

// Write implements io.Writer with color support
func (w *ColoredWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	msg := string(p)
	timestamp := time.Now().Format("2006/01/02 15:04:05")

	// Determine prefix and color based on content
	var prefix, color string

	switch {
	// Errors (check before success so "Failed to..." never reads as OK)
	case contains(msg, "ERROR", "error", "Error", "failed", "Failed", "cannot", "Cannot"):
		prefix = "[ERROR]"
		color = Red
	case contains(msg, "FATAL", "fatal", "Fatal", "panic", "Panic"):
		prefix = "[FATAL]"
		color = BoldRed

	// Warnings
	case contains(msg, "WARN", "warn", "Warning", "warning", "⚠"):
		prefix = "[WARN]"
		color = Yellow

	// Success
	case contains(msg, "✅", "success", "Success", "completed", "Completed", "started", "Started", "loaded", "Loaded", "initialized", "Initialized", "registered", "Registered"):
		prefix = "[OK]"
		color = Green

	// Database
	case contains(msg, "database", "Database", "SQLite", "query", "Query", "pruned", "seeded"):
		prefix = "[DB]"
		color = BoldCyan

	// Discord
	case contains(msg, "Discord", "discord", "Bot is ready", "logged in", "interaction", "Interaction"):
		prefix = "[DC]"
		color = BoldBlue

	// Parser
	case contains(msg, "parse", "Parse", "PARSE", "log message", "Log message"):
		prefix = "[PARSE]"
		color = Blue

	// Inventory / XP ledgers
	case contains(msg, "inventory", "Inventory", "transaction", "Transaction", "XP", "task", "Task"):
		prefix = "[LEDGER]"
		color = Magenta

	// Status display
	case contains(msg, "status message", "Status message", "status channel"):
		prefix = "[STATUS]"
		color = Cyan

	// Debug
	case contains(msg, "debug", "Debug", "DEBUG"):
		prefix = "[DEBUG]"
		color = Gray

	// Default info
	default:
		prefix = "[INFO]"
		color = Cyan
	}

	cleanMsg := cleanMessage(msg)

	formatted := fmt.Sprintf("%s%s %s%-7s%s %s%s\n", Magenta, timestamp, color, prefix, Magenta, cleanMsg, Reset)

	return w.out.Write([]byte(formatted))
}

// contains checks if the message contains any of the given substrings
func contains(msg string, substrs ...string) bool {
	for _, s := range substrs {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// cleanMessage strips the emoji markers our own log lines carry so console
// output stays plain text
func cleanMessage(msg string) string {
	msg = strings.TrimSuffix(msg, "\n")

	emojis := []string{
		"✅", "❌", "⚠️", "⚠", "📦", "💊", "🔫", "👥", "📊", "📋", "🚀", "🔧", "🔌",
		"💬", "🤖", "📝", "🔄", "🧹", "🗄️", "🗄", "👋", "📁", "📂", "👀", "💾", "👁️", "👁", "💓", "🛑",
		"🟢", "🟡", "🔴", "🥇", "🥈", "🥉", "🟩", "⬜", "☀️", "🌙", "🌅",
	}

	for _, e := range emojis {
		msg = strings.ReplaceAll(msg, e+" ", "")
		msg = strings.ReplaceAll(msg, e, "")
	}

	for strings.Contains(msg, "  ") {
		msg = strings.ReplaceAll(msg, "  ", " ")
	}

	return strings.TrimSpace(msg)
}

// Helper functions for direct logging (optional use)

// Info logs an info message
func Info(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// Success logs a success message
func Success(format string, args ...interface{}) {
	log.Printf("✅ "+format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	log.Printf("⚠️ "+format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	log.Printf("❌ ERROR: "+format, args...)
}

// Fatal logs a fatal message and exits
func Fatal(format string, args ...interface{}) {
	log.Fatalf("FATAL: "+format, args...)
}

// Startup prints a fancy startup banner
func Startup(botName, version string) {
	Init()
	fmt.Println()
	fmt.Printf("%s╔══════════════════════════════════════════════════════════╗%s\n", Cyan, Reset)
	fmt.Printf("%s║%s  %s%-56s%s  %s║%s\n", Cyan, Reset, BoldWhite, botName, Reset, Cyan, Reset)
	fmt.Printf("%s║%s  %s%-56s%s  %s║%s\n", Cyan, Reset, Gray, "Version: "+version, Reset, Cyan, Reset)
	fmt.Printf("%s╚══════════════════════════════════════════════════════════╝%s\n", Cyan, Reset)
	fmt.Println()
}
