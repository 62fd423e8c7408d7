package main

import (
	"github.com/iranmap/inventory-bot/internal/app"
	"github.com/iranmap/inventory-bot/internal/logger"
)

func main() {
	// Initialize colored logger with emoji removal
	logger.Init()

	// Run the bot with all modules
	app.Run()
}
