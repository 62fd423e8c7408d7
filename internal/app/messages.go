package app

import (
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/iranmap/inventory-bot/internal/config"
	"github.com/iranmap/inventory-bot/internal/ledger"
	"github.com/iranmap/inventory-bot/internal/parser"
)

// Keywords that mark a message as a possible log even in the wrong channel
var salvageKeywords = []string{"Bardasht", "Gozashtan", "Item", "Log System"}

// handleMessageCreate routes inbound messages and embeds through the log
// parser. Bot messages are ignored unless they come from a logging bot.
func handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ [MESSAGE HANDLER] Panic recovered: %v\n%s", r, debug.Stack())
		}
	}()

	if m.Author == nil {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	if m.Author.Bot && !strings.Contains(m.Author.Username, "Log") {
		return
	}

	config.UpdateSharedActivity()
	cfg := config.AppConfig

	dumpMessage(m)

	// Embeds first (higher priority)
	for _, embed := range m.Embeds {
		processEmbed(s, m, embed)
	}

	// Raw content in the designated log channel
	if cfg.LogChannelID != "" && m.ChannelID == cfg.LogChannelID {
		processLogText(s, m, m.Content, "", false)
		return
	}

	// Salvage: log-looking messages posted in the wrong channel
	for _, keyword := range salvageKeywords {
		if strings.Contains(m.Content, keyword) {
			log.Printf("⚠️ Potential log message in wrong channel %s", m.ChannelID)
			processLogText(s, m, m.Content, "", false)
			return
		}
	}
}

// classifyEmbedTitle derives an action hint from an embed title
func classifyEmbedTitle(title string) parser.Action {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(title, "Bardasht") || strings.Contains(title, "برداشت") || strings.Contains(lower, "remove"):
		return parser.ActionRemove
	case strings.Contains(title, "Gozashtan") || strings.Contains(title, "گذاشت") || strings.Contains(lower, "add"):
		return parser.ActionAdd
	}
	return ""
}

// isLogEmbedTitle gates embeds on log-related title keywords
func isLogEmbedTitle(title string) bool {
	if title == "" {
		return false
	}
	for _, keyword := range []string{"Log", "Inventory", "لاگ", "Bardasht", "Gozashtan", "برداشت", "گذاشت"} {
		if strings.Contains(title, keyword) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(title), "item")
}

// Embed field names that carry item or player details
func isRelevantFieldName(name string) bool {
	for _, keyword := range []string{"Item", "آیتم", "Inventory", "انبار", "Esm"} {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

// processEmbed scrapes a logging bot embed: the title yields an action hint,
// then the description and every field value run through the parser
func processEmbed(s *discordgo.Session, m *discordgo.MessageCreate, embed *discordgo.MessageEmbed) {
	if !isLogEmbedTitle(embed.Title) {
		return
	}

	hint := classifyEmbedTitle(embed.Title)
	log.Printf("Processing log embed %q (action hint: %s)", embed.Title, hintLabel(hint))

	processed := false

	if embed.Description != "" {
		processLogText(s, m, embed.Description, hint, true)
		processed = true
	}

	for _, field := range embed.Fields {
		if field == nil || field.Value == "" {
			continue
		}
		content := field.Value
		if isRelevantFieldName(field.Name) {
			content = field.Name + ": " + field.Value
		}
		processLogText(s, m, content, hint, true)
		processed = true
	}

	// Title-only embed with a recognizable action: let the parser fall back
	// to the first tracked item
	if !processed && hint != "" {
		processLogText(s, m, "", hint, true)
	}
}

func hintLabel(hint parser.Action) string {
	if hint == "" {
		return "none"
	}
	return string(hint)
}

// processLogText feeds one piece of text through the parser and applies the
// result to the matching ledger. A nil parse is a normal miss: it is only
// surfaced to the user for direct chat messages outside the log channel.
func processLogText(s *discordgo.Session, m *discordgo.MessageCreate, content string, hint parser.Action, fromEmbed bool) {
	cfg := config.AppConfig

	record := parser.Parse(content, parser.Config{
		TrackedItems: cfg.TrackedItems,
		ActionHint:   hint,
		AuthorName:   m.Author.Username,
	})
	if record == nil {
		if !fromEmbed && content != "" && m.ChannelID != cfg.LogChannelID {
			replyTo(s, m, "⚠️ Failed to parse this message as an inventory log. Check the format.")
		}
		return
	}

	if record.Kind == parser.KindXP {
		applyXPRecord(s, m, record)
		return
	}
	applyTransactionRecord(s, m, record)
}

// applyTransactionRecord applies a parsed inventory transaction
func applyTransactionRecord(s *discordgo.Session, m *discordgo.MessageCreate, record *parser.Record) {
	log.Printf("Processing transaction: type=%s, item=%s, quantity=%d",
		record.Action, record.ItemName, record.Quantity)

	item, err := store.ApplyTransaction(string(record.Action), record.ItemName, record.Quantity,
		record.ICPlayerName, record.OOCPlayerName)
	if err != nil {
		log.Printf("❌ Error processing transaction: %v", err)
		reactOutsideLogChannel(s, m, "❌")
		if m.ChannelID != config.AppConfig.LogChannelID {
			replyTo(s, m, fmt.Sprintf("❌ Error processing: %v", err))
		}
		return
	}

	log.Printf("✅ Transaction processed: %s now at %d", item.Name, item.Quantity)
	reactOutsideLogChannel(s, m, "✅")
	if m.ChannelID != config.AppConfig.LogChannelID {
		verb := "Added"
		if record.Action == parser.ActionRemove {
			verb = "Removed"
		}
		replyTo(s, m, fmt.Sprintf("✅ %s %dx %s", verb, record.Quantity, record.ItemName))
	}

	refreshInventoryStatus(s)
}

// applyXPRecord applies a parsed task-XP submission
func applyXPRecord(s *discordgo.Session, m *discordgo.MessageCreate, record *parser.Record) {
	log.Printf("Processing XP message: type=%s, amount=%d, player=%s",
		record.XPType, record.XPAmount, record.ICPlayerName)

	var err error
	var taskName string
	switch record.XPType {
	case parser.XPDrug:
		taskName = "Drug Task"
		_, err = store.AddDrugTaskXP(record.ICPlayerName, record.OOCPlayerName, record.XPAmount)
	case parser.XPGang:
		taskName = "Gang Task"
		_, err = store.AddGangTaskXP(record.ICPlayerName, record.OOCPlayerName, record.XPAmount)
	default:
		return
	}

	if err != nil {
		log.Printf("❌ Error processing %s XP: %v", record.XPType, err)
		reactOutsideLogChannel(s, m, "❌")
		if m.ChannelID != config.AppConfig.LogChannelID {
			replyTo(s, m, fmt.Sprintf("❌ Error: %v", friendlyLedgerError(err)))
		}
		return
	}

	log.Printf("✅ %s XP (%d) recorded for %s", taskName, record.XPAmount, record.ICPlayerName)
	reactOutsideLogChannel(s, m, "✅")
	if m.ChannelID != config.AppConfig.LogChannelID {
		replyTo(s, m, fmt.Sprintf("✅ %s XP (%d) recorded for %s", taskName, record.XPAmount, record.ICPlayerName))
	}

	if record.XPType == parser.XPDrug {
		refreshDrugTaskStatus(s)
	} else {
		refreshGangTaskStatus(s)
	}
}

// friendlyLedgerError keeps user-facing wording short for expected
// validation failures while leaving unexpected errors intact
func friendlyLedgerError(err error) string {
	switch {
	case errors.Is(err, ledger.ErrDuplicateCompletion),
		errors.Is(err, ledger.ErrDailyLimitReached),
		errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrInvalidXPAmount),
		errors.Is(err, ledger.ErrItemNotFound):
		return err.Error()
	default:
		return "an unexpected error occurred"
	}
}

// reactOutsideLogChannel adds a reaction except in the log channel, where
// feedback would just be noise under the logging bot's output. A failed
// reaction is logged and not retried.
func reactOutsideLogChannel(s *discordgo.Session, m *discordgo.MessageCreate, emoji string) {
	if m.ChannelID == config.AppConfig.LogChannelID {
		return
	}
	if err := s.MessageReactionAdd(m.ChannelID, m.ID, emoji); err != nil {
		log.Printf("Error reacting to message: %v", err)
	}
}

func replyTo(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		log.Printf("Error sending reply: %v", err)
	}
}

// Status refresh helpers shared by the event path and the slash commands

func refreshInventoryStatus(s *discordgo.Session) {
	cfg := config.AppConfig
	if cfg.StatusChannelID == "" {
		return
	}
	items, err := store.ListItems()
	if err != nil {
		log.Printf("❌ Error loading items for status update: %v", err)
		return
	}
	statusMgr.update(s, cfg.StatusChannelID, topicInventory, buildInventoryEmbed(items))
}

func refreshDrugTaskStatus(s *discordgo.Session) {
	channelID := xpStatusChannelID()
	if channelID == "" {
		return
	}
	status, err := store.DrugTaskStatus()
	if err != nil {
		log.Printf("❌ Error loading drug task status: %v", err)
		return
	}
	statusMgr.update(s, channelID, topicDrugTask, buildDrugTaskEmbed(status))
}

func refreshGangTaskStatus(s *discordgo.Session) {
	channelID := xpStatusChannelID()
	if channelID == "" {
		return
	}
	status, err := store.GangTaskStatus()
	if err != nil {
		log.Printf("❌ Error loading gang task status: %v", err)
		return
	}
	statusMgr.update(s, channelID, topicGangTask, buildGangTaskEmbed(status))
}

// XP status messages prefer their own channel and fall back to the
// inventory status channel
func xpStatusChannelID() string {
	cfg := config.AppConfig
	if cfg.XPStatusChannelID != "" {
		return cfg.XPStatusChannelID
	}
	return cfg.StatusChannelID
}
