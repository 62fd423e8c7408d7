package app

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/iranmap/inventory-bot/internal/ledger"
)

// Status topics, each owning one edited-in-place message per channel
const (
	topicInventory = "inventory"
	topicDrugTask  = "drugTask"
	topicGangTask  = "gangTask"
)

// Embed title fragments used to relocate a topic's message after a restart
var topicIdentifiers = map[string]string{
	topicInventory: "Inventory Status",
	topicDrugTask:  "Drug Task Status",
	topicGangTask:  "Gang Task Status",
}

// statusManager keeps one persistent message per (channel, topic) and edits
// it in place instead of re-posting. The cached message handle is refreshed
// on every successful edit and dropped on failure; a channel-history search
// is the fallback, sending a new message the last resort. Convergence is
// best-effort: a stale handle costs one extra fetch, never a failed update.
type statusManager struct {
	mu          sync.Mutex
	messageIDs  map[string]string // channelID|topic -> message ID
	searchLimit int
}

func newStatusManager(searchLimit int) *statusManager {
	if searchLimit <= 0 {
		searchLimit = 15
	}
	return &statusManager{
		messageIDs:  make(map[string]string),
		searchLimit: searchLimit,
	}
}

func (m *statusManager) cacheKey(channelID, topic string) string {
	return channelID + "|" + topic
}

// update edits the topic's status message in channelID to show embed,
// creating the message if none can be found
func (m *statusManager) update(s *discordgo.Session, channelID, topic string, embed *discordgo.MessageEmbed) {
	if channelID == "" {
		return
	}

	identifier := topicIdentifiers[topic]
	key := m.cacheKey(channelID, topic)

	m.mu.Lock()
	messageID := m.messageIDs[key]
	m.mu.Unlock()

	// Cached handle first
	if messageID != "" {
		if _, err := s.ChannelMessageEditEmbed(channelID, messageID, embed); err == nil {
			return
		}
		log.Printf("Stored %s status message reference invalid, searching channel history", topic)
		m.mu.Lock()
		delete(m.messageIDs, key)
		m.mu.Unlock()
	}

	// Search recent history for our own embed with the identifying title
	messages, err := s.ChannelMessages(channelID, m.searchLimit, "", "", "")
	if err != nil {
		log.Printf("❌ Error fetching channel history for %s status: %v", topic, err)
	} else if found := findStatusMessage(messages, botUserID(s), identifier); found != nil {
		_, editErr := s.ChannelMessageEditEmbed(channelID, found.ID, embed)
		if editErr == nil {
			m.mu.Lock()
			m.messageIDs[key] = found.ID
			m.mu.Unlock()
			log.Printf("Updated existing %s status message: %s", topic, found.ID)
			return
		}
		log.Printf("❌ Error editing found %s status message: %v", topic, editErr)
	}

	// Nothing to edit, send a fresh message
	msg, err := s.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		log.Printf("❌ Error sending %s status message: %v", topic, err)
		return
	}
	m.mu.Lock()
	m.messageIDs[key] = msg.ID
	m.mu.Unlock()
	log.Printf("Created new %s status message: %s", topic, msg.ID)
}

// findStatusMessage picks the most recent bot-authored embed whose title
// contains identifier. Messages arrive newest first from the API.
func findStatusMessage(messages []*discordgo.Message, botID, identifier string) *discordgo.Message {
	for _, msg := range messages {
		if msg.Author == nil || msg.Author.ID != botID {
			continue
		}
		if len(msg.Embeds) == 0 || msg.Embeds[0].Title == "" {
			continue
		}
		if strings.Contains(msg.Embeds[0].Title, identifier) {
			return msg
		}
	}
	return nil
}

func botUserID(s *discordgo.Session) string {
	if s.State != nil && s.State.User != nil {
		return s.State.User.ID
	}
	return ""
}

// buildInventoryEmbed renders current stock levels with traffic-light markers
func buildInventoryEmbed(items []ledger.Item) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "📦 Inventory Status",
		Description: "**Current Stock Levels**",
		Color:       0x6366F1,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Last updated"},
	}

	var drugList strings.Builder
	for _, item := range items {
		if item.Category != "drug" {
			continue
		}
		stockEmoji := "🔴" // low stock
		if item.Quantity > 50 {
			stockEmoji = "🟢"
		} else if item.Quantity > 20 {
			stockEmoji = "🟡"
		}
		fmt.Fprintf(&drugList, "%s `%s` — **%d**\n", stockEmoji, item.Name, item.Quantity)
	}

	if drugList.Len() > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "💊 Drug Inventory",
			Value: drugList.String(),
		})
	} else {
		embed.Description = "No items in inventory."
	}

	return embed
}

// buildDrugTaskEmbed renders the daily drug-task progress with a tick bar
// and podium markers for the first three finishers
func buildDrugTaskEmbed(status *ledger.DrugStatus) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "💊 Drug Task Status",
		Description: fmt.Sprintf("Daily Progress: %d/%d\n%s\nToday's IC members who completed drug tasks.",
			status.Count, status.Limit, progressBar(status.Count, status.Limit)),
		Color:     0x10B981,
		Timestamp: time.Now().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Resets at midnight • %s", status.Date)},
	}

	value := "No drug tasks completed today"
	if len(status.Players) > 0 {
		var list strings.Builder
		for i, player := range status.Players {
			fmt.Fprintf(&list, "%s `%s` — **%d XP** ✅\n", podiumPrefix(i), player.ICPlayerName, player.XPAmount)
		}
		value = list.String()
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "👥 Completed Players",
		Value: value,
	})

	return embed
}

// buildGangTaskEmbed renders both half-day periods for today
func buildGangTaskEmbed(status *ledger.GangStatus) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🔫 Gang Task Status",
		Description: fmt.Sprintf("**Today's Gang Task Progress**\nReset Date: %s", status.Date),
		Color:       0xEF4444,
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{
			Name:  "☀️ Daytime Operations (6AM-6PM)",
			Value: gangPlayerList(status.MorningPlayers),
		},
		&discordgo.MessageEmbedField{
			Name:  "🌙 Nighttime Operations (6PM-6AM)",
			Value: gangPlayerList(status.NightPlayers),
		},
	)

	currentPeriodText := "Daytime (6AM-6PM)"
	if status.CurrentPeriod == ledger.PeriodNight {
		currentPeriodText = "Nighttime (6PM-6AM)"
	}
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Active Period: %s • %s", currentPeriodText, status.Date),
	}

	return embed
}

func gangPlayerList(players []ledger.XPCompletion) string {
	if len(players) == 0 {
		return "*No gang tasks completed in this period*"
	}
	var list strings.Builder
	for i, player := range players {
		fmt.Fprintf(&list, "%s `%s` — **%d XP** ✅\n", podiumPrefix(i), player.ICPlayerName, player.XPAmount)
	}
	return list.String()
}

// progressBar draws current/total as five colored ticks
func progressBar(current, total int) string {
	const width = 5
	filled := 0
	if total > 0 {
		filled = (current*width + total/2) / total
	}
	if filled > width {
		filled = width
	}

	var bar strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			bar.WriteString("🟩")
		} else {
			bar.WriteString("⬜")
		}
	}
	return bar.String()
}

func podiumPrefix(index int) string {
	switch index {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", index+1)
	}
}
