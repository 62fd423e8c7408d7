package app

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iranmap/inventory-bot/internal/ledger"
)

func botMessage(id, botID, title string) *discordgo.Message {
	return &discordgo.Message{
		ID:     id,
		Author: &discordgo.User{ID: botID},
		Embeds: []*discordgo.MessageEmbed{{Title: title}},
	}
}

func TestFindStatusMessage(t *testing.T) {
	messages := []*discordgo.Message{
		{ID: "1", Author: &discordgo.User{ID: "someone"}, Embeds: []*discordgo.MessageEmbed{{Title: "📦 Inventory Status"}}},
		{ID: "2", Author: &discordgo.User{ID: "bot"}},
		botMessage("3", "bot", "💊 Drug Task Status"),
		botMessage("4", "bot", "📦 Inventory Status"),
		botMessage("5", "bot", "📦 Inventory Status"),
	}

	// Newest matching bot message wins; foreign authors and plain messages
	// are skipped
	found := findStatusMessage(messages, "bot", "Inventory Status")
	require.NotNil(t, found)
	assert.Equal(t, "4", found.ID)

	found = findStatusMessage(messages, "bot", "Drug Task Status")
	require.NotNil(t, found)
	assert.Equal(t, "3", found.ID)

	assert.Nil(t, findStatusMessage(messages, "bot", "Gang Task Status"))
	assert.Nil(t, findStatusMessage(nil, "bot", "Inventory Status"))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "⬜⬜⬜⬜⬜", progressBar(0, 5))
	assert.Equal(t, "🟩⬜⬜⬜⬜", progressBar(1, 5))
	assert.Equal(t, "🟩🟩🟩⬜⬜", progressBar(3, 5))
	assert.Equal(t, "🟩🟩🟩🟩🟩", progressBar(5, 5))
	// Degenerate totals never overflow the bar
	assert.Equal(t, "⬜⬜⬜⬜⬜", progressBar(0, 0))
	assert.Equal(t, "🟩🟩🟩🟩🟩", progressBar(9, 5))
}

func TestPodiumPrefix(t *testing.T) {
	assert.Equal(t, "🥇", podiumPrefix(0))
	assert.Equal(t, "🥈", podiumPrefix(1))
	assert.Equal(t, "🥉", podiumPrefix(2))
	assert.Equal(t, "4.", podiumPrefix(3))
	assert.Equal(t, "10.", podiumPrefix(9))
}

func TestBuildInventoryEmbed(t *testing.T) {
	embed := buildInventoryEmbed([]ledger.Item{
		{Name: "Cocaine", Quantity: 8, Category: "drug"},
		{Name: "Crack", Quantity: 30, Category: "drug"},
		{Name: "Shishe", Quantity: 60, Category: "drug"},
	})

	require.Len(t, embed.Fields, 1)
	assert.Contains(t, embed.Title, "Inventory Status")
	assert.Contains(t, embed.Fields[0].Value, "🔴 `Cocaine` — **8**")
	assert.Contains(t, embed.Fields[0].Value, "🟡 `Crack` — **30**")
	assert.Contains(t, embed.Fields[0].Value, "🟢 `Shishe` — **60**")
}

func TestBuildInventoryEmbedEmpty(t *testing.T) {
	embed := buildInventoryEmbed(nil)
	assert.Empty(t, embed.Fields)
	assert.Equal(t, "No items in inventory.", embed.Description)
}

func TestBuildDrugTaskEmbed(t *testing.T) {
	embed := buildDrugTaskEmbed(&ledger.DrugStatus{
		Date:  "2026-08-15",
		Count: 2,
		Limit: 5,
		Players: []ledger.XPCompletion{
			{ICPlayerName: "Sara", XPAmount: 10},
			{ICPlayerName: "Ali", XPAmount: 20},
		},
	})

	assert.Contains(t, embed.Description, "2/5")
	require.Len(t, embed.Fields, 1)
	assert.Contains(t, embed.Fields[0].Value, "🥇 `Sara`")
	assert.Contains(t, embed.Fields[0].Value, "🥈 `Ali`")
	assert.Contains(t, embed.Footer.Text, "2026-08-15")
}

func TestBuildGangTaskEmbed(t *testing.T) {
	embed := buildGangTaskEmbed(&ledger.GangStatus{
		Date:           "2026-08-15",
		CurrentPeriod:  ledger.PeriodNight,
		MorningPlayers: []ledger.XPCompletion{{ICPlayerName: "Sara", XPAmount: 15}},
	})

	require.Len(t, embed.Fields, 2)
	assert.Contains(t, embed.Fields[0].Value, "Sara")
	assert.Contains(t, embed.Fields[1].Value, "No gang tasks completed")
	assert.Contains(t, embed.Footer.Text, "Nighttime")
}
