package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testItems = []string{"Crack", "Ghaarch", "Marijuana", "Shishe", "Cocaine"}

func parseWith(content string, cfg Config) *Record {
	if cfg.TrackedItems == nil {
		cfg.TrackedItems = testItems
	}
	return Parse(content, cfg)
}

func TestParseCanonicalRemove(t *testing.T) {
	record := parseWith("Log System - Bardasht Item: Cocaine(5) Esm IC Player: Ali Esm OOC Player: Reza", Config{})

	require.NotNil(t, record)
	assert.Equal(t, KindTransaction, record.Kind)
	assert.Equal(t, ActionRemove, record.Action)
	assert.Equal(t, "Cocaine", record.ItemName)
	assert.Equal(t, 5, record.Quantity)
	assert.Equal(t, "Ali", record.ICPlayerName)
	assert.Equal(t, "Reza", record.OOCPlayerName)
}

func TestParseAddWithoutPlayerLabels(t *testing.T) {
	record := parseWith("Gozashtan Item: Shishe(3)", Config{})

	require.NotNil(t, record)
	assert.Equal(t, ActionAdd, record.Action)
	assert.Equal(t, "Shishe", record.ItemName)
	assert.Equal(t, 3, record.Quantity)
	assert.Equal(t, UnknownIC, record.ICPlayerName)
	assert.Equal(t, UnknownOOC, record.OOCPlayerName)
}

func TestParseOOCFallsBackToAuthor(t *testing.T) {
	record := parseWith("Gozashtan Item: Shishe(3)", Config{AuthorName: "Reza"})

	require.NotNil(t, record)
	assert.Equal(t, "Reza", record.OOCPlayerName)
}

func TestParseRejectsUnrelatedChat(t *testing.T) {
	assert.Nil(t, parseWith("hello how are you doing today", Config{}))
	assert.Nil(t, parseWith("", Config{}))

	// "take" is an action synonym but there is no log marker
	assert.Nil(t, parseWith("I will take a photo tomorrow", Config{}))

	// Log marker but no action word
	assert.Nil(t, parseWith("Log System started successfully", Config{}))
}

func TestParseRejectsUntrackedItem(t *testing.T) {
	assert.Nil(t, parseWith("Gozashtan Item: Sword(2)", Config{}))
}

func TestParseFuzzyActionNeedsLogTag(t *testing.T) {
	// Fuzzy action plus a log tag passes the format gate
	record := parseWith("log: remove Cocaine(2) please", Config{})
	require.NotNil(t, record)
	assert.Equal(t, ActionRemove, record.Action)
	assert.Equal(t, "Cocaine", record.ItemName)
	assert.Equal(t, 2, record.Quantity)

	// The same text without the tag is rejected
	assert.Nil(t, parseWith("remove Cocaine(2) please", Config{}))
}

func TestParseBothActionsEarliestWins(t *testing.T) {
	record := parseWith("log: remove Cocaine(2) and then add it back", Config{})
	require.NotNil(t, record)
	assert.Equal(t, ActionRemove, record.Action)
}

func TestParseActionHintOverrides(t *testing.T) {
	// With a title-derived hint no action word is needed in the body
	record := parseWith("Item: Cocaine(5)", Config{ActionHint: ActionRemove})
	require.NotNil(t, record)
	assert.Equal(t, ActionRemove, record.Action)
	assert.Equal(t, "Cocaine", record.ItemName)
}

func TestParseEmptyContentWithHint(t *testing.T) {
	record := parseWith("", Config{ActionHint: ActionAdd, AuthorName: "Reza"})

	require.NotNil(t, record)
	assert.Equal(t, ActionAdd, record.Action)
	assert.Equal(t, testItems[0], record.ItemName)
	assert.Equal(t, 1, record.Quantity)
	assert.Equal(t, UnknownIC, record.ICPlayerName)
	assert.Equal(t, "Reza", record.OOCPlayerName)
}

func TestItemExtractorFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		item    string
		qty     int
	}{
		{"strict", "Bardasht Item: Crack(4)", "Crack", 4},
		{"spaced parentheses", "Bardasht Item: Crack (4)", "Crack", 4},
		{"split name and qty", "Bardasht Item: Crack somewhere (4)", "Crack", 4},
		{"drug followed by number", "Bardasht Item cocaine 5", "Cocaine", 5},
		{"nearby number", "log: remove 3 bags of Cocaine", "Cocaine", 3},
		{"assume one", "Log System Gozashtan Marijuana", "Marijuana", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := parseWith(tt.content, Config{})
			require.NotNil(t, record)
			assert.Equal(t, tt.item, record.ItemName)
			assert.Equal(t, tt.qty, record.Quantity)
		})
	}
}

func TestItemAliases(t *testing.T) {
	record := parseWith("Gozashtan Item: Mushroom(2)", Config{})
	require.NotNil(t, record)
	assert.Equal(t, "Ghaarch", record.ItemName)

	record = parseWith("Gozashtan Item: Meth(6)", Config{})
	require.NotNil(t, record)
	assert.Equal(t, "Shishe", record.ItemName)
}

func TestItemNameCaseNormalization(t *testing.T) {
	record := parseWith("Gozashtan Item: COCAINE(2)", Config{})
	require.NotNil(t, record)
	assert.Equal(t, "Cocaine", record.ItemName)
}

func TestExtractICPlayerCascade(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"full label", "Esm IC Player: Ali", "Ali"},
		{"loose label", "IC: Ali", "Ali"},
		{"bare token", "IC Ali", "Ali"},
		{"capitalized fallback", "Gozashtan Item: Shishe done by Farhad today", "Farhad"},
		{"no candidates", "Gozashtan Item: Shishe(3)", UnknownIC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractICPlayer(tt.content, testItems))
		})
	}
}

func TestExtractICPlayerSkipsKeywords(t *testing.T) {
	// Action words, labels and item names are never player names
	assert.Equal(t, UnknownIC, extractICPlayer("Gozashtan Item: Shishe Inventory Log", testItems))
}

func TestExtractOOCPlayer(t *testing.T) {
	assert.Equal(t, "Reza", extractOOCPlayer("Esm OOC Player: Reza", ""))
	assert.Equal(t, "Reza", extractOOCPlayer("OOC: Reza", ""))
	assert.Equal(t, "Author", extractOOCPlayer("no labels here", "Author"))
	assert.Equal(t, UnknownOOC, extractOOCPlayer("no labels here", ""))
}

func TestParseXPDrugTask(t *testing.T) {
	content := "Use XP Task Dadan Log\nXP Model : Drug Task\nEsm IC Player : Sara Ahmadi\nEsm OOC Player : Negar\nMeghdar : 10"
	record := parseWith(content, Config{})

	require.NotNil(t, record)
	assert.Equal(t, KindXP, record.Kind)
	assert.Equal(t, XPDrug, record.XPType)
	assert.Equal(t, 10, record.XPAmount)
	// Multi-word character names keep only the first token
	assert.Equal(t, "Sara", record.ICPlayerName)
	assert.Equal(t, "Negar", record.OOCPlayerName)
}

func TestParseXPGangTaskInferred(t *testing.T) {
	record := parseWith("gang task xp dadan shod, Meghdar: 15", Config{})

	require.NotNil(t, record)
	assert.Equal(t, KindXP, record.Kind)
	assert.Equal(t, XPGang, record.XPType)
	assert.Equal(t, 15, record.XPAmount)
	assert.Equal(t, UnknownXPPlayer, record.ICPlayerName)
	assert.Equal(t, UnknownXPPlayer, record.OOCPlayerName)
}

func TestParseXPMissingAmountDefaultsZero(t *testing.T) {
	record := parseWith("Use XP Task Dadan Log\nXP Model : Gang Task", Config{})

	require.NotNil(t, record)
	assert.Equal(t, XPGang, record.XPType)
	assert.Zero(t, record.XPAmount)
}

func TestParseXPUnknownModelRejected(t *testing.T) {
	assert.Nil(t, parseWith("Use XP Task Dadan Log\nXP Model : Mining Task", Config{}))
}
