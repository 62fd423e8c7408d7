package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iranmap/inventory-bot/internal/config"
	"github.com/iranmap/inventory-bot/internal/ledger"
)

var replayTestItems = []string{"Crack", "Ghaarch", "Marijuana", "Shishe", "Cocaine"}

func setupReplayTest(t *testing.T) {
	t.Helper()

	var err error
	store, err = ledger.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	// Empty channel IDs keep the status refresh helpers inert
	config.AppConfig = &config.Config{TrackedItems: replayTestItems}
	statusMgr = newStatusManager(15)
}

func TestApplyReplayLine(t *testing.T) {
	setupReplayTest(t)

	applied := applyReplayLine(nil, "Log System - Bardasht Item: Cocaine(5) Esm IC Player: Ali Esm OOC Player: Reza", replayTestItems)
	assert.True(t, applied)

	items, err := store.ListItems()
	require.NoError(t, err)
	for _, item := range items {
		if item.Name == "Cocaine" {
			assert.Equal(t, 5, item.Quantity)
		}
	}

	// Unrelated chat is skipped without error
	assert.False(t, applyReplayLine(nil, "hello everyone", replayTestItems))

	// Ledger rejections surface as skipped lines
	assert.False(t, applyReplayLine(nil, "Log System - Bardasht Item: Cocaine(50)", replayTestItems))
}

func TestApplyReplayLineXP(t *testing.T) {
	setupReplayTest(t)

	applied := applyReplayLine(nil, "Use XP Task Dadan Log XP Model : Drug Task Esm IC Player : Sara Meghdar : 10", replayTestItems)
	assert.True(t, applied)

	status, err := store.DrugTaskStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.Count)
}

func TestProcessReplayFileOffsets(t *testing.T) {
	setupReplayTest(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "replay.txt")
	require.NoError(t, os.WriteFile(path, []byte("Gozashtan Item: Shishe(3)\n"), 0o644))

	processReplayFile(nil, path)
	assert.Equal(t, 13, findQuantity(t, "Shishe"))

	// Appending processes only the new line
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("Gozashtan Item: Shishe(2)\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	processReplayFile(nil, path)
	assert.Equal(t, 15, findQuantity(t, "Shishe"))

	// Unchanged file is a no-op
	processReplayFile(nil, path)
	assert.Equal(t, 15, findQuantity(t, "Shishe"))
}

func findQuantity(t *testing.T, name string) int {
	t.Helper()
	items, err := store.ListItems()
	require.NoError(t, err)
	for _, item := range items {
		if item.Name == name {
			return item.Quantity
		}
	}
	t.Fatalf("item %s not found", name)
	return 0
}
