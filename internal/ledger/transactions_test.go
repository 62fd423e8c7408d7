package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func findItem(t *testing.T, store *Store, name string) Item {
	t.Helper()
	items, err := store.ListItems()
	require.NoError(t, err)
	for _, item := range items {
		if item.Name == name {
			return item
		}
	}
	t.Fatalf("item %s not found", name)
	return Item{}
}

func TestSeedItems(t *testing.T) {
	store := openTestStore(t)

	items, err := store.ListItems()
	require.NoError(t, err)
	require.Len(t, items, 5)

	names := make(map[string]int)
	for _, item := range items {
		names[item.Name] = item.Quantity
		assert.Equal(t, "drug", item.Category)
	}
	for _, name := range []string{"Crack", "Ghaarch", "Marijuana", "Shishe", "Cocaine"} {
		assert.Equal(t, 10, names[name], name)
	}
}

func TestApplyTransactionRoundTrip(t *testing.T) {
	store := openTestStore(t)

	item, err := store.ApplyTransaction(TransactionRemove, "Cocaine", 4, "Ali", "Reza")
	require.NoError(t, err)
	assert.Equal(t, 6, item.Quantity)

	item, err = store.ApplyTransaction(TransactionAdd, "Cocaine", 7, "Ali", "Reza")
	require.NoError(t, err)
	assert.Equal(t, 13, item.Quantity)
}

func TestApplyTransactionCaseInsensitive(t *testing.T) {
	store := openTestStore(t)

	item, err := store.ApplyTransaction(TransactionAdd, "cocaine", 1, "Ali", "Reza")
	require.NoError(t, err)
	assert.Equal(t, "Cocaine", item.Name)
	assert.Equal(t, 11, item.Quantity)
}

func TestApplyTransactionInsufficientStock(t *testing.T) {
	store := openTestStore(t)

	_, err := store.ApplyTransaction(TransactionRemove, "Shishe", 11, "Ali", "Reza")
	require.ErrorIs(t, err, ErrInsufficientStock)

	// Quantity unchanged after the rejected removal
	assert.Equal(t, 10, findItem(t, store, "Shishe").Quantity)
}

func TestApplyTransactionRemoveToZero(t *testing.T) {
	store := openTestStore(t)

	item, err := store.ApplyTransaction(TransactionRemove, "Crack", 10, "Ali", "Reza")
	require.NoError(t, err)
	assert.Equal(t, 0, item.Quantity)
}

func TestApplyTransactionValidation(t *testing.T) {
	store := openTestStore(t)

	_, err := store.ApplyTransaction(TransactionAdd, "Heroin", 1, "Ali", "Reza")
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = store.ApplyTransaction(TransactionAdd, "", 1, "Ali", "Reza")
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = store.ApplyTransaction(TransactionAdd, "Crack", 0, "Ali", "Reza")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = store.ApplyTransaction(TransactionAdd, "Crack", -5, "Ali", "Reza")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = store.ApplyTransaction("transfer", "Crack", 1, "Ali", "Reza")
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestApplyTransactionWritesAuditLog(t *testing.T) {
	store := openTestStore(t)

	_, err := store.ApplyTransaction(TransactionRemove, "Marijuana", 3, "Ali", "Reza")
	require.NoError(t, err)

	var txType, itemName, ic, ooc string
	var quantity int
	err = store.db.QueryRow(
		`SELECT type, item_name, quantity, ic_player_name, ooc_player_name FROM logs ORDER BY id DESC LIMIT 1`,
	).Scan(&txType, &itemName, &quantity, &ic, &ooc)
	require.NoError(t, err)

	assert.Equal(t, TransactionRemove, txType)
	assert.Equal(t, "Marijuana", itemName)
	assert.Equal(t, 3, quantity)
	assert.Equal(t, "Ali", ic)
	assert.Equal(t, "Reza", ooc)
}

func TestListItemsOrdering(t *testing.T) {
	store := openTestStore(t)

	items, err := store.ListItems()
	require.NoError(t, err)

	var names []string
	for _, item := range items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"Cocaine", "Crack", "Ghaarch", "Marijuana", "Shishe"}, names)
}

func TestSeedSkippedWhenItemsExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.ApplyTransaction(TransactionRemove, "Crack", 5, "Ali", "Reza")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not reset existing quantities
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, 5, findItem(t, store, "Crack").Quantity)
}

// fixedClock pins a store's clock for reset-window tests
func fixedClock(store *Store, t time.Time) {
	store.Now = func() time.Time { return t }
}
