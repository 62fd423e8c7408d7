package ledger

import (
	"fmt"
	"time"
)

// Transaction directions, matching the values stored in the logs table
const (
	TransactionAdd    = "add"
	TransactionRemove = "remove"
)

// Item is a tracked inventory item
type Item struct {
	ID        int64
	Name      string
	Quantity  int
	Category  string
	UpdatedAt time.Time
}

// ApplyTransaction adds or removes quantity for an item (case-insensitive
// lookup) and appends an audit log row. Both writes commit in one SQL
// transaction so the quantity and the log entry can never diverge. Removing
// more than the current stock fails with ErrInsufficientStock and leaves the
// quantity untouched.
func (s *Store) ApplyTransaction(txType, itemName string, quantity int, icPlayer, oocPlayer string) (*Item, error) {
	if itemName == "" {
		return nil, ErrItemNotFound
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive number", ErrInvalidQuantity)
	}
	if txType != TransactionAdd && txType != TransactionRemove {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransaction, txType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	var item Item
	err = tx.QueryRow(
		`SELECT id, name, quantity, category FROM items WHERE name = ? COLLATE NOCASE`,
		itemName,
	).Scan(&item.ID, &item.Name, &item.Quantity, &item.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemName)
	}

	newQuantity := item.Quantity + quantity
	if txType == TransactionRemove {
		newQuantity = item.Quantity - quantity
		if newQuantity < 0 {
			return nil, fmt.Errorf("%w: not enough %s in inventory, current: %d",
				ErrInsufficientStock, item.Name, item.Quantity)
		}
	}

	if _, err := tx.Exec(
		`UPDATE items SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newQuantity, item.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to update item %s: %v", item.Name, err)
	}

	if _, err := tx.Exec(
		`INSERT INTO logs (type, item_name, quantity, ic_player_name, ooc_player_name) VALUES (?, ?, ?, ?, ?)`,
		txType, item.Name, quantity, icPlayer, oocPlayer,
	); err != nil {
		return nil, fmt.Errorf("failed to append audit log: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	item.Quantity = newQuantity
	return &item, nil
}

// ListItems returns all items ordered by category then name, for display
func (s *Store) ListItems() ([]Item, error) {
	rows, err := s.db.Query(
		`SELECT id, name, quantity, category FROM items ORDER BY category, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %v", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &item.Category); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
