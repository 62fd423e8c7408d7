// Package ledger owns the SQLite-backed inventory and task-XP state: item
// quantities with an append-only audit log, capped daily drug-task
// completions and per-half-day gang-task completions.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Validation and invariant errors surfaced to command/event handlers
var (
	ErrItemNotFound        = errors.New("item not found")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidTransaction  = errors.New("invalid transaction type")
	ErrInvalidXPAmount     = errors.New("invalid xp amount")
	ErrDuplicateCompletion = errors.New("duplicate completion")
	ErrDailyLimitReached   = errors.New("daily limit reached")
)

// Store wraps the SQLite database. Handlers run on discordgo's callback
// goroutines, so every write path locks mu to serialize item and XP updates
// the way a single-threaded event loop would.
type Store struct {
	db *sql.DB
	mu sync.Mutex

	// Now is the clock used for reset dates and gang periods. Tests pin it.
	Now func() time.Time
}

// The five drug names seeded on first run, quantity 10 each
var defaultItems = []struct {
	name     string
	quantity int
	category string
}{
	{"Crack", 10, "drug"},
	{"Ghaarch", 10, "drug"},
	{"Marijuana", 10, "drug"},
	{"Shishe", 10, "drug"},
	{"Cocaine", 10, "drug"},
}

// Open opens (creating if needed) the inventory database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	connectionString := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	s := &Store{db: db, Now: time.Now}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	if err := s.seedItems(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed items: %v", err)
	}

	log.Printf("✅ SQLite database initialized at %s", path)
	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE COLLATE NOCASE,
			quantity INTEGER DEFAULT 0,
			category TEXT DEFAULT 'drug',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			item_name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			ic_player_name TEXT,
			ooc_player_name TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS drug_task_xp (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ic_player_name TEXT NOT NULL,
			ooc_player_name TEXT NOT NULL,
			xp_amount INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			reset_date TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS gang_task_xp (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ic_player_name TEXT NOT NULL,
			ooc_player_name TEXT NOT NULL,
			xp_amount INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			reset_period INTEGER NOT NULL,
			reset_date TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_drug_task_reset_date ON drug_task_xp(reset_date)`,
		`CREATE INDEX IF NOT EXISTS idx_gang_task_reset ON gang_task_xp(reset_date, reset_period)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// seedItems inserts the default drug items on first run
func (s *Store) seedItems() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Printf("No items found, seeding default items")
	for _, item := range defaultItems {
		if _, err := s.db.Exec(
			`INSERT OR IGNORE INTO items (name, quantity, category) VALUES (?, ?, ?)`,
			item.name, item.quantity, item.category,
		); err != nil {
			return err
		}
	}
	return nil
}

// PruneExpiredXP deletes drug and gang task completion rows whose reset date
// is more than retentionDays in the past. Audit log rows are kept. Returns
// the number of rows removed.
func (s *Store) PruneExpiredXP(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := ResetDateAt(s.Now().AddDate(0, 0, -retentionDays))

	var total int64
	for _, table := range []string{"drug_task_xp", "gang_task_xp"} {
		res, err := s.db.Exec(`DELETE FROM `+table+` WHERE reset_date < ?`, cutoff)
		if err != nil {
			return total, fmt.Errorf("failed to prune %s: %v", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}

	if total > 0 {
		log.Printf("🧹 XP retention: pruned %d completion rows older than %s", total, cutoff)
	}
	return total, nil
}
