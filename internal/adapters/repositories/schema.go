package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite schema for the delivery log.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	query := `
	CREATE TABLE IF NOT EXISTS deliveries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		delivery_date TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		client_index TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		feed_type TEXT NOT NULL,
		price INTEGER NOT NULL,
		location TEXT NOT NULL,
		notes TEXT NOT NULL,
		debt INTEGER NOT NULL DEFAULT 0,
		overpaid INTEGER NOT NULL DEFAULT 0,
		reminders TEXT NOT NULL
	);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("init schema: create deliveries table: %w", err)
	}

	return nil
}

// Initialize the postgres schema for the delivery log. Used by the dbtool
// before pointing replicas at a shared database.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	query := `
	CREATE TABLE IF NOT EXISTS deliveries (
		id BIGSERIAL PRIMARY KEY,
		delivery_date TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		client_index TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		feed_type TEXT NOT NULL,
		price INTEGER NOT NULL,
		location TEXT NOT NULL,
		notes TEXT NOT NULL,
		debt INTEGER NOT NULL DEFAULT 0,
		overpaid INTEGER NOT NULL DEFAULT 0,
		reminders TEXT NOT NULL
	);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("init postgres schema: create deliveries table: %w", err)
	}

	return nil
}
