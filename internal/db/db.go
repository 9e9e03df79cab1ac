package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// New opens (or creates) the SQLite database at dbPath and applies the schema.
func New(dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers anyway; one connection also keeps :memory: databases shared.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, now: func() time.Time { return time.Now().UTC() }}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversation_state (
		phone TEXT PRIMARY KEY,
		step TEXT NOT NULL DEFAULT 'MENU',
		flow TEXT NOT NULL DEFAULT 'MENU',
		draft TEXT NOT NULL DEFAULT '{}',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS users (
		phone TEXT PRIMARY KEY,
		role TEXT NOT NULL DEFAULT 'unknown',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS organizations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL UNIQUE,
		coverage_area TEXT NOT NULL DEFAULT '',
		can_pickup INTEGER NOT NULL DEFAULT 0,
		hours TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS donations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		donor_phone TEXT NOT NULL,
		food_type TEXT NOT NULL,
		qty TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		location TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS active_distributions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		volunteer_phone TEXT NOT NULL,
		food_type TEXT NOT NULL,
		qty TEXT NOT NULL,
		location TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		donation_id INTEGER NOT NULL,
		org_id INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'suggested',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (donation_id) REFERENCES donations(id),
		FOREIGN KEY (org_id) REFERENCES organizations(id)
	);

	CREATE TABLE IF NOT EXISTS processed_messages (
		message_id TEXT PRIMARY KEY,
		phone TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS volunteers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		phone TEXT NOT NULL,
		region TEXT NOT NULL,
		availability TEXT NOT NULL,
		has_transport INTEGER NOT NULL DEFAULT 0,
		location TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_organizations_active ON organizations(active);
	CREATE INDEX IF NOT EXISTS idx_donations_status ON donations(status);
	CREATE INDEX IF NOT EXISTS idx_matches_org_status ON matches(org_id, status);
	CREATE INDEX IF NOT EXISTS idx_matches_donation ON matches(donation_id);
	CREATE INDEX IF NOT EXISTS idx_distributions_status ON active_distributions(status);
	CREATE INDEX IF NOT EXISTS idx_processed_created ON processed_messages(created_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
