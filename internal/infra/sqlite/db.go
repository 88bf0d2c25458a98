// Package sqlite provides the local cache for Twin user data.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/twin.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "twin.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Session key-value store (active user, auth token)
		`CREATE TABLE IF NOT EXISTS session (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Cached user payloads. One row per username; saved_at feeds
		// the staleness annotation on offline loads.
		`CREATE TABLE IF NOT EXISTS user_blobs (
			username TEXT PRIMARY KEY,
			payload  TEXT NOT NULL,
			saved_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_blobs_saved ON user_blobs(saved_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Session Key-Value ──────────────────────────────────────────────────────

// SetSession stores a session key-value pair.
func (d *DB) SetSession(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO session (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// GetSession retrieves a session value by key.
// Returns "" if key not found.
func (d *DB) GetSession(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// ClearSession removes all session keys. Cached blobs stay put so the
// next login can still fall back offline.
func (d *DB) ClearSession() error {
	_, err := d.db.Exec(`DELETE FROM session`)
	return err
}

// ─── User Blobs ─────────────────────────────────────────────────────────────

// SaveUserBlob upserts the cached payload for a user.
func (d *DB) SaveUserBlob(username string, payload []byte, at time.Time) error {
	_, err := d.db.Exec(
		`INSERT INTO user_blobs (username, payload, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET payload=excluded.payload, saved_at=excluded.saved_at`,
		username, string(payload), at.Unix(),
	)
	return err
}

// GetUserBlob returns the cached payload and when it was saved.
// Returns (nil, zero, nil) when no row exists.
func (d *DB) GetUserBlob(username string) ([]byte, time.Time, error) {
	var payload string
	var savedAt int64
	err := d.db.QueryRow(
		`SELECT payload, saved_at FROM user_blobs WHERE username = ?`, username,
	).Scan(&payload, &savedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	return []byte(payload), time.Unix(savedAt, 0), nil
}

// DeleteUserBlob removes a cached payload.
func (d *DB) DeleteUserBlob(username string) error {
	_, err := d.db.Exec(`DELETE FROM user_blobs WHERE username = ?`, username)
	return err
}

// LastSavedAt returns the newest saved_at across all cached blobs,
// or the zero time when the cache is empty.
func (d *DB) LastSavedAt() (time.Time, error) {
	var savedAt sql.NullInt64
	err := d.db.QueryRow(`SELECT MAX(saved_at) FROM user_blobs`).Scan(&savedAt)
	if err != nil {
		return time.Time{}, err
	}
	if !savedAt.Valid {
		return time.Time{}, nil
	}
	return time.Unix(savedAt.Int64, 0), nil
}
