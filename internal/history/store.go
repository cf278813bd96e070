// Package history persists per-device event code sightings between runs.
// It is the novelty oracle: each device owns an isolated namespace mapping
// event code to the timestamp of its most recent observation.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "modernc.org/sqlite"
)

// Database configuration constants
const (
	// busyTimeoutMs is how long SQLite waits when the database is locked
	busyTimeoutMs = 5000
	// maxOpenConns limits concurrent connections (SQLite works best with 1)
	maxOpenConns = 1
	// maxIdleConns is the number of idle connections to keep
	maxIdleConns = 1
	// connMaxLifetime is how long a connection can be reused
	connMaxLifetime = 30 * time.Minute

	// currentSchemaVersion describes the per-device table layout
	currentSchemaVersion = 1
)

// Store handles history database operations.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	// Create directory if it doesn't exist (0700 - owner only)
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	// The _busy_timeout pragma prevents "database is locked" errors by waiting
	dsn := fmt.Sprintf("%s?_busy_timeout=%d", dbPath, busyTimeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite works best with a single connection to avoid lock contention
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return store, nil
}

// initSchema records the schema version. Device tables themselves are
// created on demand by EnsureDevice; the version row pins the layout they
// follow so a future layout change can migrate them in one place.
func (s *Store) initSchema() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var version int
	if err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version); err != nil {
		version = 0
	}
	if version >= currentSchemaVersion {
		return nil
	}

	if _, err := s.db.Exec(`DELETE FROM schema_version`); err != nil {
		return err
	}
	if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, currentSchemaVersion); err != nil {
		return err
	}
	return nil
}

// unsafeIdent matches everything that may not appear in a table name.
var unsafeIdent = regexp.MustCompile(`[^a-zA-Z0-9]`)

// tableName maps a device identity to its namespace table. Device
// identities come from inventory, never from log content.
func tableName(device string) string {
	return "device_" + unsafeIdent.ReplaceAllString(device, "_")
}

// EnsureDevice creates the device's namespace if it does not exist yet.
// Idempotent; must have run before Lookup or Record for that device.
func (s *Store) EnsureDevice(device string) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			code TEXT PRIMARY KEY,
			last_active TEXT NOT NULL
		)
	`, tableName(device))

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create namespace for device %s: %w", device, err)
	}
	return nil
}

// Lookup returns the recorded last-active time for a device's event code.
// ok is false when the code has never been seen for that device.
func (s *Store) Lookup(device, code string) (ts time.Time, ok bool, err error) {
	query := fmt.Sprintf(`SELECT last_active FROM %s WHERE code = ?`, tableName(device))

	var stored string
	err = s.db.QueryRow(query, code).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to look up %s for device %s: %w", code, device, err)
	}

	ts, err = time.Parse(time.RFC3339, stored)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt last_active for %s on device %s: %w", code, device, err)
	}
	return ts, true, nil
}

// Record inserts or unconditionally overwrites the last-active time for a
// device's event code.
func (s *Store) Record(device, code string, now time.Time) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (code, last_active) VALUES (?, ?)
		ON CONFLICT(code) DO UPDATE SET last_active = excluded.last_active
	`, tableName(device))

	if _, err := s.db.Exec(query, code, now.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to record %s for device %s: %w", code, device, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
