// Package session persists the admin bearer token (and the report worker's
// export cursor) in a small sqlite database, the only on-disk state this
// system owns. The token lives under a fixed key so a restart resumes the
// previous session.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// tokenKey is the fixed key the bearer token is stored under.
const tokenKey = "authToken"

type Store struct {
	db *sql.DB
}

// Open creates the database directory if needed, opens the database and
// brings the schema up to date.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create session db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping session database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run session migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadToken returns the stored bearer token, or "" when none is stored.
func (s *Store) LoadToken() (string, error) {
	var token string
	err := s.db.QueryRow(`SELECT value FROM session_store WHERE key = ?`, tokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

// SaveToken upserts the bearer token under the fixed key.
func (s *Store) SaveToken(token string) error {
	_, err := s.db.Exec(`
		INSERT INTO session_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		tokenKey, token)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// ClearToken removes the stored token. Clearing an absent token is not an
// error.
func (s *Store) ClearToken() error {
	if _, err := s.db.Exec(`DELETE FROM session_store WHERE key = ?`, tokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// LoadExportCursor returns the last exported record id for the named
// export, or 0 when the export has never run.
func (s *Store) LoadExportCursor(name string) (int64, error) {
	var lastID int64
	err := s.db.QueryRow(`SELECT last_id FROM export_cursor WHERE name = ?`, name).Scan(&lastID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load export cursor %q: %w", name, err)
	}
	return lastID, nil
}

// SaveExportCursor records the last exported id for the named export.
func (s *Store) SaveExportCursor(name string, lastID int64) error {
	_, err := s.db.Exec(`
		INSERT INTO export_cursor (name, last_id, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET last_id = excluded.last_id, updated_at = CURRENT_TIMESTAMP`,
		name, lastID)
	if err != nil {
		return fmt.Errorf("save export cursor %q: %w", name, err)
	}
	return nil
}
