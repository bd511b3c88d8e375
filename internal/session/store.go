// Package session wraps the durable client-side key/value store holding
// the auth token, display username, selected currency and theme
// preference. Operations are synchronous; the server remains the sole
// validator of anything stored here.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

// Durable storage keys.
const (
	KeyToken    = "token"
	KeyUsername = "username"
	KeyCurrency = "currency"
	KeyTheme    = "theme"
)

type Store struct {
	db *sql.DB
}

// Open opens the session database at path, creating the file and its
// schema on first use.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create session directory: %w", err)
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

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("session read failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO session (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("store session key %s: %w", key, err)
	}
	return nil
}

func (s *Store) delete(keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec(`DELETE FROM session WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete session key %s: %w", key, err)
		}
	}
	return nil
}

// Token returns the stored bearer token, if any. No format validation
// happens client-side.
func (s *Store) Token() (string, bool) {
	return s.get(KeyToken)
}

func (s *Store) SetToken(token string) error {
	return s.set(KeyToken, token)
}

// DeleteToken removes only the token, as the global 401 handler does.
func (s *Store) DeleteToken() error {
	return s.delete(KeyToken)
}

func (s *Store) Username() (string, bool) {
	return s.get(KeyUsername)
}

func (s *Store) SetUsername(username string) error {
	return s.set(KeyUsername, username)
}

func (s *Store) Currency() (string, bool) {
	return s.get(KeyCurrency)
}

func (s *Store) SetCurrency(code string) error {
	return s.set(KeyCurrency, code)
}

func (s *Store) Theme() (core.Theme, bool) {
	value, ok := s.get(KeyTheme)
	if !ok {
		return "", false
	}
	theme := core.Theme(value)
	if !theme.Valid() {
		return "", false
	}
	return theme, true
}

func (s *Store) SetTheme(theme core.Theme) error {
	if !theme.Valid() {
		return core.ErrInvalidTheme
	}
	return s.set(KeyTheme, string(theme))
}

// Clear ends the session: token, username and currency are removed
// while the theme preference survives an explicit logout.
func (s *Store) Clear() error {
	return s.delete(KeyToken, KeyUsername, KeyCurrency)
}
