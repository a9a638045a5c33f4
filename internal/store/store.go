package store

import (
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Store is the durable client-side storage backing the session and any other
// state that must survive restarts. It is a plain key/value table.
type Store struct {
	*sql.DB
}

// Open opens (or creates) the storage database at path and initializes the
// schema. An empty path places it in the default data directory.
func Open(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = defaultPath()
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db}, nil
}

// defaultPath returns the storage file location under the XDG data directory,
// falling back to ~/.local/share.
func defaultPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	appDir := filepath.Join(dataDir, "pmadmin")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(appDir, "pmadmin.db"), nil
}

// Get retrieves a stored value by key. A missing key yields an empty string.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Set stores a value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	_, err := s.Exec("DELETE FROM settings WHERE key = ?", key)
	return err
}
