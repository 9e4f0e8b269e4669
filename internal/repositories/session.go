package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// SessionRepository is a small key-value store over SQLite, standing in for
// the browser local storage the session was originally persisted to.
//
// It implements store.Storage.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a SessionRepository with the given database connection.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get retrieves the value stored under key. The second return value reports
// whether the key exists.
func (r *SessionRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM session WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query session key %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (r *SessionRepository) Set(key, value string) error {
	query := `
		INSERT INTO session (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to store session key %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (r *SessionRepository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM session WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete session key %s: %w", key, err)
	}
	return nil
}
