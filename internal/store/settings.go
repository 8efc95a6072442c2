package store

import (
	"database/sql"
	"fmt"
)

const keyNotificationsEnabled = "notifications_enabled"

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q not found", key)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// NotificationsEnabled reports the user-level notification switch. Missing
// rows default to enabled.
func (s *SettingsStore) NotificationsEnabled() (bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, keyNotificationsEnabled).Scan(&value)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get notifications setting: %w", err)
	}
	return value == "1" || value == "true", nil
}

func (s *SettingsStore) SetNotificationsEnabled(enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	return s.Set(keyNotificationsEnabled, value)
}
