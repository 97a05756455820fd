package store

import (
	"database/sql"
	"fmt"
	"time"
)

// weekdays maps the stored setting value to time.Weekday.
var weekdays = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

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

func (s *SettingsStore) GetAll() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("get all settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// ResetWeekday returns the configured weekly reset day. Falls back to Sunday
// if the setting is missing or unrecognized rather than failing the request.
func (s *SettingsStore) ResetWeekday() time.Weekday {
	value, err := s.Get("reset_weekday")
	if err != nil {
		return time.Sunday
	}
	day, ok := weekdays[value]
	if !ok {
		return time.Sunday
	}
	return day
}

// SetResetWeekday stores the weekly reset day by name, e.g. "Sunday".
func (s *SettingsStore) SetResetWeekday(name string) error {
	if _, ok := weekdays[name]; !ok {
		return ErrInvalidInput
	}
	return s.Set("reset_weekday", name)
}
