package store

import (
	"database/sql"
	"time"
)

// GetPref returns the value for key and whether the key exists. A
// missing key is not an error: every preference has a caller-side
// default.
func (db *DB) GetPref(key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetPref inserts or updates a preference value.
func (db *DB) SetPref(key, value string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO prefs (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, value, now)
	return err
}

// DeletePref removes a preference. Deleting a missing key is a no-op.
func (db *DB) DeletePref(key string) error {
	_, err := db.Exec(`DELETE FROM prefs WHERE key = ?`, key)
	return err
}
