package store

import (
	"context"
	"database/sql"
	"errors"
)

// GetUserMeta returns the raw value stored under key for userID. ok is false when nothing is stored.
func (db *DB) GetUserMeta(ctx context.Context, userID int64, key string) (string, bool, error) {
	var v string
	err := db.sql.QueryRowContext(ctx, `SELECT meta_value FROM user_meta WHERE user_id = ? AND meta_key = ?`, userID, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (db *DB) SetUserMeta(ctx context.Context, userID int64, key, value string) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO user_meta(user_id, meta_key, meta_value) VALUES(?, ?, ?)
		 ON CONFLICT(user_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value`,
		userID, key, value)
	return err
}
