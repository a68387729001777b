package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const dbFileName = "quicklinks.sqlite"

type Store struct {
	Dir string
}

// DB is an open handle on the content store: users, content types, items and per-user metadata.
type DB struct {
	sql *sql.DB

	// Now stamps item modification times. Defaults to time.Now.
	Now func() time.Time
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) Path() string {
	return filepath.Join(s.Dir, dbFileName)
}

// Open opens (creating when missing) the SQLite database under Dir and applies migrations.
func (s Store) Open(ctx context.Context) (*DB, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return nil, errors.New("store: dir is empty")
	}
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.Path())
	if err != nil {
		return nil, err
	}
	// WAL: one writer + many readers; busy_timeout avoids "database is locked" when the CLI and server overlap.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{sql: db, Now: time.Now}, nil
}

func (db *DB) Close() error {
	if db == nil || db.sql == nil {
		return nil
	}
	return db.sql.Close()
}

func (db *DB) now() time.Time {
	if db.Now != nil {
		return db.Now().UTC()
	}
	return time.Now().UTC()
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			login TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			role TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS item_types (
			slug TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			plural_label TEXT NOT NULL,
			public INTEGER NOT NULL,
			show_ui INTEGER NOT NULL,
			hierarchical INTEGER NOT NULL,
			create_role TEXT NOT NULL,
			position INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL,
			author_id INTEGER NOT NULL,
			menu_order INTEGER NOT NULL,
			modified_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_modified ON items(modified_unixms DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_items_type ON items(type, menu_order, modified_unixms DESC);`,
		`CREATE TABLE IF NOT EXISTS user_meta (
			user_id INTEGER NOT NULL,
			meta_key TEXT NOT NULL,
			meta_value TEXT NOT NULL,
			PRIMARY KEY (user_id, meta_key)
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
