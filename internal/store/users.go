package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"quicklinks/internal/model"
)

func (db *DB) PutUser(ctx context.Context, u model.User) (model.User, error) {
	u.Login = strings.ToLower(strings.TrimSpace(u.Login))
	if u.Login == "" {
		return model.User{}, errors.New("store: user login is empty")
	}
	if u.DisplayName == "" {
		u.DisplayName = u.Login
	}
	var id any
	if u.ID > 0 {
		id = u.ID
	}
	if _, err := db.sql.ExecContext(ctx,
		`INSERT INTO users(id, login, display_name, role) VALUES(?, ?, ?, ?)
		 ON CONFLICT(login) DO UPDATE SET display_name = excluded.display_name, role = excluded.role`,
		id, u.Login, u.DisplayName, string(u.Role)); err != nil {
		return model.User{}, err
	}
	return db.UserByLogin(ctx, u.Login)
}

func (db *DB) UserByID(ctx context.Context, id int64) (model.User, error) {
	row := db.sql.QueryRowContext(ctx, `SELECT id, login, display_name, role FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, NotFoundError{Kind: "user", ID: strconv.FormatInt(id, 10)}
	}
	return u, err
}

func (db *DB) UserByLogin(ctx context.Context, login string) (model.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	row := db.sql.QueryRowContext(ctx, `SELECT id, login, display_name, role FROM users WHERE login = ?`, login)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, NotFoundError{Kind: "user", ID: login}
	}
	return u, err
}

// Users lists every user ordered by login.
func (db *DB) Users(ctx context.Context) ([]model.User, error) {
	rows, err := db.sql.QueryContext(ctx, `SELECT id, login, display_name, role FROM users ORDER BY login`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(sc interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var role string
	if err := sc.Scan(&u.ID, &u.Login, &u.DisplayName, &role); err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	return u, nil
}

// PutType registers or replaces a content type. Types keep their registration order.
func (db *DB) PutType(ctx context.Context, t model.TypeDef) error {
	t.Slug = strings.TrimSpace(t.Slug)
	if t.Slug == "" {
		return errors.New("store: type slug is empty")
	}
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO item_types(slug, label, plural_label, public, show_ui, hierarchical, create_role, position)
		 VALUES(?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM item_types))
		 ON CONFLICT(slug) DO UPDATE SET
			label = excluded.label,
			plural_label = excluded.plural_label,
			public = excluded.public,
			show_ui = excluded.show_ui,
			hierarchical = excluded.hierarchical,
			create_role = excluded.create_role`,
		t.Slug, t.Label, t.PluralLabel, boolToInt(t.Public), boolToInt(t.ShowUI), boolToInt(t.Hierarchical), string(t.CreateRole))
	return err
}

func (db *DB) Types(ctx context.Context) ([]model.TypeDef, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT slug, label, plural_label, public, show_ui, hierarchical, create_role FROM item_types ORDER BY position, slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TypeDef
	for rows.Next() {
		var t model.TypeDef
		var public, showUI, hier int
		var role string
		if err := rows.Scan(&t.Slug, &t.Label, &t.PluralLabel, &public, &showUI, &hier, &role); err != nil {
			return nil, err
		}
		t.Public = public != 0
		t.ShowUI = showUI != 0
		t.Hierarchical = hier != 0
		t.CreateRole = model.Role(role)
		out = append(out, t)
	}
	return out, rows.Err()
}
