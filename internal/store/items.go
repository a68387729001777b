package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"quicklinks/internal/model"
)

// RecentQuery selects items by modification time.
type RecentQuery struct {
	// Type restricts results to one content type when non-empty.
	Type string

	ExcludeTypes []string

	// ManualOrder sorts by menu_order ascending before modification time.
	ManualOrder bool

	Limit int
}

const itemColumns = `id, title, slug, type, status, author_id, menu_order, modified_unixms`

func scanItem(sc interface{ Scan(...any) error }) (model.Item, error) {
	var it model.Item
	var status string
	var modMs int64
	if err := sc.Scan(&it.ID, &it.Title, &it.Slug, &it.Type, &status, &it.AuthorID, &it.MenuOrder, &modMs); err != nil {
		return model.Item{}, err
	}
	it.Status = model.Status(status)
	it.Modified = time.UnixMilli(modMs).UTC()
	return it, nil
}

// PutItem inserts or replaces an item. A zero ID lets SQLite assign one; a zero Modified is stamped with now.
func (db *DB) PutItem(ctx context.Context, it model.Item) (model.Item, error) {
	if strings.TrimSpace(it.Type) == "" {
		return model.Item{}, errors.New("store: item type is empty")
	}
	if it.Status == "" {
		it.Status = model.StatusDraft
	}
	if it.Modified.IsZero() {
		it.Modified = db.now()
	}
	var id any
	if it.ID > 0 {
		id = it.ID
	}
	res, err := db.sql.ExecContext(ctx,
		`INSERT OR REPLACE INTO items(`+itemColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		id, it.Title, it.Slug, it.Type, string(it.Status), it.AuthorID, it.MenuOrder, it.Modified.UTC().UnixMilli())
	if err != nil {
		return model.Item{}, err
	}
	if it.ID <= 0 {
		newID, err := res.LastInsertId()
		if err != nil {
			return model.Item{}, err
		}
		it.ID = newID
	}
	return it, nil
}

func (db *DB) Item(ctx context.Context, id int64) (model.Item, error) {
	row := db.sql.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, NotFoundError{Kind: "item", ID: strconv.FormatInt(id, 10)}
	}
	return it, err
}

// ItemsByID returns the items for ids in the order given. Missing ids are skipped.
// When typ is non-empty, items of other types are skipped too.
func (db *DB) ItemsByID(ctx context.Context, ids []int64, typ string) ([]model.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		ph = append(ph, "?")
		args = append(args, id)
	}
	q := `SELECT ` + itemColumns + ` FROM items WHERE id IN (` + strings.Join(ph, ",") + `)`
	if typ = strings.TrimSpace(typ); typ != "" {
		q += ` AND type = ?`
		args = append(args, typ)
	}
	rows, err := db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[int64]model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		byID[it.ID] = it
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.Item, 0, len(byID))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (db *DB) Recent(ctx context.Context, q RecentQuery) ([]model.Item, error) {
	var where []string
	var args []any
	if t := strings.TrimSpace(q.Type); t != "" {
		where = append(where, `type = ?`)
		args = append(args, t)
	}
	if len(q.ExcludeTypes) > 0 {
		ph := make([]string, 0, len(q.ExcludeTypes))
		for _, t := range q.ExcludeTypes {
			ph = append(ph, "?")
			args = append(args, t)
		}
		where = append(where, `type NOT IN (`+strings.Join(ph, ",")+`)`)
	}

	stmt := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		stmt += ` WHERE ` + strings.Join(where, " AND ")
	}
	if q.ManualOrder {
		stmt += ` ORDER BY menu_order ASC, modified_unixms DESC, id DESC`
	} else {
		stmt += ` ORDER BY modified_unixms DESC, id DESC`
	}
	if q.Limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := db.sql.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (db *DB) SetItemStatus(ctx context.Context, id int64, status model.Status) error {
	return db.updateItem(ctx, id, `status = ?`, string(status))
}

func (db *DB) SetItemType(ctx context.Context, id int64, typ string) error {
	return db.updateItem(ctx, id, `type = ?`, typ)
}

func (db *DB) updateItem(ctx context.Context, id int64, set string, val any) error {
	res, err := db.sql.ExecContext(ctx, `UPDATE items SET `+set+`, modified_unixms = ? WHERE id = ?`, val, db.now().UnixMilli(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: "item", ID: strconv.FormatInt(id, 10)}
	}
	return nil
}

func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	res, err := db.sql.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: "item", ID: strconv.FormatInt(id, 10)}
	}
	return nil
}
