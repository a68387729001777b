// Package pins maintains a user's ordered set of pinned item ids.
package pins

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// MaxPins caps the number of pinned ids kept per user.
const MaxPins = 20

// MetaKey is the per-user metadata key the pin set is stored under.
const MetaKey = "quicklinks_pins"

// Set is an ordered list of item ids, most recently pinned first.
type Set []int64

// Sanitize drops non-positive and duplicate ids (first occurrence wins) and truncates to MaxPins.
func Sanitize(ids []int64) Set {
	out := make(Set, 0, len(ids))
	seen := map[int64]bool{}
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		if len(out) >= MaxPins {
			break
		}
	}
	return out
}

func (s Set) Contains(id int64) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Toggle removes id when present; otherwise it prepends id and truncates to MaxPins.
// The receiver is not modified.
func (s Set) Toggle(id int64) (next Set, pinned bool) {
	if s.Contains(id) {
		next = make(Set, 0, len(s))
		for _, v := range s {
			if v != id {
				next = append(next, v)
			}
		}
		return next, false
	}
	next = make(Set, 0, len(s)+1)
	next = append(next, id)
	next = append(next, s...)
	return Sanitize(next), true
}

// Decode parses a stored pin list. Host metadata is untyped, so both numbers and numeric strings are accepted
// and anything unreadable decodes to an empty set.
func Decode(raw string) Set {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Set{}
	}
	var vals []any
	if err := json.Unmarshal([]byte(raw), &vals); err != nil {
		return Set{}
	}
	ids := make([]int64, 0, len(vals))
	for _, v := range vals {
		switch t := v.(type) {
		case float64:
			ids = append(ids, int64(t))
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
			if err == nil {
				ids = append(ids, n)
			}
		}
	}
	return Sanitize(ids)
}

func Encode(s Set) string {
	if s == nil {
		s = Set{}
	}
	b, _ := json.Marshal([]int64(s))
	return string(b)
}

// Repository loads and stores one pin set per user.
type Repository interface {
	Get(ctx context.Context, userID int64) (Set, error)
	Set(ctx context.Context, userID int64, pins Set) error
}

// MetaStore is the per-user key/value capability a MetaRepository is built on.
type MetaStore interface {
	GetUserMeta(ctx context.Context, userID int64, key string) (string, bool, error)
	SetUserMeta(ctx context.Context, userID int64, key, value string) error
}

// MetaRepository stores pin sets as JSON under MetaKey.
type MetaRepository struct {
	Meta MetaStore
}

func (r MetaRepository) Get(ctx context.Context, userID int64) (Set, error) {
	raw, ok, err := r.Meta.GetUserMeta(ctx, userID, MetaKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Set{}, nil
	}
	return Decode(raw), nil
}

func (r MetaRepository) Set(ctx context.Context, userID int64, pins Set) error {
	return r.Meta.SetUserMeta(ctx, userID, MetaKey, Encode(Sanitize(pins)))
}

// Toggle flips id in the user's pin set and persists the result.
// Two concurrent toggles for the same user may overwrite each other; there is no compare-and-swap.
func Toggle(ctx context.Context, repo Repository, userID, id int64) (Set, bool, error) {
	cur, err := repo.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	next, pinned := Sanitize(cur).Toggle(id)
	if err := repo.Set(ctx, userID, next); err != nil {
		return nil, false, err
	}
	return next, pinned, nil
}
