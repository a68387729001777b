// Package seed loads YAML fixtures of users, content types, items and pins into the store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"quicklinks/internal/model"
	"quicklinks/internal/pins"
)

//go:embed demo.yaml
var demoYAML []byte

type Fixture struct {
	Users []model.User       `yaml:"users"`
	Types []model.TypeDef    `yaml:"types"`
	Items []Item             `yaml:"items"`
	Pins  map[string][]int64 `yaml:"pins"`
}

// Item is a fixture item. Author is a user login. Modified wins over Age, which is relative to the apply time.
type Item struct {
	ID        int64         `yaml:"id"`
	Title     string        `yaml:"title"`
	Slug      string        `yaml:"slug"`
	Type      string        `yaml:"type"`
	Status    model.Status  `yaml:"status"`
	Author    string        `yaml:"author"`
	MenuOrder int           `yaml:"menuOrder"`
	Modified  time.Time     `yaml:"modified"`
	Age       time.Duration `yaml:"age"`
}

func Parse(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return f, nil
}

func LoadFile(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to read fixture: %w", err)
	}
	return Parse(data)
}

// Demo is the built-in fixture used when no file is given.
func Demo() Fixture {
	f, err := Parse(demoYAML)
	if err != nil {
		panic(err)
	}
	return f
}

// Target is the store surface a fixture is written to.
type Target interface {
	PutUser(ctx context.Context, u model.User) (model.User, error)
	PutType(ctx context.Context, t model.TypeDef) error
	PutItem(ctx context.Context, it model.Item) (model.Item, error)
	pins.MetaStore
}

type Summary struct {
	Users int `json:"users"`
	Types int `json:"types"`
	Items int `json:"items"`
	Pins  int `json:"pins"`
}

func (f Fixture) Validate() error {
	logins := map[string]bool{}
	for _, u := range f.Users {
		login := strings.ToLower(strings.TrimSpace(u.Login))
		if login == "" {
			return errors.New("seed: user without login")
		}
		if u.Role.Rank() == 0 {
			return fmt.Errorf("seed: user %s: unknown role %q", login, u.Role)
		}
		logins[login] = true
	}
	for _, t := range f.Types {
		if strings.TrimSpace(t.Slug) == "" {
			return errors.New("seed: type without slug")
		}
	}
	for _, it := range f.Items {
		if it.ID < 0 {
			return fmt.Errorf("seed: item %d: negative id", it.ID)
		}
		if !logins[strings.ToLower(strings.TrimSpace(it.Author))] {
			return fmt.Errorf("seed: item %d: unknown author %q", it.ID, it.Author)
		}
	}
	for login := range f.Pins {
		if !logins[strings.ToLower(strings.TrimSpace(login))] {
			return fmt.Errorf("seed: pins for unknown user %q", login)
		}
	}
	return nil
}

// Apply writes the fixture. Existing users are matched by login, items and types by id/slug, so applying twice is
// idempotent apart from Age-relative modification times.
func Apply(ctx context.Context, db Target, f Fixture, now time.Time) (Summary, error) {
	if err := f.Validate(); err != nil {
		return Summary{}, err
	}
	var sum Summary

	ids := map[string]int64{}
	for _, u := range f.Users {
		saved, err := db.PutUser(ctx, u)
		if err != nil {
			return sum, fmt.Errorf("seed: user %s: %w", u.Login, err)
		}
		ids[saved.Login] = saved.ID
		sum.Users++
	}
	for _, t := range f.Types {
		if err := db.PutType(ctx, t); err != nil {
			return sum, fmt.Errorf("seed: type %s: %w", t.Slug, err)
		}
		sum.Types++
	}
	for _, fi := range f.Items {
		it := model.Item{
			ID:        fi.ID,
			Title:     fi.Title,
			Slug:      fi.Slug,
			Type:      strings.TrimSpace(fi.Type),
			Status:    fi.Status,
			AuthorID:  ids[strings.ToLower(strings.TrimSpace(fi.Author))],
			MenuOrder: fi.MenuOrder,
			Modified:  fi.Modified,
		}
		if it.Type == "" {
			it.Type = model.DefaultType
		}
		if it.Status == "" {
			it.Status = model.StatusDraft
		}
		if it.Modified.IsZero() {
			it.Modified = now.Add(-fi.Age)
		}
		if _, err := db.PutItem(ctx, it); err != nil {
			return sum, fmt.Errorf("seed: item %d: %w", fi.ID, err)
		}
		sum.Items++
	}

	repo := pins.MetaRepository{Meta: db}
	for login, set := range f.Pins {
		uid := ids[strings.ToLower(strings.TrimSpace(login))]
		if err := repo.Set(ctx, uid, pins.Sanitize(set)); err != nil {
			return sum, fmt.Errorf("seed: pins for %s: %w", login, err)
		}
		sum.Pins++
	}
	return sum, nil
}
