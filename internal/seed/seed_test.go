package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quicklinks/internal/model"
	"quicklinks/internal/pins"
	"quicklinks/internal/store"
)

func TestDemoFixtureApplies(t *testing.T) {
	ctx := context.Background()
	db, err := (store.Store{Dir: t.TempDir()}).Open(ctx)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	sum, err := Apply(ctx, db, Demo(), now)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if sum.Users != 4 || sum.Types != 5 || sum.Items != 10 || sum.Pins != 2 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	ann, err := db.UserByLogin(ctx, "ann")
	if err != nil {
		t.Fatalf("UserByLogin: %v", err)
	}
	if ann.Role != model.RoleAuthor {
		t.Fatalf("expected author role; got %s", ann.Role)
	}
	set, err := (pins.MetaRepository{Meta: db}).Get(ctx, ann.ID)
	if err != nil || len(set) != 1 || set[0] != 5 {
		t.Fatalf("expected ann pins [5]; got %v %v", set, err)
	}

	it, err := db.Item(ctx, 4)
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if it.AuthorID != ann.ID || !it.Modified.Equal(now.Add(-3*time.Hour)) {
		t.Fatalf("unexpected item %+v", it)
	}

	// Applying again keeps users stable.
	if _, err := Apply(ctx, db, Demo(), now); err != nil {
		t.Fatalf("re-Apply: %v", err)
	}
	again, _ := db.UserByLogin(ctx, "ann")
	if again.ID != ann.ID {
		t.Fatalf("expected stable user id %d; got %d", ann.ID, again.ID)
	}
}

func TestLoadFileAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	body := `users:
  - {login: Ed, role: editor}
items:
  - {id: 3, title: One, author: ed, modified: 2026-01-02T03:04:05Z}
  - {id: 4, title: Two, author: nobody}
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := f.Items[0].Modified; !got.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("unexpected modified %s", got)
	}
	if err := f.Validate(); err == nil {
		t.Fatalf("expected unknown author error")
	}

	if _, err := Parse([]byte("users: [")); err == nil {
		t.Fatalf("expected parse error")
	}
	bad := Fixture{Users: []model.User{{Login: "x", Role: "overlord"}}}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected unknown role error")
	}
}
