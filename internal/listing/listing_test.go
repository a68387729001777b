package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"quicklinks/internal/model"
	"quicklinks/internal/pins"
	"quicklinks/internal/store"
)

type fakeItems struct {
	items     []model.Item
	recentErr error
	lastQuery store.RecentQuery
}

func (f *fakeItems) ItemsByID(_ context.Context, ids []int64, typ string) ([]model.Item, error) {
	var out []model.Item
	for _, id := range ids {
		for _, it := range f.items {
			if it.ID == id && (typ == "" || it.Type == typ) {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

func (f *fakeItems) Recent(_ context.Context, q store.RecentQuery) ([]model.Item, error) {
	f.lastQuery = q
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	var out []model.Item
	for _, it := range f.items {
		if q.Type != "" && it.Type != q.Type {
			continue
		}
		excluded := false
		for _, x := range q.ExcludeTypes {
			excluded = excluded || it.Type == x
		}
		if !excluded {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.ManualOrder && out[i].MenuOrder != out[j].MenuOrder {
			return out[i].MenuOrder < out[j].MenuOrder
		}
		return out[i].Modified.After(out[j].Modified)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

type fakeTypes []model.TypeDef

func (f fakeTypes) Types(context.Context) ([]model.TypeDef, error) { return f, nil }

type fakePins struct {
	set pins.Set
	err error
}

func (f *fakePins) Get(context.Context, int64) (pins.Set, error) { return f.set, f.err }
func (f *fakePins) Set(_ context.Context, _ int64, s pins.Set) error {
	f.set = s
	return nil
}

var testTypes = fakeTypes{
	{Slug: "post", Label: "Post", PluralLabel: "Posts", Public: true, ShowUI: true},
	{Slug: "page", Label: "Page", PluralLabel: "Pages", Public: true, ShowUI: true, Hierarchical: true, CreateRole: model.RoleEditor},
	{Slug: "note", Public: false, ShowUI: true},
	{Slug: model.AttachmentType, Label: "Media", Public: true, ShowUI: true},
}

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// seqItems returns posts 1..n, with higher ids modified more recently.
func seqItems(n int) []model.Item {
	out := make([]model.Item, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Item{
			ID:       int64(i),
			Title:    fmt.Sprintf("Item %d", i),
			Type:     "post",
			Status:   model.StatusPublish,
			AuthorID: 1,
			Modified: t0.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func newTestBuilder(items *fakeItems, p *fakePins) *Builder {
	return &Builder{
		Items:   items,
		Types:   testTypes,
		Pins:    p,
		BaseURL: "https://example.test",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

var editor = NewViewer(model.User{ID: 1, Login: "ed", Role: model.RoleEditor})

func rowIDs(m Menu) []int64 {
	out := make([]int64, 0, len(m.Rows))
	for _, r := range m.Rows {
		out = append(out, r.ID)
	}
	return out
}

func sameIDs(a, b []int64) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func TestBuild_PinnedFirstThenRecentWithoutDuplicates(t *testing.T) {
	items := &fakeItems{items: seqItems(5)}
	b := newTestBuilder(items, &fakePins{set: pins.Set{3, 1}})

	m := b.Build(context.Background(), editor, ScopeRecent, Context{})
	if got := rowIDs(m); !sameIDs(got, []int64{3, 1, 5, 4, 2}) {
		t.Fatalf("expected [3 1 5 4 2]; got %v", got)
	}
	if !m.Rows[0].Pinned || !m.Rows[1].Pinned || m.Rows[2].Pinned {
		t.Fatalf("unexpected pinned flags: %+v", m.Rows[:3])
	}
	if items.lastQuery.Limit != DefaultOverfetch || len(items.lastQuery.ExcludeTypes) != 1 || items.lastQuery.ExcludeTypes[0] != model.AttachmentType {
		t.Fatalf("unexpected recent query: %+v", items.lastQuery)
	}
}

func TestBuild_CapsRows(t *testing.T) {
	b := newTestBuilder(&fakeItems{items: seqItems(120)}, &fakePins{set: pins.Set{7}})
	b.Limits = Limits{MaxItems: 10, Overfetch: 20}

	m := b.Build(context.Background(), editor, ScopeRecent, Context{})
	if len(m.Rows) != 10 {
		t.Fatalf("expected 10 rows; got %d", len(m.Rows))
	}
	if m.Rows[0].ID != 7 {
		t.Fatalf("expected pinned item first; got %d", m.Rows[0].ID)
	}

	b.Limits = Limits{}
	m = b.Build(context.Background(), editor, ScopeRecent, Context{})
	if len(m.Rows) != DefaultMaxItems {
		t.Fatalf("expected %d rows; got %d", DefaultMaxItems, len(m.Rows))
	}
}

func TestBuild_SkipsUneditableAttachmentsAndUnlinkable(t *testing.T) {
	items := seqItems(3)
	items[0].AuthorID = 99 // someone else's
	items = append(items,
		model.Item{ID: 10, Title: "photo", Type: model.AttachmentType, AuthorID: 1, Modified: t0.Add(time.Hour)},
		model.Item{ID: 11, Title: "ghost type", Type: "unregistered", AuthorID: 1, Modified: t0.Add(2 * time.Hour)},
	)
	author := NewViewer(model.User{ID: 1, Role: model.RoleAuthor})
	b := newTestBuilder(&fakeItems{items: items}, &fakePins{set: pins.Set{10, 1}})

	m := b.Build(context.Background(), author, ScopeRecent, Context{})
	if got := rowIDs(m); !sameIDs(got, []int64{3, 2}) {
		t.Fatalf("expected [3 2]; got %v", got)
	}
}

func TestBuild_DegradesOnStoreErrors(t *testing.T) {
	items := &fakeItems{items: seqItems(2), recentErr: errors.New("boom")}
	b := newTestBuilder(items, &fakePins{set: pins.Set{2}})

	m := b.Build(context.Background(), editor, ScopeRecent, Context{})
	if got := rowIDs(m); !sameIDs(got, []int64{2}) {
		t.Fatalf("expected pinned row only; got %v", got)
	}

	b.Pins = &fakePins{err: errors.New("meta down")}
	m = b.Build(context.Background(), editor, ScopeRecent, Context{})
	if !m.Empty || len(m.Rows) != 0 {
		t.Fatalf("expected empty menu; got %+v", m)
	}
}

func TestBuild_PrimaryLink(t *testing.T) {
	items := seqItems(3)
	items[2].Slug = "third"
	b := newTestBuilder(&fakeItems{items: items}, &fakePins{})

	m := b.Build(context.Background(), editor, ScopeRecent, Context{})
	if m.Href != "https://example.test/wp-admin/post.php?action=edit&post=3" {
		t.Fatalf("unexpected primary link %q", m.Href)
	}

	onEdit := Context{Admin: true, Query: url.Values{"post": {"3"}, "action": {"edit"}}}
	m = b.Build(context.Background(), editor, ScopeRecent, onEdit)
	if m.Href != "https://example.test/third/" {
		t.Fatalf("expected view link while editing; got %q", m.Href)
	}

	otherEdit := Context{Admin: true, Query: url.Values{"post": {"2"}, "action": {"edit"}}}
	m = b.Build(context.Background(), editor, ScopeRecent, otherEdit)
	if !strings.HasSuffix(m.Href, "post=3") {
		t.Fatalf("expected edit link of item 3; got %q", m.Href)
	}
}

func TestBuild_RowLinksAndOptions(t *testing.T) {
	items := []model.Item{
		{ID: 1, Title: "Published", Type: "post", Status: model.StatusPublish, AuthorID: 5, Modified: t0.Add(3 * time.Minute)},
		{ID: 2, Title: "Draft", Type: "post", Status: model.StatusDraft, AuthorID: 5, Modified: t0.Add(2 * time.Minute)},
		{ID: 3, Title: "Private note", Type: "note", Status: model.StatusPrivate, AuthorID: 5, Modified: t0.Add(1 * time.Minute)},
	}
	contributor := NewViewer(model.User{ID: 5, Role: model.RoleContributor})
	b := newTestBuilder(&fakeItems{items: items}, &fakePins{})

	m := b.Build(context.Background(), editor, ScopeRecent, Context{})
	if m.Rows[0].TargetURL != "https://example.test/?p=1" {
		t.Fatalf("published post should target its view link; got %q", m.Rows[0].TargetURL)
	}
	if m.Rows[1].TargetURL != m.Rows[1].EditURL {
		t.Fatalf("draft should target its edit link; got %q", m.Rows[1].TargetURL)
	}
	if m.Rows[2].TargetURL != m.Rows[2].EditURL {
		t.Fatalf("non-public type should target its edit link; got %q", m.Rows[2].TargetURL)
	}
	if last := m.Rows[0].StatusOptions[len(m.Rows[0].StatusOptions)-1]; last.Value != "delete" || last.Class != "delete-option" {
		t.Fatalf("expected delete option for editor; got %+v", last)
	}
	var types []string
	for _, o := range m.Rows[0].TypeOptions {
		types = append(types, o.Value)
	}
	if strings.Join(types, ",") != "post,page" {
		t.Fatalf("expected post,page type options; got %v", types)
	}

	// Contributors only see their own unpublished items and cannot create pages.
	m = b.Build(context.Background(), contributor, ScopeRecent, Context{})
	if got := rowIDs(m); !sameIDs(got, []int64{2}) {
		t.Fatalf("expected [2]; got %v", got)
	}
	for _, o := range m.Rows[0].TypeOptions {
		if o.Value == "page" {
			t.Fatalf("contributor must not be offered page")
		}
	}
}

func TestBuild_StatusOptionsWithoutDeletePermission(t *testing.T) {
	v := Viewer{User: model.User{ID: 1}, Perm: editOnly{}}
	b := newTestBuilder(&fakeItems{items: []model.Item{{ID: 42, Title: "x", Type: "post", Status: "future"}}}, &fakePins{})

	m := b.Build(context.Background(), v, ScopeRecent, Context{})
	var vals []string
	for _, o := range m.Rows[0].StatusOptions {
		vals = append(vals, o.Value)
	}
	if strings.Join(vals, ",") != "future,draft,pending,private,publish" {
		t.Fatalf("unexpected status options %v", vals)
	}
	if !m.Rows[0].StatusOptions[0].Selected {
		t.Fatalf("expected current status selected")
	}
}

type editOnly struct{}

func (editOnly) CanEdit(model.Item) bool      { return true }
func (editOnly) CanPublish(model.Item) bool   { return false }
func (editOnly) CanDelete(model.Item) bool    { return false }
func (editOnly) CanCreate(model.TypeDef) bool { return true }

func TestBuild_RelatedMenuScopesToCurrentType(t *testing.T) {
	items := append(seqItems(2),
		model.Item{ID: 20, Title: "About", Type: "page", AuthorID: 1, MenuOrder: 2, Modified: t0.Add(time.Hour)},
		model.Item{ID: 21, Title: "Home", Type: "page", AuthorID: 1, MenuOrder: 1, Modified: t0},
	)
	fi := &fakeItems{items: items}
	b := newTestBuilder(fi, &fakePins{set: pins.Set{1, 20}})

	cases := []struct {
		name string
		c    Context
		want string
	}{
		{"param", Context{Query: url.Values{"post_type": {"page"}}}, "page"},
		{"edited item", Context{Admin: true, Query: url.Values{"post": {"21"}, "action": {"edit"}}}, "page"},
		{"screen hint", Context{ScreenHint: "page"}, "page"},
		{"attachment falls back", Context{Query: url.Values{"post_type": {model.AttachmentType}}, ScreenHint: "page"}, "post"},
		{"unknown falls back", Context{Query: url.Values{"post_type": {"nope"}}}, "post"},
		{"default", Context{}, "post"},
	}
	for _, tc := range cases {
		m := b.Build(context.Background(), editor, ScopeRelated, tc.c)
		if m.CurrentType != tc.want {
			t.Fatalf("%s: expected current type %q; got %q", tc.name, tc.want, m.CurrentType)
		}
	}

	m := b.Build(context.Background(), editor, ScopeRelated, Context{ScreenHint: "page"})
	// Pinned page first (pinned post 1 is out of scope), then manual order.
	if got := rowIDs(m); !sameIDs(got, []int64{20, 21}) {
		t.Fatalf("expected [20 21]; got %v", got)
	}
	if !fi.lastQuery.ManualOrder || fi.lastQuery.Type != "page" {
		t.Fatalf("expected manual-order page query; got %+v", fi.lastQuery)
	}
	if m.Title != "Recent Pages" || m.Href != "#" {
		t.Fatalf("unexpected related header %q %q", m.Title, m.Href)
	}
	if len(m.Shortcuts) != 2 || !m.Shortcuts[1].Active || m.Shortcuts[1].URL != "https://example.test/wp-admin/edit.php?post_type=page" {
		t.Fatalf("unexpected shortcuts %+v", m.Shortcuts)
	}
}

func TestBuild_EmptyMenus(t *testing.T) {
	b := newTestBuilder(&fakeItems{}, &fakePins{})
	m := b.Build(context.Background(), editor, ScopeRecent, Context{})
	if !m.Empty {
		t.Fatalf("expected empty recent menu")
	}

	// The related menu still has its type shortcuts.
	rel := b.Build(context.Background(), editor, ScopeRelated, Context{})
	if rel.Empty {
		t.Fatalf("expected related menu with shortcuts to render")
	}

	nobody := NewViewer(model.User{ID: 9, Role: model.RoleSubscriber})
	rel = b.Build(context.Background(), nobody, ScopeRelated, Context{})
	if !rel.Empty {
		t.Fatalf("expected empty related menu for a subscriber")
	}
}

func TestTruncateTitle(t *testing.T) {
	forty := strings.Repeat("a", 40)
	if got := TruncateTitle(forty); got != forty {
		t.Fatalf("40 chars must be unchanged; got %q", got)
	}
	if got := TruncateTitle(forty + "b"); got != forty+"..." {
		t.Fatalf("expected truncation; got %q", got)
	}
	if got := TruncateTitle(""); got != "(no title)" {
		t.Fatalf("expected placeholder; got %q", got)
	}
	long := strings.Repeat("é", 45)
	if got := TruncateTitle(long); got != strings.Repeat("é", 40)+"..." {
		t.Fatalf("expected rune-safe truncation; got %q", got)
	}
}

func TestRender(t *testing.T) {
	items := seqItems(3)
	items[1].Status = model.StatusDraft
	items[1].Title = ""
	b := newTestBuilder(&fakeItems{items: items}, &fakePins{set: pins.Set{2}})
	menus := b.BuildAll(context.Background(), editor, Context{})

	html, err := RenderString(menus)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	recent := doc.Find("#quicklinks-menu-recently-edited")
	if recent.Length() != 1 {
		t.Fatalf("expected recently-edited menu; html=%s", html)
	}
	rows := recent.Find("li.quicklinks-row")
	if rows.Length() != 3 {
		t.Fatalf("expected 3 rows; got %d", rows.Length())
	}
	first := rows.First()
	if id, _ := first.Attr("data-item-id"); id != "2" {
		t.Fatalf("expected pinned item 2 first; got %s", id)
	}
	if !first.Find(".quicklinks-pin").HasClass("is-pinned") || first.Find(".quicklinks-pin").Text() != PinnedGlyph {
		t.Fatalf("expected filled pin on first row")
	}
	if !first.HasClass("quicklinks-row--not-published") {
		t.Fatalf("expected draft row to be marked not published")
	}
	if got := first.Find(".quicklinks-title-link").Text(); got != NoTitle {
		t.Fatalf("expected placeholder title; got %q", got)
	}
	if got, _ := first.Find(".quicklinks-status-select option[selected]").Attr("value"); got != "draft" {
		t.Fatalf("expected draft selected; got %q", got)
	}
	if rows.Eq(1).Find(".quicklinks-pin").Text() != UnpinnedGlyph {
		t.Fatalf("expected outline pin on unpinned row")
	}
	if href, _ := recent.Find(".quicklinks-menu-header").Attr("href"); !strings.Contains(href, "post=2") {
		t.Fatalf("unexpected header href %q", href)
	}
	if doc.Find("#quicklinks-menu-related .quicklinks-shortcut").Length() != 2 {
		t.Fatalf("expected related shortcuts")
	}

	empty, err := RenderString([]Menu{{ID: ScopeRecent, Empty: true}})
	if err != nil {
		t.Fatalf("Render empty: %v", err)
	}
	if strings.Contains(empty, "quicklinks-menu") {
		t.Fatalf("empty menu must not render; got %s", empty)
	}
}
