package listing

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"quicklinks/internal/model"
)

// Context describes the admin screen a menu is rendered on.
type Context struct {
	// Query holds the request's query parameters (post_type, post, action).
	Query url.Values

	// ScreenHint is the content type the host reports for the current screen, if any.
	ScreenHint string

	// Admin is true on admin screens. The edit-screen check only applies there.
	Admin bool
}

func (c Context) get(k string) string {
	if c.Query == nil {
		return ""
	}
	return strings.TrimSpace(c.Query.Get(k))
}

// EditingID returns the id of the item whose edit screen this is, or 0.
func (c Context) EditingID() int64 {
	if !c.Admin || c.get("action") != "edit" {
		return 0
	}
	id, err := strconv.ParseInt(c.get("post"), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func (c Context) isEditing(id int64) bool {
	return id > 0 && c.EditingID() == id
}

// TypeResolver proposes the current content type. An empty result defers to the next resolver.
type TypeResolver func(ctx context.Context, src ItemSource, c Context) string

// DefaultResolvers is the inference order: explicit parameter, edited item's type, screen hint.
var DefaultResolvers = []TypeResolver{
	TypeFromParam,
	TypeFromEditedItem,
	TypeFromScreenHint,
}

func TypeFromParam(_ context.Context, _ ItemSource, c Context) string {
	return c.get("post_type")
}

func TypeFromEditedItem(ctx context.Context, src ItemSource, c Context) string {
	id := c.EditingID()
	if id == 0 || src == nil {
		return ""
	}
	items, err := src.ItemsByID(ctx, []int64{id}, "")
	if err != nil || len(items) == 0 {
		return ""
	}
	return items[0].Type
}

func TypeFromScreenHint(_ context.Context, _ ItemSource, c Context) string {
	return strings.TrimSpace(c.ScreenHint)
}

// currentType runs the resolvers; the first non-empty answer wins. Attachments and unknown types fall back to
// model.DefaultType.
func (b *Builder) currentType(ctx context.Context, c Context, reg typeIndex) string {
	resolvers := b.Resolvers
	if len(resolvers) == 0 {
		resolvers = DefaultResolvers
	}
	for _, r := range resolvers {
		t := strings.TrimSpace(r(ctx, b.Items, c))
		if t == "" {
			continue
		}
		if t == model.AttachmentType {
			break
		}
		if _, ok := reg.lookup(t); !ok {
			break
		}
		return t
	}
	return model.DefaultType
}

type typeIndex struct {
	order  []model.TypeDef
	bySlug map[string]model.TypeDef
}

func newTypeIndex(types []model.TypeDef) typeIndex {
	idx := typeIndex{order: types, bySlug: make(map[string]model.TypeDef, len(types))}
	for _, t := range types {
		idx.bySlug[t.Slug] = t
	}
	return idx
}

func (x typeIndex) lookup(slug string) (model.TypeDef, bool) {
	t, ok := x.bySlug[slug]
	return t, ok
}

func (x typeIndex) manageable() []model.TypeDef {
	var out []model.TypeDef
	for _, t := range x.order {
		if t.Manageable() {
			out = append(out, t)
		}
	}
	return out
}

func humanizeSlug(slug string) string {
	// Casers are stateful; never share one between requests.
	return cases.Title(language.English).String(strings.NewReplacer("_", " ", "-", " ").Replace(slug))
}

func (x typeIndex) label(slug string) string {
	if t, ok := x.bySlug[slug]; ok && strings.TrimSpace(t.Label) != "" {
		return t.Label
	}
	return humanizeSlug(slug)
}

func (x typeIndex) pluralLabel(slug string) string {
	if t, ok := x.bySlug[slug]; ok && strings.TrimSpace(t.PluralLabel) != "" {
		return t.PluralLabel
	}
	return x.label(slug) + "s"
}
