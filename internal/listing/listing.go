// Package listing builds the recently-edited and related menus for one viewer.
//
// A menu is the merge of the viewer's pinned items (in pin order) followed by recently modified items, deduplicated
// by id with the first occurrence winning, restricted to items the viewer can edit and capped at Limits.MaxItems.
// Building never fails because of data: item-store errors degrade to empty sources and unusable rows are skipped.
package listing

import (
	"context"
	"log/slog"

	"quicklinks/internal/links"
	"quicklinks/internal/model"
	"quicklinks/internal/perm"
	"quicklinks/internal/pins"
	"quicklinks/internal/store"
)

type Scope string

const (
	ScopeRecent  Scope = "recently-edited"
	ScopeRelated Scope = "related"
)

const (
	DefaultMaxItems  = 50
	DefaultOverfetch = 200
)

// ItemSource is the read side of the item store.
type ItemSource interface {
	ItemsByID(ctx context.Context, ids []int64, typ string) ([]model.Item, error)
	Recent(ctx context.Context, q store.RecentQuery) ([]model.Item, error)
}

type TypeRegistry interface {
	Types(ctx context.Context) ([]model.TypeDef, error)
}

type Limits struct {
	// MaxItems caps the rows of one menu.
	MaxItems int
	// Overfetch is how many recent items are requested to absorb filtering.
	Overfetch int
}

func (l Limits) normalized() Limits {
	if l.MaxItems <= 0 {
		l.MaxItems = DefaultMaxItems
	}
	if l.Overfetch <= 0 {
		l.Overfetch = DefaultOverfetch
	}
	return l
}

type Viewer struct {
	User model.User
	Perm perm.Oracle
}

// NewViewer pairs a user with the role-based permission oracle.
func NewViewer(u model.User) Viewer {
	return Viewer{User: u, Perm: perm.ForUser(u)}
}

type Builder struct {
	Items ItemSource
	Types TypeRegistry
	Pins  pins.Repository

	// BaseURL is used to build links when Linker is nil.
	BaseURL string
	Linker  links.Linker

	// Resolvers infer the current content type for the related menu. Defaults to DefaultResolvers.
	Resolvers []TypeResolver

	Limits Limits
	Logger *slog.Logger
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

type Menu struct {
	ID    Scope  `json:"id"`
	Title string `json:"title"`
	Href  string `json:"href"`

	// CurrentType is the type the related menu is scoped to.
	CurrentType string     `json:"currentType,omitempty"`
	Shortcuts   []Shortcut `json:"shortcuts,omitempty"`
	Rows        []Row      `json:"rows"`

	// Empty menus are not rendered at all.
	Empty bool `json:"empty"`
}

// Shortcut is a type-filter link in the related menu's header band.
type Shortcut struct {
	Slug   string `json:"slug"`
	Label  string `json:"label"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// BuildAll builds both menus for one request.
func (b *Builder) BuildAll(ctx context.Context, v Viewer, c Context) []Menu {
	return []Menu{
		b.Build(ctx, v, ScopeRecent, c),
		b.Build(ctx, v, ScopeRelated, c),
	}
}

func (b *Builder) Build(ctx context.Context, v Viewer, scope Scope, c Context) Menu {
	lim := b.Limits.normalized()
	log := b.logger().With("scope", string(scope), "user", v.User.ID)

	types, err := b.Types.Types(ctx)
	if err != nil {
		log.Warn("listing: load types", "err", err)
		types = nil
	}
	reg := newTypeIndex(types)
	linker := b.Linker
	if linker == nil {
		linker = links.URLLinker{BaseURL: b.BaseURL, Types: reg.lookup}
	}

	menu := Menu{ID: scope, Href: "#"}
	q := store.RecentQuery{ExcludeTypes: []string{model.AttachmentType}, Limit: lim.Overfetch}
	if scope == ScopeRelated {
		cur := b.currentType(ctx, c, reg)
		menu.CurrentType = cur
		q.Type = cur
		if t, ok := reg.lookup(cur); ok {
			q.ManualOrder = t.Hierarchical
		}
		menu.Title = "Recent " + reg.pluralLabel(cur)
		menu.Shortcuts = shortcuts(v, reg, linker, cur)
	} else {
		menu.Title = "Recently Edited"
	}

	pinSet := b.loadPins(ctx, log, v.User.ID)
	pinned, err := b.Items.ItemsByID(ctx, pinSet, q.Type)
	if err != nil {
		log.Warn("listing: resolve pinned items", "err", err)
		pinned = nil
	}
	recent, err := b.Items.Recent(ctx, q)
	if err != nil {
		log.Warn("listing: recent items", "err", err)
		recent = nil
	}

	seen := map[int64]bool{}
	for _, it := range append(append([]model.Item{}, pinned...), recent...) {
		if it.Type == model.AttachmentType || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		if v.Perm == nil || !v.Perm.CanEdit(it) {
			continue
		}
		row, ok := buildRow(v, reg, linker, it, pinSet.Contains(it.ID))
		if !ok {
			log.Debug("listing: skip row without edit link", "item", it.ID)
			continue
		}
		if len(menu.Rows) >= lim.MaxItems {
			break
		}
		menu.Rows = append(menu.Rows, row)
	}

	if scope == ScopeRecent && len(menu.Rows) > 0 {
		first := menu.Rows[0]
		menu.Href = first.EditURL
		if c.isEditing(first.ID) {
			menu.Href = "#"
			if first.ViewURL != "" {
				menu.Href = first.ViewURL
			}
		}
	}
	menu.Empty = len(menu.Rows) == 0 && len(menu.Shortcuts) == 0
	return menu
}

func (b *Builder) loadPins(ctx context.Context, log *slog.Logger, userID int64) pins.Set {
	if b.Pins == nil {
		return pins.Set{}
	}
	set, err := b.Pins.Get(ctx, userID)
	if err != nil {
		log.Warn("listing: load pins", "err", err)
		return pins.Set{}
	}
	return pins.Sanitize(set)
}

func shortcuts(v Viewer, reg typeIndex, linker links.Linker, current string) []Shortcut {
	var out []Shortcut
	for _, t := range reg.manageable() {
		if v.Perm == nil || !v.Perm.CanCreate(t) {
			continue
		}
		out = append(out, Shortcut{
			Slug:   t.Slug,
			Label:  reg.pluralLabel(t.Slug),
			URL:    linker.TypeListLink(t),
			Active: t.Slug == current,
		})
	}
	return out
}
