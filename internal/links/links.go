// Package links builds admin and public URLs for content items.
package links

import (
	"net/url"
	"strconv"
	"strings"

	"quicklinks/internal/model"
)

// Linker resolves item links. An empty string with ok=false means the link cannot be resolved.
type Linker interface {
	EditLink(it model.Item) (string, bool)
	ViewLink(it model.Item) (string, bool)
	PreviewLink(it model.Item) (string, bool)
	TypeListLink(t model.TypeDef) string
}

// TypeLookup resolves a type slug to its definition.
type TypeLookup func(slug string) (model.TypeDef, bool)

// URLLinker builds WordPress-style URLs under BaseURL.
type URLLinker struct {
	BaseURL string
	Types   TypeLookup
}

func (l URLLinker) base() string {
	return strings.TrimRight(strings.TrimSpace(l.BaseURL), "/")
}

func (l URLLinker) typeOf(it model.Item) (model.TypeDef, bool) {
	if l.Types == nil {
		return model.TypeDef{}, false
	}
	return l.Types(it.Type)
}

// EditLink requires a known type with an admin UI.
func (l URLLinker) EditLink(it model.Item) (string, bool) {
	if it.ID <= 0 {
		return "", false
	}
	t, ok := l.typeOf(it)
	if !ok || !t.ShowUI {
		return "", false
	}
	q := url.Values{}
	q.Set("post", strconv.FormatInt(it.ID, 10))
	q.Set("action", "edit")
	return l.base() + "/wp-admin/post.php?" + q.Encode(), true
}

// ViewLink is the public permalink. Only public types have one.
func (l URLLinker) ViewLink(it model.Item) (string, bool) {
	if it.ID <= 0 {
		return "", false
	}
	t, ok := l.typeOf(it)
	if !ok || !t.Public {
		return "", false
	}
	if slug := strings.Trim(strings.TrimSpace(it.Slug), "/"); slug != "" && it.Status == model.StatusPublish {
		return l.base() + "/" + url.PathEscape(slug) + "/", true
	}
	return l.base() + "/?p=" + strconv.FormatInt(it.ID, 10), true
}

func (l URLLinker) PreviewLink(it model.Item) (string, bool) {
	view, ok := l.ViewLink(it)
	if !ok {
		return "", false
	}
	if it.Status == model.StatusPublish {
		return view, true
	}
	sep := "?"
	if strings.Contains(view, "?") {
		sep = "&"
	}
	return view + sep + "preview=true", true
}

func (l URLLinker) TypeListLink(t model.TypeDef) string {
	return l.base() + "/wp-admin/edit.php?post_type=" + url.QueryEscape(t.Slug)
}
