package links

import (
	"testing"

	"quicklinks/internal/model"
)

func testLinker() URLLinker {
	types := map[string]model.TypeDef{
		"post":    {Slug: "post", Public: true, ShowUI: true},
		"private": {Slug: "private", Public: false, ShowUI: true},
		"hidden":  {Slug: "hidden", Public: true, ShowUI: false},
	}
	return URLLinker{
		BaseURL: "https://example.test/",
		Types: func(slug string) (model.TypeDef, bool) {
			t, ok := types[slug]
			return t, ok
		},
	}
}

func TestURLLinker(t *testing.T) {
	l := testLinker()

	if got, ok := l.EditLink(model.Item{ID: 42, Type: "post"}); !ok || got != "https://example.test/wp-admin/post.php?action=edit&post=42" {
		t.Fatalf("unexpected edit link %q ok=%v", got, ok)
	}
	if _, ok := l.EditLink(model.Item{ID: 42, Type: "hidden"}); ok {
		t.Fatalf("expected no edit link without admin UI")
	}
	if _, ok := l.EditLink(model.Item{ID: 42, Type: "unknown"}); ok {
		t.Fatalf("expected no edit link for unknown type")
	}

	if got, _ := l.ViewLink(model.Item{ID: 7, Type: "post", Slug: "hello-world", Status: model.StatusPublish}); got != "https://example.test/hello-world/" {
		t.Fatalf("unexpected permalink %q", got)
	}
	if got, _ := l.ViewLink(model.Item{ID: 7, Type: "post", Slug: "hello-world", Status: model.StatusDraft}); got != "https://example.test/?p=7" {
		t.Fatalf("unexpected draft view link %q", got)
	}
	if _, ok := l.ViewLink(model.Item{ID: 7, Type: "private"}); ok {
		t.Fatalf("expected no view link for non-public type")
	}

	if got, _ := l.PreviewLink(model.Item{ID: 7, Type: "post", Status: model.StatusDraft}); got != "https://example.test/?p=7&preview=true" {
		t.Fatalf("unexpected preview link %q", got)
	}
	if got := l.TypeListLink(model.TypeDef{Slug: "page"}); got != "https://example.test/wp-admin/edit.php?post_type=page" {
		t.Fatalf("unexpected list link %q", got)
	}
}
