package docs

import (
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	got := strings.Join(Topics(), ",")
	if got != "ajax,bar,overview,seed,server" {
		t.Fatalf("topics = %s", got)
	}
}

func TestGet(t *testing.T) {
	body, ok := Get(" Bar ")
	if !ok || !strings.Contains(body, "ctrl+p") {
		t.Fatalf("expected bar topic; ok=%v", ok)
	}
	for _, bad := range []string{"", "missing", "../docs", "content/bar"} {
		if _, ok := Get(bad); ok {
			t.Fatalf("Get(%q) should fail", bad)
		}
	}
}

func TestTitle(t *testing.T) {
	if got := Title("ajax"); got != "Ajax endpoint" {
		t.Fatalf("title = %q", got)
	}
	if got := Title("nope"); got != "nope" {
		t.Fatalf("title = %q", got)
	}
}
