package webtui

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
)

func TestNewServerValidatesConfig(t *testing.T) {
	if _, err := NewServer(ServerConfig{ServerURL: "http://127.0.0.1:8080"}); err == nil {
		t.Fatalf("expected error for missing addr")
	}
	if _, err := NewServer(ServerConfig{Addr: ":0", ServerURL: "127.0.0.1:8080"}); err == nil {
		t.Fatalf("expected error for relative server url")
	}
}

func TestTerminalPageAndRedirect(t *testing.T) {
	srv, err := NewServer(ServerConfig{Addr: ":0", ServerURL: "http://127.0.0.1:8080/", Login: "ann"})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	h := srv.Handler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/terminal" {
		t.Fatalf("unexpected redirect %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/terminal", nil))
	body := rr.Body.String()
	if rr.Code != http.StatusOK || !strings.Contains(body, "http://127.0.0.1:8080 as ann") {
		t.Fatalf("unexpected terminal page %d: %s", rr.Code, body)
	}
	if !strings.Contains(body, "xterm@"+XtermVersion) {
		t.Fatalf("expected pinned xterm build")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `type: "resize"`) {
		t.Fatalf("unexpected app.js %d", rr.Code)
	}
}

func TestBarArgs(t *testing.T) {
	srv, err := NewServer(ServerConfig{Addr: ":0", ServerURL: "http://example.test"})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if got, want := srv.barArgs(), []string{"bar", "--server", "http://example.test"}; !slices.Equal(got, want) {
		t.Fatalf("barArgs = %v; want %v", got, want)
	}
	srv.cfg.Login = "ed"
	if got := srv.barArgs(); got[len(got)-1] != "ed" || got[len(got)-2] != "--login" {
		t.Fatalf("expected login flag; got %v", got)
	}
}

func TestParseResize(t *testing.T) {
	ws, ok := parseResize([]byte(`{"type":"resize","cols":100,"rows":30}`))
	if !ok || ws.Cols != 100 || ws.Rows != 30 {
		t.Fatalf("parseResize = %+v %v", ws, ok)
	}
	for _, in := range []string{`{`, `{"type":"ping"}`, `{"type":"resize","cols":0,"rows":3}`, `abc`, ``} {
		if _, ok := parseResize([]byte(in)); ok {
			t.Fatalf("expected %q to be ignored", in)
		}
	}
}

func TestSameOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://127.0.0.1:3334/ws", nil)
	if !sameOrigin(req) {
		t.Fatalf("no Origin header should pass")
	}
	req.Header.Set("Origin", "http://127.0.0.1:3334")
	if !sameOrigin(req) {
		t.Fatalf("same origin should pass")
	}
	req.Header.Set("Origin", "http://evil.test:3334")
	if sameOrigin(req) {
		t.Fatalf("foreign origin should fail")
	}
}
