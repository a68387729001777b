package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustRun(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: quicklinks %v\nerr: %v\nstderr:\n%s", args, err, string(stderr))
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s", err, string(stdout))
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected data key; got %v", env)
	}
	return env
}

func seeded(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	env := mustRun(t, "--dir", dir, "seed")
	sum, _ := env["data"].(map[string]any)
	if sum["items"] != float64(10) || sum["users"] != float64(4) {
		t.Fatalf("unexpected seed summary: %v", sum)
	}
	return dir
}

func menuRowIDs(t *testing.T, env map[string]any, menu int) []int {
	t.Helper()
	menus, _ := env["data"].([]any)
	if len(menus) != 2 {
		t.Fatalf("expected 2 menus; got %v", env["data"])
	}
	m, _ := menus[menu].(map[string]any)
	rows, _ := m["rows"].([]any)
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, int(r.(map[string]any)["id"].(float64)))
	}
	return ids
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMenuForEditScreen(t *testing.T) {
	dir := seeded(t)
	env := mustRun(t, "--dir", dir, "--user", "ed", "menu", "--post", "2")
	if got := menuRowIDs(t, env, 1); !equalInts(got, []int{2, 3}) {
		t.Fatalf("related rows = %v", got)
	}
	menus := env["data"].([]any)
	if title := menus[1].(map[string]any)["title"]; title != "Recent Pages" {
		t.Fatalf("related title = %v", title)
	}
}

func TestPinsToggleAndList(t *testing.T) {
	dir := seeded(t)
	env := mustRun(t, "--dir", dir, "--user", "ann", "pins", "toggle", "7")
	if state := env["data"].(map[string]any)["state"]; state != "pinned" {
		t.Fatalf("state = %v", state)
	}
	env = mustRun(t, "--dir", dir, "--user", "ann", "pins", "list")
	pins, _ := env["data"].([]any)
	if len(pins) != 2 || pins[0] != float64(7) || pins[1] != float64(5) {
		t.Fatalf("pins = %v", env["data"])
	}
	env = mustRun(t, "--dir", dir, "--user", "ann", "menu")
	if got := menuRowIDs(t, env, 0); !equalInts(got, []int{7, 5, 4}) {
		t.Fatalf("recently edited rows = %v", got)
	}
}

func TestStatusCommandEnforcesPermissions(t *testing.T) {
	dir := seeded(t)
	_, stderr, err := runCLI(t, []string{"--dir", dir, "--user", "cody", "status", "42", "publish"})
	if err == nil || !strings.Contains(string(stderr), "Cannot publish.") {
		t.Fatalf("expected Cannot publish.; err=%v stderr=%s", err, stderr)
	}
	env := mustRun(t, "--dir", dir, "--user", "cody", "status", "42", "pending")
	data := env["data"].(map[string]any)
	if data["status"] != "pending" || data["changed"] != true {
		t.Fatalf("unexpected result: %v", data)
	}
}

func TestTypeCommand(t *testing.T) {
	dir := seeded(t)
	env := mustRun(t, "--dir", dir, "--user", "admin", "type", "1", "page")
	if data := env["data"].(map[string]any); data["postType"] != "page" {
		t.Fatalf("unexpected result: %v", data)
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "--user", "admin", "type", "1", "attachment"}); err == nil {
		t.Fatalf("expected attachment to be rejected")
	}
}

func TestMissingUser(t *testing.T) {
	dir := seeded(t)
	_, stderr, err := runCLI(t, []string{"--dir", dir, "--user", "nobody", "pins", "list"})
	if err == nil || !strings.Contains(string(stderr), "user not found: nobody") {
		t.Fatalf("expected user not found; err=%v stderr=%s", err, stderr)
	}
}

func TestYAMLOutput(t *testing.T) {
	dir := seeded(t)
	stdout, _, err := runCLI(t, []string{"--dir", dir, "--format", "yaml", "users"})
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if !strings.Contains(string(stdout), "login: admin") {
		t.Fatalf("unexpected yaml:\n%s", stdout)
	}
}

func TestServeNeedsUserInAuthNone(t *testing.T) {
	t.Setenv("QUICKLINKS_USER", "")
	t.Setenv("QUICKLINKS_AUTH", "")
	_, stderr, err := runCLI(t, []string{"--dir", t.TempDir(), "serve"})
	if err == nil || !strings.Contains(string(stderr), "needs a user") {
		t.Fatalf("expected config error; err=%v stderr=%s", err, stderr)
	}
}

func TestDocsCommand(t *testing.T) {
	env := mustRun(t, "docs")
	topics := env["data"].(map[string]any)["topics"].([]any)
	if len(topics) < 5 {
		t.Fatalf("expected topics; got %v", topics)
	}

	env = mustRun(t, "docs", "ajax")
	data := env["data"].(map[string]any)
	if data["topic"] != "ajax" || !strings.Contains(data["markdown"].(string), "POST /ajax") {
		t.Fatalf("unexpected docs payload: %v", data)
	}

	out, _, err := runCLI(t, []string{"docs", "ajax", "--raw"})
	if err != nil || !strings.HasPrefix(string(out), "# Ajax endpoint") {
		t.Fatalf("raw docs: err=%v out=%q", err, string(out))
	}

	if _, _, err := runCLI(t, []string{"docs", "no-such-topic"}); err == nil {
		t.Fatalf("expected error for unknown topic")
	}
}

func TestWebBarRejectsRelativeServer(t *testing.T) {
	_, stderr, err := runCLI(t, []string{"webbar", "--server", "localhost-only", "--addr", "127.0.0.1:0"})
	if err == nil || !strings.Contains(string(stderr), "server url must be absolute") {
		t.Fatalf("expected server url error; err=%v stderr=%s", err, string(stderr))
	}
}
