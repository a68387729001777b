package config

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg.Addr != "127.0.0.1:8080" || cfg.AuthMode != AuthNone {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxItems != 50 || cfg.Overfetch != 200 {
		t.Fatalf("expected 50/200 limits; got %d/%d", cfg.MaxItems, cfg.Overfetch)
	}
	if cfg.NonceTTL != 24*time.Hour {
		t.Fatalf("expected 24h nonce ttl; got %s", cfg.NonceTTL)
	}
}

func TestLoadServerFromEnv(t *testing.T) {
	t.Setenv("QUICKLINKS_MAX_ITEMS", "10")
	t.Setenv("QUICKLINKS_OVERFETCH", "20")
	t.Setenv("QUICKLINKS_AUTH", "DEV")
	t.Setenv("QUICKLINKS_BASE_URL", "https://example.test/")
	t.Setenv("QUICKLINKS_DIR", t.TempDir())

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.MaxItems != 10 || cfg.Overfetch != 20 || cfg.AuthMode != AuthDev || cfg.BaseURL != "https://example.test" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadServerEnvError(t *testing.T) {
	t.Setenv("QUICKLINKS_MAX_ITEMS", "lots")
	_, err := LoadServer()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error; got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	base := Server{Addr: ":0", Dir: "/tmp/q", AuthMode: "none", User: "ed", MaxItems: 50, Overfetch: 10, NonceTTL: time.Hour, SessionTTL: time.Hour, LogLevel: "debug"}

	cfg := base
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Overfetch != 50 {
		t.Fatalf("overfetch must be raised to max items; got %d", cfg.Overfetch)
	}

	bad := []func(*Server){
		func(c *Server) { c.AuthMode = "magic" },
		func(c *Server) { c.User = "" },
		func(c *Server) { c.Dir = " " },
		func(c *Server) { c.MaxItems = 0 },
		func(c *Server) { c.LogLevel = "loud" },
	}
	for i, mutate := range bad {
		cfg := base
		mutate(&cfg)
		if err := cfg.Normalize(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown", "k", "v")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "k=v") {
		t.Fatalf("unexpected log output %q", buf.String())
	}
	if !NewLogger(&buf, "nope").Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("unknown level should fall back to info")
	}
}
