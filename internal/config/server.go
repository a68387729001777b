// Package config holds environment-driven settings for the quicklinks server.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

const (
	AuthNone = "none"
	AuthDev  = "dev"
)

// Server is the quicklinks server configuration. CLI flags override the environment.
type Server struct {
	Addr string `env:"QUICKLINKS_ADDR" envDefault:"127.0.0.1:8080"`
	Dir  string `env:"QUICKLINKS_DIR"`

	// BaseURL prefixes generated links. Empty means the request's own scheme and host.
	BaseURL string `env:"QUICKLINKS_BASE_URL"`

	// AuthMode is none (fixed user) or dev (session cookie naming a user login).
	AuthMode string `env:"QUICKLINKS_AUTH" envDefault:"none"`
	User     string `env:"QUICKLINKS_USER"`

	MaxItems  int `env:"QUICKLINKS_MAX_ITEMS" envDefault:"50"`
	Overfetch int `env:"QUICKLINKS_OVERFETCH" envDefault:"200"`

	NonceTTL   time.Duration `env:"QUICKLINKS_NONCE_TTL" envDefault:"24h"`
	SessionTTL time.Duration `env:"QUICKLINKS_SESSION_TTL" envDefault:"720h"`

	LogLevel string `env:"QUICKLINKS_LOG_LEVEL" envDefault:"info"`
}

func LoadServer() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Normalize trims fields and validates enums and limits.
func (c *Server) Normalize() error {
	c.Addr = strings.TrimSpace(c.Addr)
	c.Dir = strings.TrimSpace(c.Dir)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.AuthMode = strings.ToLower(strings.TrimSpace(c.AuthMode))
	c.User = strings.TrimSpace(c.User)
	if c.Addr == "" {
		return errors.New("config: addr is empty")
	}
	if c.Dir == "" {
		return errors.New("config: dir is empty")
	}
	if c.AuthMode == "" {
		c.AuthMode = AuthNone
	}
	if c.AuthMode != AuthNone && c.AuthMode != AuthDev {
		return fmt.Errorf("config: invalid auth mode %q (expected none|dev)", c.AuthMode)
	}
	if c.AuthMode == AuthNone && c.User == "" {
		return errors.New("config: auth mode none needs a user")
	}
	if c.MaxItems <= 0 {
		return fmt.Errorf("config: max items must be positive (got %d)", c.MaxItems)
	}
	if c.Overfetch < c.MaxItems {
		c.Overfetch = c.MaxItems
	}
	if c.NonceTTL <= 0 {
		return errors.New("config: nonce ttl must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: session ttl must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func ParseLevel(raw string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q", raw)
	}
	return lvl, nil
}

// NewLogger returns a text logger at the configured level. Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
