// Package tui is a terminal rendition of the admin bar: both menus, type-ahead filtering, and the pin, status and
// type controls, driven against a running server.
package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"quicklinks/internal/client"
	"quicklinks/internal/menustate"
)

type Options struct {
	BaseURL string

	// Login signs in first; used against servers in dev auth mode.
	Login  string
	Screen client.Screen
}

func Run(ctx context.Context, opts Options) error {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return errors.New("tui: server url is empty")
	}
	c, err := client.New(opts.BaseURL, nil)
	if err != nil {
		return err
	}
	if login := strings.TrimSpace(opts.Login); login != "" {
		if err := c.Login(ctx, login); err != nil {
			return err
		}
	}

	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(ctx, modelOptions{
		Backend:   c,
		Screen:    opts.Screen,
		Storage:   menustate.NewMemoryStorage(),
		Open:      openInBrowser,
		Clipboard: systemClipboard{},
		Fallback:  commandClipboard{},
	})
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
