package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdRendererMu sync.Mutex
	// Keyed by style and wrap width. WithAutoStyle can block on terminal queries, so styles are fixed.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// RenderMarkdown renders md for a terminal of the given width using the bar's palette.
func RenderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	style := markdownStyle()
	key := style + ":" + strconv.Itoa(width)

	mdRendererMu.Lock()
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		cfg := markdownStyleConfig(style)
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyleConfig(style string) ansi.StyleConfig {
	var cfg ansi.StyleConfig
	if style == "light" {
		cfg = styles.LightStyleConfig
	} else {
		cfg = styles.DarkStyleConfig
	}
	pick := func(c lipgloss.AdaptiveColor) *string {
		v := c.Dark
		if style == "light" {
			v = c.Light
		}
		return &v
	}
	accent := pick(mdAccent)
	cfg.Link.Color = accent
	cfg.LinkText.Color = accent
	cfg.H1.Color = pick(mdHeading)
	cfg.H2.Color = pick(mdHeading)
	cfg.H3.Color = pick(mdHeading)
	cfg.Code.Color = pick(mdCode)
	return cfg
}

var (
	mdAccent  = lipgloss.AdaptiveColor{Light: "#2271b1", Dark: "#72aee6"}
	mdHeading = lipgloss.AdaptiveColor{Light: "#1d2327", Dark: "#f0f0f1"}
	mdCode    = lipgloss.AdaptiveColor{Light: "#996800", Dark: "#f2d675"}
)

// markdownStyle follows QUICKLINKS_TUI_MD_STYLE, then QUICKLINKS_TUI_THEME, then lipgloss background detection.
func markdownStyle() string {
	for _, env := range []string{"QUICKLINKS_TUI_MD_STYLE", "QUICKLINKS_TUI_THEME"} {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(env))) {
		case "light":
			return "light"
		case "dark":
			return "dark"
		}
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
