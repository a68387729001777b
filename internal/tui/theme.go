package tui

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"quicklinks/internal/model"
)

// The bar must stay readable on light and dark backgrounds, so colors are adaptive and "faint" is only applied on
// dark terminals.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorBarBg      lipgloss.TerminalColor = ac("#23282d", "#1d2327")
	colorBarFg      lipgloss.TerminalColor = ac("#f0f0f1", "#f0f0f1")
	colorBarHoverBg lipgloss.TerminalColor = ac("#2c3338", "#2c3338")
	colorAccent     lipgloss.TerminalColor = ac("#2271b1", "#72aee6")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorPinned     lipgloss.TerminalColor = ac("#b26200", "#f0c33c")
	colorErrorFg    lipgloss.TerminalColor = ac("196", "203")

	statusColors = map[model.Status]lipgloss.TerminalColor{
		model.StatusPublish: ac("#008a20", "#68de7c"),
		model.StatusDraft:   ac("240", "245"),
		model.StatusPending: ac("#996800", "#f2d675"),
		model.StatusPrivate: ac("#8a2424", "#f86368"),
		"future":            ac("#2271b1", "#72aee6"),
	}
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleBar() lipgloss.Style {
	return lipgloss.NewStyle().Background(colorBarBg).Foreground(colorBarFg)
}

func styleMenuTitle(open bool) lipgloss.Style {
	st := lipgloss.NewStyle().Padding(0, 1).Background(colorBarBg).Foreground(colorBarFg)
	if open {
		st = st.Background(colorBarHoverBg).Foreground(colorAccent).Bold(true)
	}
	return st
}

func styleRow(selected bool) lipgloss.Style {
	st := lipgloss.NewStyle()
	if selected {
		st = st.Background(colorSelectedBg).Foreground(colorSelectedFg).Bold(true)
	}
	return st
}

func styleStatus(s model.Status) lipgloss.Style {
	c, ok := statusColors[s]
	if !ok {
		c = colorMuted
	}
	return lipgloss.NewStyle().Foreground(c)
}

func stylePin(pinned bool) lipgloss.Style {
	if pinned {
		return lipgloss.NewStyle().Foreground(colorPinned)
	}
	return styleMuted()
}

func styleNotice() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorErrorFg).Bold(true)
}

// applyColorProfilePreference only honors NO_COLOR; CLICOLOR handling in termenv can disable colors in a TUI.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) QUICKLINKS_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
// 3) macOS appearance
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("QUICKLINKS_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
			return
		}
	}

	if runtime.GOOS == "darwin" {
		if dark, ok := macOSHasDarkAppearance(); ok {
			lipgloss.SetHasDarkBackground(dark)
		}
	}
}

func macOSHasDarkAppearance() (dark bool, ok bool) {
	// Prints "Dark" in dark mode; exits 1 in light mode (key missing).
	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	out, err := exec.CommandContext(ctx, "defaults", "read", "-g", "AppleInterfaceStyle").CombinedOutput()
	if ctx.Err() != nil {
		return false, false
	}
	if err == nil {
		return strings.Contains(strings.ToLower(string(out)), "dark"), true
	}
	if ee, ok := err.(*exec.ExitError); ok && ee.ExitCode() == 1 {
		return false, true
	}
	return false, false
}
