package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"quicklinks/internal/docs"
	"quicklinks/internal/listing"
	"quicklinks/internal/menustate"
)

const defaultWidth = 80

func (m appModel) View() string {
	w := m.width
	if w <= 0 {
		w = defaultWidth
	}
	if !m.loaded {
		lines := []string{styleBar().Width(w).Render(" quicklinks")}
		if m.minibufferText != "" {
			lines = append(lines, styleNotice().Render(m.minibufferText))
		} else {
			lines = append(lines, styleMuted().Render("Loading..."))
		}
		return strings.Join(lines, "\n")
	}

	menus := m.menus()
	var b strings.Builder
	b.WriteString(m.renderBar(w, menus))
	b.WriteString("\n")

	if m.mode == modeHelp {
		b.WriteString(m.renderHelpPage(w))
		return b.String()
	}

	if m.active < len(menus) && menus[m.active].State.Open() {
		b.WriteString(m.renderMenu(w, menus[m.active]))
	}

	switch m.mode {
	case modeStatusPicker, modeTypePicker:
		b.WriteString("\n")
		b.WriteString(m.renderPicker())
	case modeConfirmDelete:
		b.WriteString("\n")
		b.WriteString(styleNotice().Render(menustate.DeleteConfirmation + " (y/n)"))
		b.WriteString("\n")
	}

	if m.minibufferText != "" {
		b.WriteString("\n")
		b.WriteString(styleNotice().Render(m.minibufferText))
	}
	b.WriteString("\n")
	b.WriteString(m.renderHelp(w))
	return b.String()
}

func (m appModel) renderBar(w int, menus []menustate.Menu) string {
	parts := []string{styleBar().Padding(0, 1).Render("quicklinks")}
	for i, menu := range menus {
		title := menu.Title
		if menu.State == menustate.PendingClose {
			title += " …"
		}
		st := styleMenuTitle(menu.State.Open())
		if i == m.active && !menu.State.Open() {
			st = st.Underline(true)
		}
		parts = append(parts, st.Render(title))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	right := ""
	if m.user.DisplayName != "" {
		right = styleBar().Padding(0, 1).Render("Howdy, " + m.user.DisplayName)
	}
	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + styleBar().Render(strings.Repeat(" ", gap)) + right
}

func (m appModel) renderMenu(w int, menu menustate.Menu) string {
	var b strings.Builder
	if len(menu.Shortcuts) > 0 {
		b.WriteString(renderShortcuts(menu.Shortcuts))
		b.WriteString("\n")
	}
	if menu.Query != "" {
		b.WriteString(styleMuted().Render("filter: "))
		b.WriteString(menu.Query)
		b.WriteString("\n")
	}
	if menu.NoMatches {
		b.WriteString(styleMuted().Render("  No matches"))
		b.WriteString("\n")
		return b.String()
	}

	rows := menu.VisibleRows()
	cur := clamp(m.cursor[menu.ID], 0, len(rows)-1)
	for i, r := range rows {
		b.WriteString(m.renderRow(w, r, i == cur))
		b.WriteString("\n")
	}
	return b.String()
}

func renderShortcuts(shortcuts []listing.Shortcut) string {
	parts := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		label := s.Label
		if s.Active {
			label = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(label)
		} else {
			label = styleMuted().Render(label)
		}
		parts = append(parts, label)
	}
	return "  " + strings.Join(parts, styleMuted().Render(" · "))
}

func (m appModel) renderRow(w int, r menustate.Row, selected bool) string {
	glyph := listing.UnpinnedGlyph
	if r.Pinned {
		glyph = listing.PinnedGlyph
	}
	pin := stylePin(r.Pinned).Render(glyph)
	status := styleStatus(r.Status).Render(fmt.Sprintf("%-9s", optionLabel(r.StatusOptions, string(r.Status))))
	typ := styleMuted().Render(fmt.Sprintf("%-10s", optionLabel(r.TypeOptions, r.Type)))
	id := styleMuted().Render(m.ctl.IDLabel(r.ID))

	titleW := w - 2 - 2 - 10 - 11 - lipgloss.Width(id) - 2
	if titleW < 10 {
		titleW = 10
	}
	title := styleRow(selected).Width(titleW).Render(ansi.Truncate(r.Title, titleW, "…"))
	prefix := "  "
	if selected {
		prefix = "> "
	}
	return prefix + pin + " " + title + " " + status + " " + typ + " " + id
}

func optionLabel(opts []listing.Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

func (m appModel) renderPicker() string {
	opts := m.pickerOptions()
	title := "Status"
	if m.mode == modeTypePicker {
		title = "Post type"
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n")
	for i, o := range opts {
		line := "  " + o.Label
		if o.Selected {
			line += styleMuted().Render(" (current)")
		}
		if i == m.picker {
			line = styleRow(true).Render("> " + o.Label)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m appModel) renderHelp(w int) string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, k := range m.keys.help() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return styleMuted().Width(w).Render(strings.Join(parts, "  "))
}

func (m appModel) renderHelpPage(w int) string {
	body, _ := docs.Get("bar")
	lines := strings.Split(RenderMarkdown(body, w), "\n")
	start := clamp(m.helpScroll, 0, len(lines)-1)
	if h := m.height - 3; h > 0 && start+h < len(lines) {
		lines = lines[:start+h]
	}
	return strings.Join(lines[start:], "\n") + "\n" + styleMuted().Render("↑/↓ scroll  esc back")
}
