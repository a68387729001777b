package tui

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"quicklinks/internal/client"
	"quicklinks/internal/listing"
	"quicklinks/internal/menustate"
	"quicklinks/internal/model"
)

// Backend is what the bar needs from the server. *client.Client implements it.
type Backend interface {
	FetchBar(ctx context.Context, s client.Screen) (client.Bar, error)
	menustate.Transport
}

const (
	tickEvery                = 200 * time.Millisecond
	minibufferAutoClearAfter = 4 * time.Second
)

type mode int

const (
	modeBrowse mode = iota
	modeStatusPicker
	modeTypePicker
	modeConfirmDelete
	modeHelp
)

type (
	barLoadedMsg struct {
		bar    client.Bar
		err    error
		screen client.Screen

		// restore consumes the keep-open intent once the menus are in.
		restore bool
	}
	mutationDoneMsg struct {
		op  string
		id  int64
		err error
	}
	openDoneMsg struct{ err error }
	tickMsg     time.Time
)

// noticeQueue collects notices raised while a mutation runs off the update loop.
type noticeQueue struct {
	mu   sync.Mutex
	msgs []string
}

func (q *noticeQueue) Notify(msg string) {
	q.mu.Lock()
	q.msgs = append(q.msgs, msg)
	q.mu.Unlock()
}

func (q *noticeQueue) drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.msgs
	q.msgs = nil
	return out
}

// confirmGate answers the controller's delete confirmation with the choice the user already made in the modal.
// Each answer is used once.
type confirmGate struct {
	mu     sync.Mutex
	answer bool
}

func (g *confirmGate) set(v bool) {
	g.mu.Lock()
	g.answer = v
	g.mu.Unlock()
}

func (g *confirmGate) Confirm(string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := g.answer
	g.answer = false
	return v
}

// navigator hands same-tab navigations back to the model, which reloads the bar for the target screen.
type navigator struct {
	open    func(string) error
	pending string
}

func (n *navigator) Navigate(u string) { n.pending = u }

func (n *navigator) OpenInNewTab(u string) {
	if n.open != nil {
		_ = n.open(u)
	}
}

type appModel struct {
	ctx     context.Context
	backend Backend
	ctl     *menustate.Controller
	notices *noticeQueue
	confirm *confirmGate
	nav     *navigator
	keys    keyMap

	user   model.User
	screen client.Screen
	loaded bool

	active int
	cursor map[menustate.MenuID]int

	mode      mode
	picker    int
	pickerRow int64

	helpScroll int

	minibufferText  string
	minibufferSetAt time.Time

	width  int
	height int
	now    func() time.Time
}

type modelOptions struct {
	Backend   Backend
	Screen    client.Screen
	Storage   menustate.TabStorage
	Scheduler menustate.Scheduler
	Open      func(string) error
	Clipboard menustate.Clipboard
	Fallback  menustate.Clipboard
}

func newAppModel(ctx context.Context, opts modelOptions) appModel {
	m := appModel{
		ctx:     ctx,
		backend: opts.Backend,
		notices: &noticeQueue{},
		confirm: &confirmGate{},
		nav:     &navigator{open: opts.Open},
		keys:    defaultKeyMap(),
		screen:  opts.Screen,
		cursor:  map[menustate.MenuID]int{},
		now:     time.Now,
	}
	m.ctl = menustate.New(menustate.Config{
		Storage:           opts.Storage,
		Scheduler:         opts.Scheduler,
		Transport:         opts.Backend,
		Notifier:          m.notices,
		Confirmer:         m.confirm,
		Navigator:         m.nav,
		Clipboard:         opts.Clipboard,
		FallbackClipboard: opts.Fallback,
	})
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(m.screen, true), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m appModel) fetch(s client.Screen, restore bool) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		bar, err := backend.FetchBar(ctx, s)
		return barLoadedMsg{bar: bar, err: err, screen: s, restore: restore}
	}
}

// screenForURL derives the screen a navigation lands on, so the related menu follows the target.
func screenForURL(raw string) client.Screen {
	u, err := url.Parse(raw)
	if err != nil {
		return client.Screen{}
	}
	return client.Screen{Query: u.Query(), Front: !strings.Contains(u.Path, "/wp-admin/")}
}

func (m *appModel) showMinibuffer(s string) {
	m.minibufferText = s
	m.minibufferSetAt = m.now()
}

func (m *appModel) menus() []menustate.Menu {
	return m.ctl.Snapshot()
}

func (m *appModel) activeMenu() (menustate.Menu, bool) {
	menus := m.menus()
	if len(menus) == 0 {
		return menustate.Menu{}, false
	}
	if m.active >= len(menus) {
		m.active = len(menus) - 1
	}
	if m.active < 0 {
		m.active = 0
	}
	return menus[m.active], true
}

func (m *appModel) selectedRow() (menustate.Menu, menustate.Row, bool) {
	menu, ok := m.activeMenu()
	if !ok || !menu.State.Open() {
		return menu, menustate.Row{}, false
	}
	rows := menu.VisibleRows()
	if len(rows) == 0 {
		return menu, menustate.Row{}, false
	}
	i := clamp(m.cursor[menu.ID], 0, len(rows)-1)
	m.cursor[menu.ID] = i
	return menu, rows[i], true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m *appModel) moveCursor(delta int) {
	menu, _, ok := m.selectedRow()
	if !ok {
		return
	}
	n := len(menu.VisibleRows())
	m.cursor[menu.ID] = clamp(m.cursor[menu.ID]+delta, 0, n-1)
	m.ctl.Scroll(menu.ID, m.cursor[menu.ID])
}

func (m *appModel) switchMenu(delta int) {
	menus := m.menus()
	if len(menus) == 0 {
		return
	}
	m.active = (m.active + delta + len(menus)) % len(menus)
	m.ctl.PointerEnter(menus[m.active].ID)
}

func (m *appModel) applyPaint() {
	for id, off := range m.ctl.Paint() {
		m.cursor[id] = off
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		if m.minibufferText != "" && m.now().Sub(m.minibufferSetAt) >= minibufferAutoClearAfter {
			m.minibufferText = ""
		}
		return m, tick()

	case barLoadedMsg:
		if msg.err != nil {
			m.showMinibuffer("Failed to load menus: " + msg.err.Error())
			return m, nil
		}
		m.user = msg.bar.User
		m.screen = msg.screen
		m.loaded = true
		m.ctl.SetMenus(msg.bar.Menus)
		if msg.restore {
			m.ctl.Load()
			if id, ok := m.ctl.OpenMenu(); ok {
				for i, menu := range m.menus() {
					if menu.ID == id {
						m.active = i
					}
				}
			}
		}
		m.applyPaint()
		return m, nil

	case mutationDoneMsg:
		for _, n := range m.notices.drain() {
			m.showMinibuffer(n)
		}
		if msg.err == nil && msg.op == "copy" {
			m.showMinibuffer(menustate.CopiedLabel)
		}
		return m, nil

	case openDoneMsg:
		if msg.err != nil {
			m.showMinibuffer("Open failed: " + msg.err.Error())
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeStatusPicker, modeTypePicker:
			return m.updatePicker(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		case modeHelp:
			return m.updateHelp(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Prev):
		m.switchMenu(-1)
	case key.Matches(msg, m.keys.Next):
		m.switchMenu(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.OpenTab):
		menu, row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		return m, m.navigate(menu.ID, row.TargetURL, key.Matches(msg, m.keys.OpenTab))
	case key.Matches(msg, m.keys.Header):
		menu, ok := m.activeMenu()
		if !ok {
			return m, nil
		}
		m.ctl.HeaderClick(menu.ID)
		m.applyPaint()
		return m, m.followNavigation()
	case key.Matches(msg, m.keys.Pin):
		if _, row, ok := m.selectedRow(); ok {
			return m, m.mutate("pin", row.ID, func(ctx context.Context) error { return m.ctl.TogglePin(ctx, row.ID) })
		}
	case key.Matches(msg, m.keys.Status):
		if _, row, ok := m.selectedRow(); ok && len(row.StatusOptions) > 0 {
			m.mode, m.pickerRow = modeStatusPicker, row.ID
			m.picker = selectedIndex(row.StatusOptions, string(row.Status))
		}
	case key.Matches(msg, m.keys.Type):
		if _, row, ok := m.selectedRow(); ok && len(row.TypeOptions) > 0 {
			m.mode, m.pickerRow = modeTypePicker, row.ID
			m.picker = selectedIndex(row.TypeOptions, row.Type)
		}
	case key.Matches(msg, m.keys.CopyID):
		if _, row, ok := m.selectedRow(); ok {
			ctl := m.ctl
			id := row.ID
			return m, func() tea.Msg { return mutationDoneMsg{op: "copy", id: id, err: ctl.CopyID(id)} }
		}
	case key.Matches(msg, m.keys.Help):
		m.mode, m.helpScroll = modeHelp, 0
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetch(m.screen, false)
	case key.Matches(msg, m.keys.Close):
		menu, ok := m.activeMenu()
		switch {
		case !ok:
		case menu.Query != "":
			m.ctl.SetQuery(menu.ID, "")
		case menu.State == menustate.PendingClose:
			m.ctl.ClickOutside()
		default:
			m.ctl.PointerLeave(menu.ID)
		}
	case key.Matches(msg, m.keys.Backspace):
		m.ctl.Backspace(false)
	case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
		for _, r := range msg.Runes {
			m.ctl.KeyPress(r, false)
		}
		if menu, ok := m.activeMenu(); ok {
			m.cursor[menu.ID] = 0
		}
	}
	return m, nil
}

func selectedIndex(opts []listing.Option, value string) int {
	for i, o := range opts {
		if o.Value == value {
			return i
		}
	}
	return 0
}

func (m *appModel) pickerOptions() []listing.Option {
	for _, menu := range m.menus() {
		for _, r := range menu.Rows {
			if r.ID != m.pickerRow {
				continue
			}
			if m.mode == modeTypePicker {
				return r.TypeOptions
			}
			return r.StatusOptions
		}
	}
	return nil
}

func (m appModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	opts := m.pickerOptions()
	if len(opts) == 0 {
		m.mode = modeBrowse
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Close):
		m.mode = modeBrowse
	case key.Matches(msg, m.keys.Up):
		m.picker = clamp(m.picker-1, 0, len(opts)-1)
	case key.Matches(msg, m.keys.Down):
		m.picker = clamp(m.picker+1, 0, len(opts)-1)
	case key.Matches(msg, m.keys.Open):
		value := opts[clamp(m.picker, 0, len(opts)-1)].Value
		id := m.pickerRow
		if m.mode == modeTypePicker {
			m.mode = modeBrowse
			return m, m.mutate("type", id, func(ctx context.Context) error { return m.ctl.ChangeType(ctx, id, value) })
		}
		status := model.Status(value)
		if status == model.StatusDelete {
			m.mode = modeConfirmDelete
			return m, nil
		}
		m.mode = modeBrowse
		return m, m.mutate("status", id, func(ctx context.Context) error { return m.ctl.ChangeStatus(ctx, id, status) })
	}
	return m, nil
}

func (m appModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Help):
		m.mode = modeBrowse
	case key.Matches(msg, m.keys.Up):
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	case key.Matches(msg, m.keys.Down):
		m.helpScroll++
	}
	return m, nil
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.pickerRow
	switch msg.String() {
	case "y", "Y", "enter":
		m.confirm.set(true)
	case "n", "N", "esc":
		m.confirm.set(false)
	case "ctrl+c":
		return m, tea.Quit
	default:
		return m, nil
	}
	m.mode = modeBrowse
	return m, m.mutate("status", id, func(ctx context.Context) error { return m.ctl.ChangeStatus(ctx, id, model.StatusDelete) })
}

// mutate runs f off the update loop; the controller updates its rows and the notices are picked up on completion.
func (m appModel) mutate(op string, id int64, f func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return mutationDoneMsg{op: op, id: id, err: f(ctx)}
	}
}

func (m *appModel) navigate(id menustate.MenuID, target string, newTab bool) tea.Cmd {
	m.ctl.Navigate(id, target, newTab)
	return m.followNavigation()
}

// followNavigation opens a pending same-tab navigation in the browser and reloads the bar for the target screen.
func (m *appModel) followNavigation() tea.Cmd {
	target := m.nav.pending
	m.nav.pending = ""
	if target == "" {
		return nil
	}
	open := m.nav.open
	return tea.Batch(
		func() tea.Msg {
			if open == nil {
				return openDoneMsg{}
			}
			return openDoneMsg{err: open(target)}
		},
		m.fetch(screenForURL(target), true),
	)
}
