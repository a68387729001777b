// Package menustate is the admin bar's menu controller: open/close bookkeeping with a delayed close, keep-open intent
// that survives one navigation, scroll restoration, type-ahead filtering and the pin/status/type mutations.
//
// It holds no UI. Hosts (the terminal bar, tests) feed it events and render from Snapshot. All methods are safe for
// concurrent use; transport calls run without the lock held.
package menustate

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"quicklinks/internal/listing"
	"quicklinks/internal/model"
)

type MenuID string

const (
	RecentlyEdited MenuID = MenuID(listing.ScopeRecent)
	Related        MenuID = MenuID(listing.ScopeRelated)
)

type State int

const (
	Closed State = iota
	Hover
	PendingClose
)

func (s State) String() string {
	switch s {
	case Hover:
		return "hover"
	case PendingClose:
		return "pending-close"
	default:
		return "closed"
	}
}

// Open reports whether the menu is visible. A pending close is still open.
func (s State) Open() bool { return s != Closed }

const (
	CloseDelay       = 2000 * time.Millisecond
	CopiedLabelDelay = 900 * time.Millisecond
	CopiedLabel      = "Copied"

	DeleteConfirmation = "Are you sure you want to delete this item?"

	keepOpenKey     = "quicklinks_keep_menu_open"
	scrollKeyPrefix = "quicklinks_scroll_"
	queryKeyPrefix  = "quicklinks_query_"
)

var (
	ErrUnknownMenu = errors.New("unknown menu")
	ErrUnknownRow  = errors.New("unknown row")
	ErrDeclined    = errors.New("declined")

	errNoTransport = errors.New("menustate: no transport")
	errNoClipboard = errors.New("menustate: no clipboard")
)

type Row struct {
	ID         int64
	Title      string
	SearchText string
	TargetURL  string
	EditURL    string

	// Status and Type are the selector values; the Original fields are the last confirmed values.
	Status         model.Status
	OriginalStatus model.Status
	Type           string
	OriginalType   string

	StatusOptions []listing.Option
	TypeOptions   []listing.Option

	Pinned bool
	Hidden bool
}

type Menu struct {
	ID        MenuID
	Title     string
	Href      string
	Shortcuts []listing.Shortcut
	State     State
	Query     string
	Scroll    int
	Rows      []Row
	NoMatches bool
}

type menu struct {
	Menu
	timer Timer
	gen   int
}

type Config struct {
	Storage   TabStorage
	Scheduler Scheduler
	Transport Transport
	Notifier  Notifier
	Confirmer Confirmer
	Navigator Navigator

	Clipboard         Clipboard
	FallbackClipboard Clipboard

	Logger *slog.Logger
}

type Controller struct {
	mu     sync.Mutex
	cfg    Config
	menus  map[MenuID]*menu
	order  []MenuID
	paint  map[MenuID]int
	copied map[int64]int
	copyN  int
}

func New(cfg Config) *Controller {
	if cfg.Storage == nil {
		cfg.Storage = NewMemoryStorage()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = RealScheduler{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		cfg:    cfg,
		menus:  map[MenuID]*menu{},
		paint:  map[MenuID]int{},
		copied: map[int64]int{},
	}
}

// SetMenus replaces the rendered menus. Open state, query and scroll survive for menus that keep their id.
func (c *Controller) SetMenus(menus []listing.Menu) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := map[MenuID]*menu{}
	order := make([]MenuID, 0, len(menus))
	for _, lm := range menus {
		if lm.Empty {
			continue
		}
		id := MenuID(lm.ID)
		m := &menu{Menu: Menu{ID: id, Title: lm.Title, Href: lm.Href, Shortcuts: lm.Shortcuts}}
		if prev := c.menus[id]; prev != nil {
			m.State, m.Query, m.Scroll = prev.State, prev.Query, prev.Scroll
			m.timer, m.gen = prev.timer, prev.gen
		}
		for _, lr := range lm.Rows {
			m.Rows = append(m.Rows, Row{
				ID:             lr.ID,
				Title:          lr.Title,
				SearchText:     lr.SearchText,
				TargetURL:      lr.TargetURL,
				EditURL:        lr.EditURL,
				Status:         lr.Status,
				OriginalStatus: lr.Status,
				Type:           lr.Type,
				OriginalType:   lr.Type,
				StatusOptions:  lr.StatusOptions,
				TypeOptions:    lr.TypeOptions,
				Pinned:         lr.Pinned,
			})
		}
		m.filter()
		next[id] = m
		order = append(order, id)
	}
	for id, prev := range c.menus {
		if next[id] == nil && prev.timer != nil {
			prev.timer.Stop()
		}
	}
	c.menus, c.order = next, order
}

// Snapshot returns copies of the menus in display order.
func (c *Controller) Snapshot() []Menu {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Menu, 0, len(c.order))
	for _, id := range c.order {
		m := c.menus[id].Menu
		m.Rows = append([]Row(nil), m.Rows...)
		out = append(out, m)
	}
	return out
}

func (c *Controller) Menu(id MenuID) (Menu, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.menus[id]
	if m == nil {
		return Menu{}, false
	}
	out := m.Menu
	out.Rows = append([]Row(nil), m.Rows...)
	return out, true
}

// OpenMenu returns the menu receiving type-ahead input.
func (c *Controller) OpenMenu() (MenuID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.openLocked()
	if m == nil {
		return "", false
	}
	return m.ID, true
}

func (c *Controller) openLocked() *menu {
	for _, id := range c.order {
		if m := c.menus[id]; m.State.Open() {
			return m
		}
	}
	return nil
}

func (m *menu) cancelClose() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
}

// hoverLocked opens m and closes every other menu immediately.
func (c *Controller) hoverLocked(m *menu) {
	m.cancelClose()
	m.State = Hover
	for _, id := range c.order {
		if other := c.menus[id]; other != m {
			other.cancelClose()
			other.State = Closed
		}
	}
}

func (c *Controller) PointerEnter(id MenuID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m := c.menus[id]; m != nil {
		c.hoverLocked(m)
	}
}

// PointerLeave starts the delayed close. Re-entering before it fires cancels it.
func (c *Controller) PointerLeave(id MenuID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.menus[id]
	if m == nil || !m.State.Open() {
		return
	}
	m.cancelClose()
	m.State = PendingClose
	gen := m.gen
	m.timer = c.cfg.Scheduler.AfterFunc(CloseDelay, func() { c.expire(id, gen) })
}

func (c *Controller) expire(id MenuID, gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.menus[id]
	if m == nil || m.gen != gen || m.State != PendingClose {
		return
	}
	m.timer = nil
	m.State = Closed
	c.cfg.Storage.Remove(keepOpenKey)
}

func (c *Controller) ClickOutside() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.order {
		m := c.menus[id]
		m.cancelClose()
		m.State = Closed
	}
	c.cfg.Storage.Remove(keepOpenKey)
}

// Scroll records the menu's current scroll offset.
func (c *Controller) Scroll(id MenuID, offset int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m := c.menus[id]; m != nil {
		m.Scroll = offset
	}
}

// Navigate follows a row or header link. New-tab requests leave the state alone. Otherwise the menu's keep-open
// intent, scroll offset and query are stored for the next Load.
func (c *Controller) Navigate(id MenuID, url string, newTab bool) {
	url = strings.TrimSpace(url)
	if url == "" || url == "#" {
		return
	}
	if newTab {
		if c.cfg.Navigator != nil {
			c.cfg.Navigator.OpenInNewTab(url)
		}
		return
	}

	c.mu.Lock()
	if m := c.menus[id]; m != nil {
		st := c.cfg.Storage
		st.Set(keepOpenKey, string(id))
		st.Set(scrollKeyPrefix+string(id), strconv.Itoa(m.Scroll))
		st.Set(queryKeyPrefix+string(id), m.Query)
	}
	c.mu.Unlock()

	if c.cfg.Navigator != nil {
		c.cfg.Navigator.Navigate(url)
	}
}

// HeaderClick opens the related menu in place and restores its scroll offset. The recently-edited header is a plain
// link to the menu's primary target.
func (c *Controller) HeaderClick(id MenuID) {
	c.mu.Lock()
	m := c.menus[id]
	if m == nil {
		c.mu.Unlock()
		return
	}
	if id == Related {
		c.hoverLocked(m)
		offset := m.Scroll
		if raw, ok := c.cfg.Storage.Get(scrollKeyPrefix + string(id)); ok {
			if v, err := strconv.Atoi(raw); err == nil {
				offset = v
			}
		}
		c.paint[id] = offset
		c.mu.Unlock()
		return
	}
	href := m.Href
	c.mu.Unlock()

	if href != "" && href != "#" && c.cfg.Navigator != nil {
		c.cfg.Navigator.Navigate(href)
	}
}

// Load consumes the keep-open intent left by the previous Navigate. Only the flagged menu opens; its query is
// re-applied and its scroll offset is handed to the next Paint.
func (c *Controller) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.cfg.Storage
	raw, ok := st.Get(keepOpenKey)
	st.Remove(keepOpenKey)
	if !ok {
		return
	}
	id := MenuID(raw)
	m := c.menus[id]
	if m == nil {
		return
	}
	c.hoverLocked(m)
	if q, ok := st.Get(queryKeyPrefix + raw); ok {
		m.Query = q
		m.filter()
	}
	if s, ok := st.Get(scrollKeyPrefix + raw); ok {
		if v, err := strconv.Atoi(s); err == nil {
			c.paint[id] = v
		}
	}
}

// Paint returns the scroll offsets to apply on this paint cycle and forgets them.
func (c *Controller) Paint() map[MenuID]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.paint
	for id, off := range out {
		if m := c.menus[id]; m != nil {
			m.Scroll = off
		}
	}
	c.paint = map[MenuID]int{}
	return out
}

// KeyPress appends a printable rune to the open menu's query. It reports whether the key was consumed.
func (c *Controller) KeyPress(r rune, editableFocused bool) bool {
	if editableFocused || !unicode.IsPrint(r) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.openLocked()
	if m == nil {
		return false
	}
	m.Query += string(r)
	m.filter()
	return true
}

func (c *Controller) Backspace(editableFocused bool) bool {
	if editableFocused {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.openLocked()
	if m == nil || m.Query == "" {
		return false
	}
	q := []rune(m.Query)
	m.Query = string(q[:len(q)-1])
	m.filter()
	return true
}

func (c *Controller) SetQuery(id MenuID, q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m := c.menus[id]; m != nil {
		m.Query = q
		m.filter()
	}
}

func (m *menu) filter() {
	q := strings.ToLower(m.Query)
	matches := 0
	for i := range m.Rows {
		r := &m.Rows[i]
		text := r.SearchText
		if text == "" {
			text = r.Title
		}
		r.Hidden = q != "" && !strings.Contains(strings.ToLower(text), q)
		if !r.Hidden {
			matches++
		}
	}
	m.NoMatches = q != "" && matches == 0
}

// VisibleRows returns the rows passing the menu's filter.
func (m Menu) VisibleRows() []Row {
	var out []Row
	for _, r := range m.Rows {
		if !r.Hidden {
			out = append(out, r)
		}
	}
	return out
}

func (c *Controller) notify(msg string) {
	if c.cfg.Notifier != nil {
		c.cfg.Notifier.Notify(msg)
	}
}

// eachRow calls f for every row with the id across all menus.
func (c *Controller) eachRow(id int64, f func(r *Row)) bool {
	found := false
	for _, mid := range c.order {
		m := c.menus[mid]
		for i := range m.Rows {
			if m.Rows[i].ID == id {
				f(&m.Rows[i])
				found = true
			}
		}
	}
	return found
}

func (c *Controller) removeRows(id int64) {
	for _, mid := range c.order {
		m := c.menus[mid]
		kept := m.Rows[:0]
		for _, r := range m.Rows {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		m.Rows = kept
		m.filter()
	}
}

func failureNotice(prefix, fallback string, err error) string {
	var rej Rejection
	if errors.As(err, &rej) {
		msg := rej.RejectionMessage()
		if msg == "" {
			msg = "Unknown error"
		}
		return prefix + msg
	}
	return fallback
}
