package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev      key.Binding
	Next      key.Binding
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	OpenTab   key.Binding
	Header    key.Binding
	Pin       key.Binding
	Status    key.Binding
	Type      key.Binding
	CopyID    key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Close     key.Binding
	Backspace key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:      key.NewBinding(key.WithKeys("left", "shift+tab"), key.WithHelp("←", "prev menu")),
		Next:      key.NewBinding(key.WithKeys("right", "tab"), key.WithHelp("→", "next menu")),
		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		OpenTab:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "new tab")),
		Header:    key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "menu link")),
		Pin:       key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "pin")),
		Status:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "status")),
		Type:      key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "type")),
		CopyID:    key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy id")),
		Refresh:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		Help:      key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		Close:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear/close")),
		Backspace: key.NewBinding(key.WithKeys("backspace")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Open, k.OpenTab, k.Pin, k.Status, k.Type, k.CopyID, k.Close, k.Help, k.Quit}
}
