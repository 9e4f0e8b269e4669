package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	left     key.Binding
	right    key.Binding
	enter    key.Binding
	back     key.Binding
	yes      key.Binding
	no       key.Binding
	add      key.Binding
	complete key.Binding
	restart  key.Binding
	search   key.Binding
	want     key.Binding
	started  key.Binding
	done     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev month")),
		right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next month")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "tracker")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add books")),
		complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),
		restart:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		want:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "want to read")),
		started:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "reading")),
		done:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "read")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.left, k.right, k.back},
		{k.add, k.complete, k.yes, k.no},
		{k.search, k.want, k.started, k.done},
		{k.restart, k.quit},
	}
}
