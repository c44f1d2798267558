package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	New            key.Binding
	Edit           key.Binding
	Toggle         key.Binding
	Delete         key.Binding
	FilterAll      key.Binding
	FilterActive   key.Binding
	FilterDone     key.Binding
	ClearCompleted key.Binding
	ClearAll       key.Binding
	Export         key.Binding
	Theme          key.Binding
	Tab            key.Binding
	Help           key.Binding
	Enter          key.Binding
	Back           key.Binding
	Up             key.Binding
	Down           key.Binding
	Confirm        key.Binding
	Quit           key.Binding
}

var keys = keyMap{
	New: key.NewBinding(
		key.WithKeys("n", "ctrl+k"),
		key.WithHelp("n", "new"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space", "toggle"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete"),
	),
	FilterAll: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "all"),
	),
	FilterActive: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "active"),
	),
	FilterDone: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "completed"),
	),
	ClearCompleted: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear completed"),
	),
	ClearAll: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "clear all"),
	),
	Export: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "export"),
	),
	Theme: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "theme"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Toggle, k.Edit, k.Delete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Edit, k.Toggle, k.Delete},
		{k.FilterAll, k.FilterActive, k.FilterDone},
		{k.ClearCompleted, k.ClearAll, k.Export, k.Theme},
		{k.Up, k.Down, k.Tab, k.Back, k.Quit},
	}
}
