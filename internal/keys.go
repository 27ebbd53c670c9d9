package internal

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle    key.Binding
	Cancel    key.Binding
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Clear     key.Binding
	NextPane  key.Binding
	PrevPane  key.Binding
	Events    key.Binding
	Delete    key.Binding
	Countdown key.Binding
	SetTarget key.Binding
	Warning   key.Binding
	Back      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Toggle: key.NewBinding(
		key.WithKeys("enter", "s"),
		key.WithHelp("enter", "start/stop"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "discard running"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys(" ", "space"),
		key.WithHelp("space", "select row"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear selection"),
	),
	NextPane: key.NewBinding(
		key.WithKeys("tab", "right", "l"),
		key.WithHelp("tab", "next range"),
	),
	PrevPane: key.NewBinding(
		key.WithKeys("shift+tab", "left", "h"),
		key.WithHelp("shift+tab", "prev range"),
	),
	Events: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "events"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Countdown: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "countdown on/off"),
	),
	SetTarget: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "set countdown"),
	),
	Warning: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "warning on/off"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
