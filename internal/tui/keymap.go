// Package tui implements the interactive match review interface.
package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts for match review.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Accept key.Binding
	Skip   key.Binding
	Defer  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "previous candidate"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "next candidate"),
		),
		Accept: key.NewBinding(
			key.WithKeys("enter", "a"),
			key.WithHelp("enter/a", "accept match"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "mark skipped"),
		),
		Defer: key.NewBinding(
			key.WithKeys("d", "tab"),
			key.WithHelp("d", "decide later"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the key bindings for the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Accept, k.Skip, k.Defer, k.Quit}
}

// FullHelp returns the key bindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Accept, k.Skip, k.Defer},
		{k.Help, k.Quit},
	}
}
