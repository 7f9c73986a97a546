// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Ask submits the typed question.
	Ask key.Binding

	// NewQuestion returns focus to the question input.
	NewQuestion key.Binding

	// Sources moves focus from the input to the cited sources.
	Sources key.Binding

	Up   key.Binding
	Down key.Binding

	// Open shows the selected source document.
	Open key.Binding

	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Ask: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ask"),
		),
		NewQuestion: key.NewBinding(
			key.WithKeys("n", "/"),
			key.WithHelp("n", "new question"),
		),
		Sources: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "sources"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "bottom"),
		),
	}
}

// InputHelp returns keybindings shown while typing a question.
func (k *KeyMap) InputHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Sources, k.Back}
}

// SourcesHelp returns keybindings shown while browsing sources.
func (k *KeyMap) SourcesHelp() []key.Binding {
	return []key.Binding{k.NewQuestion, k.Up, k.Open, k.Quit}
}

// DocumentHelp returns keybindings shown in the document view.
func (k *KeyMap) DocumentHelp() []key.Binding {
	return []key.Binding{k.Up, k.PageDown, k.Top, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Ask, k.Sources, k.NewQuestion},
		{k.Up, k.Down, k.Open},
		{k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Back, k.Help, k.Quit},
	}
}
