// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/styles"
)

// State represents the current answering state for display.
type State string

const (
	StateReady     State = "ready"
	StateThinking  State = "thinking"
	StateStreaming State = "streaming"
	StateAnswered  State = "answered"
	StateNotFound  State = "not_found"
	StateError     State = "error"
)

// Focus selects which keybinding hints are shown.
type Focus int

const (
	FocusInput Focus = iota
	FocusSources
	FocusDocument
)

// Bar displays answering status and keybinding hints.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	state       State
	focus       Focus
	message     string
	sourceCount int
	width       int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	inner := s.width - s.styles.StatusBar.GetHorizontalFrameSize()
	padding := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateThinking:
		return s.styles.Muted.Render("Retrieving...")
	case StateStreaming:
		return s.styles.Muted.Render("Answering...")
	case StateNotFound:
		return s.styles.Warning.Render("No matching documents")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateAnswered:
		if s.sourceCount > 0 {
			return s.styles.Normal.Render(fmt.Sprintf("%d sources", s.sourceCount))
		}
		return s.styles.Normal.Render("Answered")
	case StateReady:
	}
	if s.message != "" {
		return s.styles.Muted.Render(s.message)
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch s.focus {
	case FocusSources:
		bindings = s.keymap.SourcesHelp()
	case FocusDocument:
		bindings = s.keymap.DocumentHelp()
	default:
		bindings = s.keymap.InputHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state and clears any message.
func (s *Bar) SetState(state State) {
	s.state = state
	s.message = ""
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetFocus selects the hint set.
func (s *Bar) SetFocus(f Focus) {
	s.focus = f
}

// SetError switches to the error state with a message.
func (s *Bar) SetError(err error) {
	s.state = StateError
	s.message = err.Error()
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetSourceCount sets the number of cited sources.
func (s *Bar) SetSourceCount(count int) {
	s.sourceCount = count
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Clear resets the status bar to its default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.sourceCount = 0
}
