// Package document provides the cited document view for the TUI.
package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driving"
)

// ErrNoCatalog is returned when the view has no catalog to read from.
var ErrNoCatalog = errors.New("document catalog not available")

// reservedLines covers the title, separator, metadata, footer and padding.
const reservedLines = 8

// View shows the full text of one parent document.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	catalog driving.CatalogService

	document     *domain.ParentDocument
	lines        []string
	scrollOffset int
	width        int
	height       int
	loading      bool
	err          error
}

// NewView creates a new document view.
func NewView(s *styles.Styles, km *keymap.KeyMap, catalog driving.CatalogService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		catalog: catalog,
		width:   80,
		height:  24,
	}
}

// Load clears the view and returns a command that fetches the document.
func (v *View) Load(id string) tea.Cmd {
	v.document = nil
	v.lines = nil
	v.scrollOffset = 0
	v.err = nil
	v.loading = true

	catalog := v.catalog
	return func() tea.Msg {
		if catalog == nil {
			return messages.DocumentLoaded{Err: ErrNoCatalog}
		}
		doc, err := catalog.Document(id)
		return messages.DocumentLoaded{Document: doc, Err: err}
	}
}

// Update handles messages for the document view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.document = msg.Document
		v.err = nil
		v.wrapContent()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		v.scrollOffset = max(v.scrollOffset-1, 0)
	case key.Matches(msg, v.keymap.Down):
		v.scrollOffset = min(v.scrollOffset+1, v.maxScrollOffset())
	case key.Matches(msg, v.keymap.PageUp):
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case key.Matches(msg, v.keymap.PageDown):
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case key.Matches(msg, v.keymap.Top):
		v.scrollOffset = 0
	case key.Matches(msg, v.keymap.Bottom):
		v.scrollOffset = v.maxScrollOffset()
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	}
	return v, nil
}

// wrapContent wraps the document text to the view width, counting
// display cells so CJK text wraps correctly.
func (v *View) wrapContent() {
	if v.document == nil || v.document.Content == "" {
		v.lines = nil
		return
	}
	wrapped := v.styles.Normal.Width(max(v.width-4, 20)).Render(v.document.Content)
	v.lines = strings.Split(wrapped, "\n")
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

func (v *View) visibleLines() int {
	return max(v.height-reservedLines, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the document view.
func (v *View) View() string {
	var b strings.Builder

	title := "Document"
	if v.document != nil {
		title = list.Label(*v.document)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 1)))
	b.WriteString("\n")

	switch {
	case v.loading:
		b.WriteString("\n" + v.styles.Muted.Render("Loading document..."))
	case v.err != nil:
		b.WriteString("\n" + v.styles.Error.Render("Error: "+v.err.Error()))
	case v.document == nil || len(v.lines) == 0:
		b.WriteString("\n" + v.styles.Muted.Render("(No content)"))
	default:
		b.WriteString(v.renderMetadata())
		b.WriteString("\n")
		end := min(v.scrollOffset+v.visibleLines(), len(v.lines))
		for _, line := range v.lines[v.scrollOffset:end] {
			b.WriteString(line)
			b.WriteString("\n")
		}
		if len(v.lines) > v.visibleLines() {
			percentage := 0
			if m := v.maxScrollOffset(); m > 0 {
				percentage = v.scrollOffset * 100 / m
			}
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
				percentage, v.scrollOffset+1, end, len(v.lines))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))
	return b.String()
}

func (v *View) renderMetadata() string {
	parts := []string{v.document.RelPath}
	if c := v.document.Metadata.Category; c != "" {
		parts = append([]string{c}, parts...)
	}
	return v.styles.Muted.Render(strings.Join(parts, " · ")) + "\n"
}

// SetDimensions sets the view dimensions and rewraps the content.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.wrapContent()
}

// Document returns the loaded document.
func (v *View) Document() *domain.ParentDocument {
	return v.document
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
