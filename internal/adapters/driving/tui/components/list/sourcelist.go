// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/medrag/internal/core/domain"
)

// SourceList displays the parent documents cited by an answer.
type SourceList struct {
	sources  []domain.RankedParent
	route    domain.Route
	selected int
	active   bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewSourceList creates a new source list component.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SourceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// View renders the source list.
func (l *SourceList) View() string {
	if len(l.sources) == 0 {
		return ""
	}

	lines := make([]string, 0, len(l.sources)*2+2)

	header := l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.sources)))
	if l.route != "" {
		header += " " + l.styles.Route.Render(l.route.String())
	}
	lines = append(lines, header, "")

	// Two lines per source.
	visible := max((l.height-2)/2, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.sources))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderSource(i, &l.sources[i]))
	}

	return strings.Join(lines, "\n")
}

func (l *SourceList) renderSource(index int, p *domain.RankedParent) string {
	label := Label(p.Document)
	maxLabel := max(l.width-16, 10)
	label = runewidth.Truncate(label, maxLabel, "...")
	label = runewidth.FillRight(label, maxLabel)

	prefix := fmt.Sprintf("  [%d] ", index+1)
	relevance := fmt.Sprintf("%d hits", p.Relevance)

	var title string
	if l.active && index == l.selected {
		title = l.styles.Selected.Render(prefix + label + "  " + relevance)
	} else {
		title = l.styles.Normal.Render(prefix+label+"  ") + l.styles.Muted.Render(relevance)
	}

	detail := p.Document.RelPath
	if c := p.Document.Metadata.Category; c != "" {
		detail = c + " · " + detail
	}
	detail = runewidth.Truncate(detail, max(l.width-8, 20), "...")

	return title + "\n" + l.styles.Muted.Render("      "+detail)
}

// Label is the display name of a cited document.
func Label(doc domain.ParentDocument) string {
	if label := doc.Metadata.Label(); label != "" {
		return label
	}
	return doc.RelPath
}

// SetSources replaces the list and resets the selection.
func (l *SourceList) SetSources(route domain.Route, sources []domain.RankedParent) {
	l.route = route
	l.sources = sources
	l.selected = 0
}

// Sources returns the current sources.
func (l *SourceList) Sources() []domain.RankedParent {
	return l.sources
}

// SetActive marks the list as holding keyboard focus.
func (l *SourceList) SetActive(active bool) {
	l.active = active
}

// Active returns whether the list holds keyboard focus.
func (l *SourceList) Active() bool {
	return l.active
}

// Selected returns the index of the selected source.
func (l *SourceList) Selected() int {
	return l.selected
}

// SelectedSource returns the currently selected source, or nil if none.
func (l *SourceList) SelectedSource() *domain.RankedParent {
	if l.selected < 0 || l.selected >= len(l.sources) {
		return nil
	}
	return &l.sources[l.selected]
}

// MoveUp moves selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.sources)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *SourceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of sources.
func (l *SourceList) Count() int {
	return len(l.sources)
}
