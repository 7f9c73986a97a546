package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	accents := []lipgloss.Color{theme.Primary, theme.Secondary, theme.Success, theme.Warning, theme.Error}
	seen := make(map[lipgloss.Color]bool)
	for _, c := range accents {
		assert.NotEmpty(t, string(c))
		assert.False(t, seen[c], "duplicate accent %s", c)
		seen[c] = true
	}
}

func TestNewStyles(t *testing.T) {
	tests := []struct {
		name  string
		theme *Theme
	}{
		{"explicit theme", DefaultTheme()},
		{"nil theme falls back", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStyles(tt.theme)

			require.NotNil(t, s)
			require.NotNil(t, s.Theme())
			if tt.theme != nil {
				assert.Same(t, tt.theme, s.Theme())
			}
		})
	}
}

func TestStyles_AllStylesInitialised(t *testing.T) {
	s := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"Title":      s.Title,
		"Subtitle":   s.Subtitle,
		"Normal":     s.Normal,
		"Muted":      s.Muted,
		"Selected":   s.Selected,
		"Error":      s.Error,
		"Answer":     s.Answer,
		"Route":      s.Route,
		"InputField": s.InputField,
		"StatusBar":  s.StatusBar,
		"Border":     s.Border,
	} {
		assert.NotEqual(t, lipgloss.Style{}, style, name)
	}
}

func TestStyles_RenderKeepsText(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Answer.Render("桡骨远端骨折"), "桡骨远端骨折")
	assert.Contains(t, s.Route.Render("list"), "list")
}
