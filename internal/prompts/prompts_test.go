package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medrag/internal/core/ports/driven"
)

func TestDefault_EveryPromptHasATemplate(t *testing.T) {
	placeholders := map[string]int{
		driven.PromptQueryRouter:  1,
		driven.PromptQueryRewrite: 1,
		driven.PromptAnswerBasic:  2,
		driven.PromptAnswerDetail: 2,
	}

	for _, name := range driven.PromptNames() {
		t.Run(name, func(t *testing.T) {
			text, ok := Default(name)
			require.True(t, ok)
			assert.Equal(t, placeholders[name], strings.Count(text, "%s"))
			assert.NotContains(t, text, "%d")
		})
	}
}

func TestDefault_Unknown(t *testing.T) {
	_, ok := Default("missing")
	assert.False(t, ok)
}

func TestDefaults(t *testing.T) {
	all := Defaults()
	assert.Len(t, all, len(driven.PromptNames()))
	assert.Contains(t, all[driven.PromptAnswerDetail], "专家提醒")
}
