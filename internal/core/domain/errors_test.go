package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNoKnowledgeBase", ErrNoKnowledgeBase},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrIndexUnavailable", ErrIndexUnavailable},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrMissingCorpusRoot", ErrMissingCorpusRoot},
		{"ErrMissingCredential", ErrMissingCredential},
	}

	seen := make(map[string]bool)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
			assert.False(t, seen[tt.err.Error()], "duplicate message %q", tt.err.Error())
			seen[tt.err.Error()] = true
		})
	}
}

func TestErrors_WithWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: %w: /data/cases", ErrConfiguration, ErrMissingCorpusRoot)

	assert.True(t, errors.Is(wrapped, ErrConfiguration))
	assert.True(t, errors.Is(wrapped, ErrMissingCorpusRoot))
	assert.False(t, errors.Is(wrapped, ErrMissingCredential))
}
