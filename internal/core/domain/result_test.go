package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPath(t *testing.T) {
	r := ValidPath(Metadata{Category: "骨折"})

	assert.True(t, r.Valid)
	assert.Empty(t, r.Reason)
	assert.Equal(t, "骨折", r.Metadata.Category)
}

func TestInvalidPath(t *testing.T) {
	r := InvalidPath("path depth 2 below 3")

	assert.False(t, r.Valid)
	assert.Equal(t, "path depth 2 below 3", r.Reason)
}

func TestSkipResult(t *testing.T) {
	r := SkipResult("a/b.md", "not valid UTF-8")

	assert.True(t, r.Skipped)
	assert.Nil(t, r.Document)
	assert.Equal(t, "a/b.md", r.RelPath)
	assert.Equal(t, "not valid UTF-8", r.Reason)
}
