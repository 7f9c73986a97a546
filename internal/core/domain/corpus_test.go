package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorpus_Parent(t *testing.T) {
	c := &Corpus{Parents: []ParentDocument{{ID: "a"}, {ID: "b", RelPath: "x/b.md"}}}

	doc, ok := c.Parent("b")
	assert.True(t, ok)
	assert.Equal(t, "x/b.md", doc.RelPath)

	_, ok = c.Parent("z")
	assert.False(t, ok)

	m := c.ParentMap()
	assert.Len(t, m, 2)
	assert.Same(t, &c.Parents[0], m["a"])
}
