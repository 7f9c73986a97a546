package domain

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParentChildIndex(t *testing.T) {
	x := NewParentChildIndex()
	x.Add("c1", "p1")
	x.AddFragments([]ChildFragment{{ID: "c2", ParentID: "p1"}, {ID: "c3", ParentID: "p2"}})

	p, ok := x.Parent("c3")
	assert.True(t, ok)
	assert.Equal(t, "p2", p)
	assert.Equal(t, 3, x.Len())

	_, ok = x.Parent("missing")
	assert.False(t, ok)
}

func TestParentChildIndex_Rebuild(t *testing.T) {
	x := NewParentChildIndex()
	x.Add("stale", "p0")

	x.Rebuild([]ChildFragment{{ID: "c1", ParentID: "p1"}})

	assert.Equal(t, 1, x.Len())
	_, ok := x.Parent("stale")
	assert.False(t, ok)
}

func TestParentChildIndex_ConcurrentWrites(t *testing.T) {
	x := NewParentChildIndex()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			x.Add(fmt.Sprintf("c%d", n), fmt.Sprintf("p%d", n%7))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, x.Len())
}
