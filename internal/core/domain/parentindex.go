package domain

import "sync"

// ParentChildIndex maps child fragment IDs to parent document IDs.
// It is derived data: it can always be rebuilt from the fragment set and
// is only used to speed up parent reconstruction. Safe for concurrent use.
type ParentChildIndex struct {
	mu      sync.RWMutex
	parents map[string]string
}

// NewParentChildIndex creates an empty index.
func NewParentChildIndex() *ParentChildIndex {
	return &ParentChildIndex{
		parents: make(map[string]string),
	}
}

// Add records that childID belongs to parentID.
func (x *ParentChildIndex) Add(childID, parentID string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.parents[childID] = parentID
}

// AddFragments records every fragment's parent reference.
func (x *ParentChildIndex) AddFragments(fragments []ChildFragment) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for i := range fragments {
		x.parents[fragments[i].ID] = fragments[i].ParentID
	}
}

// Parent returns the parent ID for a child, if known.
func (x *ParentChildIndex) Parent(childID string) (string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	p, ok := x.parents[childID]
	return p, ok
}

// Len returns the number of recorded children.
func (x *ParentChildIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.parents)
}

// Rebuild discards all entries and re-derives them from fragments.
func (x *ParentChildIndex) Rebuild(fragments []ChildFragment) {
	fresh := make(map[string]string, len(fragments))
	for i := range fragments {
		fresh[fragments[i].ID] = fragments[i].ParentID
	}
	x.mu.Lock()
	x.parents = fresh
	x.mu.Unlock()
}
