package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
)

// Ensure FragmentStore implements the interface.
var _ driven.FragmentStore = (*FragmentStore)(nil)

// FragmentStore is an in-memory implementation of driven.FragmentStore.
// Snapshots are copied on the way in and out.
type FragmentStore struct {
	mu        sync.RWMutex
	snapshots map[string][]domain.ChildFragment
}

// NewFragmentStore creates a new in-memory fragment store.
func NewFragmentStore() *FragmentStore {
	return &FragmentStore{
		snapshots: make(map[string][]domain.ChildFragment),
	}
}

// SaveFragments replaces the stored snapshot for a corpus.
func (s *FragmentStore) SaveFragments(_ context.Context, corpus string, fragments []domain.ChildFragment) error {
	if corpus == "" {
		return fmt.Errorf("%w: corpus name is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[corpus] = append([]domain.ChildFragment{}, fragments...)
	return nil
}

// LoadFragments returns the stored snapshot.
func (s *FragmentStore) LoadFragments(_ context.Context, corpus string) ([]domain.ChildFragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fragments, ok := s.snapshots[corpus]
	if !ok {
		return nil, fmt.Errorf("snapshot %q: %w", corpus, domain.ErrNotFound)
	}
	return append([]domain.ChildFragment{}, fragments...), nil
}
