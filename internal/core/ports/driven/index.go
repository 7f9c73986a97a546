package driven

import (
	"context"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

// SimilarityIndex builds, persists and restores searchable fragment indexes.
type SimilarityIndex interface {
	// Build indexes the fragments and returns a searchable handle.
	Build(ctx context.Context, fragments []domain.ChildFragment) (IndexHandle, error)

	// Load restores a previously saved handle.
	// Returns domain.ErrNotFound when nothing has been saved.
	Load(ctx context.Context) (IndexHandle, error)

	// Save persists a handle so a later Load can restore it.
	Save(ctx context.Context, handle IndexHandle) error
}

// IndexHandle searches a built index. Results are ranked, most similar first.
type IndexHandle interface {
	// Search returns up to topK fragments similar to the query.
	Search(ctx context.Context, query string, topK int) ([]domain.ChildFragment, error)

	// FilteredSearch is Search restricted to fragments matching filters.
	FilteredSearch(ctx context.Context, query string, filters domain.Filters, topK int) ([]domain.ChildFragment, error)

	// Fragments returns every indexed fragment.
	Fragments() []domain.ChildFragment
}

// FragmentStore persists index snapshots, one per corpus.
type FragmentStore interface {
	// SaveFragments replaces the stored snapshot for a corpus.
	SaveFragments(ctx context.Context, corpus string, fragments []domain.ChildFragment) error

	// LoadFragments returns the stored snapshot.
	// Returns domain.ErrNotFound when the corpus has no snapshot.
	LoadFragments(ctx context.Context, corpus string) ([]domain.ChildFragment, error)
}
