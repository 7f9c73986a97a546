package services

import (
	"sort"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/logger"
)

// ParentResolver reconstructs full source documents from retrieved
// fragments.
type ParentResolver struct {
	parents map[string]*domain.ParentDocument
	index   *domain.ParentChildIndex
}

// NewParentResolver creates a resolver over an ingested corpus.
func NewParentResolver(corpus *domain.Corpus) *ParentResolver {
	index := corpus.Index
	if index == nil {
		index = domain.NewParentChildIndex()
		index.AddFragments(corpus.Fragments)
	}
	return &ParentResolver{
		parents: corpus.ParentMap(),
		index:   index,
	}
}

// Resolve returns each referenced parent once, ordered by how many
// fragments referenced it (descending), ties in first-seen order.
// Unresolvable references are skipped.
func (r *ParentResolver) Resolve(fragments []domain.ChildFragment) []domain.RankedParent {
	counts := make(map[string]int)
	var order []string

	for i := range fragments {
		id := r.parentID(&fragments[i])
		if id == "" {
			logger.Debug("fragment %s has no parent reference", fragments[i].ID)
			continue
		}
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}

	ranked := make([]domain.RankedParent, 0, len(order))
	for _, id := range order {
		doc, ok := r.parents[id]
		if !ok {
			logger.Debug("parent %s not in corpus, skipping", id)
			continue
		}
		ranked = append(ranked, domain.RankedParent{Document: *doc, Relevance: counts[id]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Relevance > ranked[j].Relevance
	})

	logger.Debug("resolved %d fragments to %d parents", len(fragments), len(ranked))
	return ranked
}

func (r *ParentResolver) parentID(f *domain.ChildFragment) string {
	if f.ParentID != "" {
		return f.ParentID
	}
	id, _ := r.index.Parent(f.ID)
	return id
}
