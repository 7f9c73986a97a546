package keyword

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
	"github.com/custodia-labs/medrag/internal/logger"
)

// BM25 parameters.
const (
	k1 = 1.2
	b  = 0.75
)

// Verify interface compliance.
var (
	_ driven.SimilarityIndex = (*Index)(nil)
	_ driven.IndexHandle     = (*Handle)(nil)
)

// Index builds keyword handles and persists them for one corpus.
type Index struct {
	store  driven.FragmentStore
	corpus string
}

// New creates an index whose snapshots are stored under the corpus name.
func New(store driven.FragmentStore, corpus string) *Index {
	return &Index{store: store, corpus: corpus}
}

// Build indexes the fragments and returns a searchable handle.
func (i *Index) Build(ctx context.Context, fragments []domain.ChildFragment) (driven.IndexHandle, error) {
	h, err := newHandle(ctx, fragments)
	if err != nil {
		return nil, err
	}
	logger.Debug("keyword index: built %d fragments, %d terms", len(h.fragments), len(h.postings))
	return h, nil
}

// Load restores the saved snapshot for the corpus.
func (i *Index) Load(ctx context.Context) (driven.IndexHandle, error) {
	if i.store == nil {
		return nil, fmt.Errorf("keyword index %q: %w", i.corpus, domain.ErrNotFound)
	}
	fragments, err := i.store.LoadFragments(ctx, i.corpus)
	if err != nil {
		return nil, err
	}
	h, err := newHandle(ctx, fragments)
	if err != nil {
		return nil, err
	}
	logger.Debug("keyword index: loaded %d fragments for %s", len(h.fragments), i.corpus)
	return h, nil
}

// Save persists the handle's fragments.
func (i *Index) Save(ctx context.Context, handle driven.IndexHandle) error {
	if i.store == nil {
		return fmt.Errorf("%w: no fragment store", domain.ErrIndexUnavailable)
	}
	if handle == nil {
		return fmt.Errorf("%w: nil handle", domain.ErrInvalidInput)
	}
	if err := i.store.SaveFragments(ctx, i.corpus, handle.Fragments()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

type posting struct {
	doc int
	tf  int
}

// Handle is an immutable BM25 index over a fixed fragment list.
// It is safe for concurrent searches.
type Handle struct {
	fragments []domain.ChildFragment
	postings  map[string][]posting
	lengths   []int
	avgLen    float64
}

func newHandle(ctx context.Context, fragments []domain.ChildFragment) (*Handle, error) {
	h := &Handle{
		fragments: append([]domain.ChildFragment{}, fragments...),
		postings:  make(map[string][]posting),
		lengths:   make([]int, len(fragments)),
	}

	total := 0
	for doc, frag := range h.fragments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tf, n := termFrequencies(indexText(frag))
		for term, count := range tf {
			h.postings[term] = append(h.postings[term], posting{doc: doc, tf: count})
		}
		h.lengths[doc] = n
		total += n
	}
	if len(fragments) > 0 {
		h.avgLen = float64(total) / float64(len(fragments))
	}

	return h, nil
}

// indexText is the searchable text of a fragment: its content plus the
// labels a question is likely to name.
func indexText(f domain.ChildFragment) string {
	return f.Content + "\n" + f.Metadata.Topic + "\n" + f.Metadata.Category + "\n" + f.SemanticContext
}

// Search returns up to topK fragments ranked by BM25 score.
func (h *Handle) Search(ctx context.Context, query string, topK int) ([]domain.ChildFragment, error) {
	return h.search(ctx, query, nil, topK)
}

// FilteredSearch is Search restricted to fragments matching filters.
func (h *Handle) FilteredSearch(
	ctx context.Context, query string, filters domain.Filters, topK int,
) ([]domain.ChildFragment, error) {
	return h.search(ctx, query, func(doc int) bool {
		return filters.Matches(h.fragments[doc].Metadata)
	}, topK)
}

// Fragments returns every indexed fragment in build order.
func (h *Handle) Fragments() []domain.ChildFragment {
	return append([]domain.ChildFragment{}, h.fragments...)
}

type scored struct {
	doc   int
	score float64
}

func (h *Handle) search(ctx context.Context, query string, keep func(int) bool, topK int) ([]domain.ChildFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 || len(h.fragments) == 0 {
		return nil, nil
	}

	qtf, _ := termFrequencies(query)
	terms := make([]string, 0, len(qtf))
	for term := range qtf {
		terms = append(terms, term)
	}
	// Fixed summation order keeps equal scores equal across runs.
	sort.Strings(terms)

	scores := make(map[int]float64)
	n := float64(len(h.fragments))

	for _, term := range terms {
		list := h.postings[term]
		if len(list) == 0 {
			continue
		}
		idf := math.Log(1 + (n-float64(len(list))+0.5)/(float64(len(list))+0.5))
		for _, p := range list {
			if keep != nil && !keep(p.doc) {
				continue
			}
			tf := float64(p.tf)
			denom := k1 * (1 - b + b*float64(h.lengths[p.doc])/h.avgLen)
			scores[p.doc] += idf * tf * (k1 + 1) / (tf + denom)
		}
	}

	ranked := make([]scored, 0, len(scores))
	for doc, s := range scores {
		ranked = append(ranked, scored{doc: doc, score: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].doc < ranked[j].doc
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	out := make([]domain.ChildFragment, len(ranked))
	for i, r := range ranked {
		out[i] = h.fragments[r.doc]
	}
	return out, nil
}
