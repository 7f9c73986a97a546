// Package semantic attaches a book > chapter > heading path to fragments of
// hierarchical documents, giving the index more context than the fragment
// text alone.
package semantic

import (
	"context"
	"strings"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Name is the registry name of the processor.
const Name = "semantic_context"

// Separator joins the context parts.
const Separator = " > "

// Processor enriches fragments with a semantic context string.
type Processor struct{}

// New creates a semantic context processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process sets SemanticContext on every fragment of a hierarchical
// document. Fragments of other corpus kinds pass through unchanged.
func (p *Processor) Process(_ context.Context, doc *domain.ParentDocument, fragments []domain.ChildFragment) ([]domain.ChildFragment, error) {
	if doc.Kind != domain.CorpusHierarchical {
		return fragments, nil
	}
	for i := range fragments {
		fragments[i].SemanticContext = Context(doc.Metadata, fragments[i].Headings)
	}
	return fragments, nil
}

// Context joins book, chapter and headings, skipping empty parts.
func Context(m domain.Metadata, headings []string) string {
	parts := make([]string, 0, 2+len(headings))
	for _, s := range append([]string{m.BookName, m.ChapterName}, headings...) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, Separator)
}
