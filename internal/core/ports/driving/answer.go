package driving

import (
	"context"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

// AnswerService answers free-text questions against an ingested corpus.
type AnswerService interface {
	// Ask routes, rewrites, retrieves and generates an answer.
	// In stream mode the caller owns Answer.Stream and must close it.
	Ask(ctx context.Context, question string, mode domain.DeliveryMode) (*domain.Answer, error)
}

// CatalogService exposes read-only views of an ingested corpus.
type CatalogService interface {
	// ExtractFilters derives retrieval constraints from a question.
	ExtractFilters(question string) domain.Filters

	// BrowseCategory lists distinct parent documents in a category that
	// match the query, ranked by fragment hits.
	BrowseCategory(ctx context.Context, category, query string) ([]domain.RankedParent, error)

	// DocumentsByCategory lists every parent document in a category.
	DocumentsByCategory(category string) ([]domain.ParentDocument, error)

	// Document returns a parent document by ID.
	Document(id string) (*domain.ParentDocument, error)

	// Stats summarises the corpus.
	Stats() (*domain.CorpusStats, error)

	// ExportMetadata returns one record per parent document.
	ExportMetadata() ([]domain.MetadataRecord, error)

	// Categories returns the category labels in table order.
	Categories() []string
}

// KnowledgeBaseService is the full query engine: it builds the knowledge
// base for a corpus and then answers and browses against it.
type KnowledgeBaseService interface {
	AnswerService
	CatalogService

	// Build ingests the corpus and prepares its index, reusing a saved
	// index unless rebuild is set. A successful Build replaces the current
	// knowledge base atomically.
	Build(ctx context.Context, cfg domain.CorpusConfig, rebuild bool) (*domain.BuildReport, error)

	// Ready reports whether a knowledge base has been built.
	Ready() bool
}
