package driven

import (
	"context"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

// PostProcessor turns a parent document into child fragments.
// PostProcessors are chained in a pipeline (e.g., heading split, semantic context).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns fragments.
	// If the processor enriches fragments, it receives and returns them.
	// If the processor creates fragments (e.g., chunker), it receives nil and returns new ones.
	Process(ctx context.Context, doc *domain.ParentDocument, fragments []domain.ChildFragment) ([]domain.ChildFragment, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final fragments after all processing.
	Process(ctx context.Context, doc *domain.ParentDocument) ([]domain.ChildFragment, error)
}
