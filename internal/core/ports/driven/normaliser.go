package driven

import "github.com/custodia-labs/medrag/internal/core/domain"

// Normaliser strips non-body sections and markup noise from raw document
// text. Normalisation is total: it never fails, and empty input yields
// empty output.
type Normaliser interface {
	// Kind returns the corpus kind this normaliser is tuned for.
	Kind() domain.CorpusKind

	// Normalise returns the cleaned text.
	Normalise(content string) string
}

// PathResolver derives classification metadata from a document's path
// relative to its corpus root.
type PathResolver interface {
	// Kind returns the corpus kind this resolver handles.
	Kind() domain.CorpusKind

	// Resolve maps a slash-separated relative path to metadata, or to an
	// invalid result with a reason.
	Resolve(relPath string) domain.PathResult
}

// IDGenerator produces collision-resistant identifiers for child
// fragments. Implementations must be safe for concurrent use.
type IDGenerator interface {
	NewID() string
}
