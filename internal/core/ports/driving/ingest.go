package driving

import (
	"context"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

// IngestService turns a corpus tree into parent documents and child fragments.
type IngestService interface {
	// Ingest walks the corpus root and processes every matching file.
	// Per-file failures are recorded as skips; only a missing root fails.
	Ingest(ctx context.Context, cfg domain.CorpusConfig) (*domain.Corpus, error)
}
