package postprocessors

import (
	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
	"github.com/custodia-labs/medrag/internal/postprocessors/chunker"
	"github.com/custodia-labs/medrag/internal/postprocessors/semantic"
)

// RegisterDefaults registers all built-in processors with the registry.
// ids is the fragment identifier source handed to the chunker; nil means
// random UUIDs.
func RegisterDefaults(r *Registry, ids driven.IDGenerator) {
	r.Register(chunker.Name, func(cfg map[string]any) (driven.PostProcessor, error) {
		return buildChunker(cfg, ids), nil
	})
	r.Register(semantic.Name, func(_ map[string]any) (driven.PostProcessor, error) {
		return semantic.New(), nil
	})
}

// DefaultPipeline builds the standard pipeline for a corpus kind.
func DefaultPipeline(kind domain.CorpusKind, ids driven.IDGenerator) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r, ids)
	return r.BuildPipeline(domain.DefaultPipelineConfig(kind))
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - max_level (int): Deepest heading level that splits (default: 3)
func buildChunker(cfg map[string]any, ids driven.IDGenerator) driven.PostProcessor {
	opts := []chunker.Option{chunker.WithIDGenerator(ids)}

	if cfg != nil {
		if level := getIntFromConfig(cfg, "max_level"); level > 0 {
			opts = append(opts, chunker.WithMaxLevel(level))
		}
	}

	return chunker.New(opts...)
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
