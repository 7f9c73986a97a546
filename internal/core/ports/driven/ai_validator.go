package driven

import (
	"context"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

// AIConfigValidator validates generation backend configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying service.
type AIConfigValidator interface {
	// ValidateLLM validates an LLM configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateLLM(ctx context.Context, config *domain.LLMSettings) error
}
