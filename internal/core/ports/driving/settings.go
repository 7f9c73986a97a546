package driving

import (
	"context"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the generation backend.
	SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error

	// SetCorpusRoot points a named corpus at a directory.
	SetCorpusRoot(name, root string) error

	// Validate checks that the settings can drive ingestion and answering.
	// Errors wrap domain.ErrConfiguration.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig(ctx context.Context) error
}
