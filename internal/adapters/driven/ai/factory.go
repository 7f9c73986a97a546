// Package ai provides factory functions for creating generation backends.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamallm "github.com/custodia-labs/medrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/medrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateLLMService creates a generation backend and validates
// connectivity. Returns nil without error if the provider is not configured.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.GenerationBackend, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'medrag settings' to fix", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'medrag settings' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateLLMService creates the generation backend for the configured provider.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.GenerationBackend, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	opts := driven.GenerateOptions{
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Options:           opts,
			RequestsPerSecond: settings.RequestsPerSecond,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Options:           opts,
			RequestsPerSecond: settings.RequestsPerSecond,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
