package driven

import (
	"context"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

// GenerationBackend is the text-generation service used to classify,
// rewrite and answer questions. Its output is untrusted free text.
//
// Implementations may include:
//   - OpenAI-compatible APIs (OpenAI, DeepSeek, Moonshot)
//   - Ollama (local models)
type GenerationBackend interface {
	// Complete renders a full completion for the prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// Stream starts a completion and returns its text as a pull-based
	// stream. The caller must Close the stream; closing early cancels the
	// upstream request.
	Stream(ctx context.Context, prompt string) (domain.TextStream, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
