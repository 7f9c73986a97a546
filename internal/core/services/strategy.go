package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
)

// Strategy is the prompt and delivery form chosen for an answer.
type Strategy struct {
	Prompt string
	Mode   domain.DeliveryMode
}

// SelectStrategy maps a route and delivery mode to a strategy. Detail
// questions get the sectioned template; every other route gets the
// free-form one.
func SelectStrategy(route domain.Route, mode domain.DeliveryMode) Strategy {
	prompt := driven.PromptAnswerBasic
	if route == domain.RouteDetail {
		prompt = driven.PromptAnswerDetail
	}
	return Strategy{Prompt: prompt, Mode: mode}
}

// Render fills the strategy's template with context and question.
func (s Strategy) Render(store driven.PromptStore, context, question string) string {
	return fmt.Sprintf(loadPrompt(store, s.Prompt), context, question)
}

// Generate runs the rendered prompt through the backend in the strategy's
// delivery mode. Exactly one of the text or the stream is set.
func (s Strategy) Generate(ctx context.Context, llm driven.GenerationBackend, prompt string) (string, domain.TextStream, error) {
	if s.Mode == domain.DeliveryStream {
		stream, err := llm.Stream(ctx, prompt)
		if err != nil {
			return "", nil, fmt.Errorf("stream answer: %w", err)
		}
		return "", stream, nil
	}
	text, err := llm.Complete(ctx, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("generate answer: %w", err)
	}
	return text, nil, nil
}
