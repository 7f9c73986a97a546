package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
	"github.com/custodia-labs/medrag/internal/logger"
)

// Router classifies questions as list, detail or general using the
// generation backend.
type Router struct {
	llm         driven.GenerationBackend
	promptStore driven.PromptStore
}

// NewRouter creates a router.
func NewRouter(llm driven.GenerationBackend) *Router {
	return &Router{llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (r *Router) SetPromptStore(store driven.PromptStore) {
	r.promptStore = store
}

// Route returns the question's route label. Backend output that is not
// exactly one of the labels becomes general; backend errors propagate.
func (r *Router) Route(ctx context.Context, question string) (domain.Route, error) {
	if r.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	prompt := fmt.Sprintf(loadPrompt(r.promptStore, driven.PromptQueryRouter), question)
	raw, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("route question: %w", err)
	}

	route := domain.ParseRoute(raw)
	if !strings.EqualFold(strings.TrimSpace(raw), route.String()) {
		logger.Debug("router: unrecognised label %q, using %s", raw, route)
	}
	logger.Info("Route: %s", route)
	return route, nil
}

// Rewriter restates vague questions in retrieval-friendly terms.
type Rewriter struct {
	llm         driven.GenerationBackend
	promptStore driven.PromptStore
}

// NewRewriter creates a rewriter.
func NewRewriter(llm driven.GenerationBackend) *Rewriter {
	return &Rewriter{llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (r *Rewriter) SetPromptStore(store driven.PromptStore) {
	r.promptStore = store
}

// Rewrite returns the backend's restatement of question. Empty output
// keeps the original.
func (r *Rewriter) Rewrite(ctx context.Context, question string) (string, error) {
	if r.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	prompt := fmt.Sprintf(loadPrompt(r.promptStore, driven.PromptQueryRewrite), question)
	raw, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("rewrite question: %w", err)
	}

	rewritten := strings.TrimSpace(raw)
	if rewritten == "" {
		rewritten = question
	}

	if rewritten != question {
		logger.Info("Query rewritten: %q -> %q", question, rewritten)
	} else {
		logger.Info("Query unchanged: %q", question)
	}
	return rewritten, nil
}
