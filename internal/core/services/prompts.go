package services

import (
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
	"github.com/custodia-labs/medrag/internal/logger"
	"github.com/custodia-labs/medrag/internal/prompts"
)

// loadPrompt loads a prompt from the store, falling back to the built-in
// template if the store is unset or fails.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		prompt, err := store.Load(name)
		if err == nil && prompt != "" {
			return prompt
		}
		if err != nil {
			logger.Debug("prompt %q unavailable, using default: %v", name, err)
		}
	}
	prompt, _ := prompts.Default(name)
	return prompt
}
