package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoKnowledgeBase indicates a question was asked before ingestion
	// and index build completed.
	ErrNoKnowledgeBase = errors.New("knowledge base not built")

	// ErrLLMUnavailable indicates the generation backend is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrIndexUnavailable indicates the similarity index is not configured.
	ErrIndexUnavailable = errors.New("similarity index unavailable")

	// Configuration Errors. These are fatal at startup.

	// ErrConfiguration indicates the application settings are unusable.
	ErrConfiguration = errors.New("configuration error")

	// ErrMissingCorpusRoot indicates a configured corpus root does not exist.
	ErrMissingCorpusRoot = errors.New("corpus root not found")

	// ErrMissingCredential indicates the generation backend needs an API key.
	ErrMissingCredential = errors.New("missing credential")
)
