package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used by the query pipeline.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptQueryRouter classifies a question as list, detail or general.
	// The template expects one %s placeholder for the question.
	PromptQueryRouter = "query_router"

	// PromptQueryRewrite turns a colloquial question into a retrieval query.
	// The template expects one %s placeholder for the question.
	PromptQueryRewrite = "query_rewrite"

	// PromptAnswerBasic answers list and general questions.
	// The template expects %s (context) then %s (question).
	PromptAnswerBasic = "answer_basic"

	// PromptAnswerDetail answers detail questions with step-by-step guidance.
	// The template expects %s (context) then %s (question).
	PromptAnswerDetail = "answer_detail"
)

// PromptNames lists every prompt the application loads.
func PromptNames() []string {
	return []string{PromptQueryRouter, PromptQueryRewrite, PromptAnswerBasic, PromptAnswerDetail}
}

// PromptStoreAware is an optional interface for services that can use custom prompts.
// If no store is injected, the service uses its built-in defaults.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
