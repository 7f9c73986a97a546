package domain

import "runtime"

const unknownDescription = "Unknown"

// AIProvider identifies a generation backend provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is any OpenAI-compatible chat completions API
	// (OpenAI, DeepSeek, Moonshot).
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds generation backend configuration.
type LLMSettings struct {
	// Provider is the generation backend provider.
	Provider AIProvider

	// Model is the chat model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (OpenAI-compatible providers).
	APIKey string

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// RequestsPerSecond is the client-side rate limit (0 = unlimited).
	RequestsPerSecond float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings holds query pipeline tuning.
type RetrievalSettings struct {
	// TopK is the number of fragments retrieved per question.
	TopK int

	// ContextMaxChars is the character budget for composed context.
	ContextMaxChars int

	// QueryCorpus names the corpus questions are answered against.
	QueryCorpus string
}

// IngestSettings holds ingestion tuning.
type IngestSettings struct {
	// Workers bounds parallel per-file processing.
	Workers int

	// Extensions lists file extensions to ingest.
	Extensions []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Corpora lists the configured corpus trees.
	Corpora []CorpusConfig

	// IndexDir is where index snapshots are persisted.
	IndexDir string

	// LLM holds generation backend settings.
	LLM LLMSettings

	// Retrieval holds query pipeline settings.
	Retrieval RetrievalSettings

	// Ingest holds ingestion settings.
	Ingest IngestSettings
}

// Corpus returns the configured corpus with the given name.
func (s AppSettings) Corpus(name string) (CorpusConfig, bool) {
	for _, c := range s.Corpora {
		if c.Name == name {
			return c, true
		}
	}
	return CorpusConfig{}, false
}

// Default corpus names.
const (
	CorpusCaseReports = "case_reports"
	CorpusGuidelines  = "guidelines"
)

// DefaultAppSettings returns settings with sensible defaults.
// Corpus roots and the API key are left empty and must be configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Corpora: []CorpusConfig{
			{Name: CorpusCaseReports, Kind: CorpusFlat},
			{Name: CorpusGuidelines, Kind: CorpusHierarchical},
		},
		LLM: LLMSettings{
			Provider:          AIProviderOpenAI,
			Model:             "deepseek-chat",
			BaseURL:           "https://api.deepseek.com/v1",
			Temperature:       0.1,
			MaxTokens:         2048,
			RequestsPerSecond: 2,
		},
		Retrieval: RetrievalSettings{
			TopK:            3,
			ContextMaxChars: 2000,
			QueryCorpus:     CorpusCaseReports,
		},
		Ingest: IngestSettings{
			Workers:    runtime.NumCPU(),
			Extensions: []string{".md"},
		},
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: "deepseek-chat",
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the fragment pipeline for a corpus kind.
// Book corpora additionally get a semantic context per fragment.
func DefaultPipelineConfig(kind CorpusKind) PipelineConfig {
	cfg := PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"max_level": 3,
			},
		},
	}
	if kind == CorpusHierarchical {
		cfg.Processors = append(cfg.Processors, "semantic_context")
	}
	return cfg
}

// AllLLMProviders returns every supported generation backend, default first.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderOpenAI, AIProviderOllama}
}
