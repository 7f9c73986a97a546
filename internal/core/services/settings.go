package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
	"github.com/custodia-labs/medrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyCorpusNames      = "corpus.names"
	keyQueryCorpus      = "query.corpus"
	keyIndexDir         = "index.dir"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMTemperature   = "llm.temperature"
	keyLLMMaxTokens     = "llm.max_tokens"
	keyLLMRateLimit     = "llm.requests_per_second"
	keyRetrievalTopK    = "retrieval.top_k"
	keyContextMaxChars  = "context.max_chars"
	keyIngestWorkers    = "ingest.workers"
	keyIngestExtensions = "ingest.extensions"
	keyPipelinePrefix   = "pipeline."
)

// APIKeyEnvVars are consulted, in order, when no API key is configured.
//
//nolint:gosec // G101: environment variable names, not credentials.
var APIKeyEnvVars = []string{"MEDRAG_LLM_API_KEY", "DEEPSEEK_API_KEY", "OPENAI_API_KEY"}

func corpusKey(name, field string) string {
	return "corpus." + name + "." + field
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Corpora:  s.getCorpora(defaults.Corpora),
		IndexDir: s.getString(keyIndexDir, defaults.IndexDir),
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.getAPIKey(),
			Temperature:       s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			MaxTokens:         s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			RequestsPerSecond: s.getFloat(keyLLMRateLimit, defaults.LLM.RequestsPerSecond),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:            s.getInt(keyRetrievalTopK, defaults.Retrieval.TopK),
			ContextMaxChars: s.getInt(keyContextMaxChars, defaults.Retrieval.ContextMaxChars),
			QueryCorpus:     s.getString(keyQueryCorpus, defaults.Retrieval.QueryCorpus),
		},
		Ingest: domain.IngestSettings{
			Workers:    s.getInt(keyIngestWorkers, defaults.Ingest.Workers),
			Extensions: s.getStringSlice(keyIngestExtensions, defaults.Ingest.Extensions),
		},
	}

	// The base URL is only defaulted for the provider it belongs to.
	if settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultBaseURL(settings.LLM.Provider)
	}
	if settings.IndexDir == "" {
		settings.IndexDir = defaultIndexDir()
	}
	for i := range settings.Corpora {
		settings.Corpora[i].Extensions = settings.Ingest.Extensions
	}

	return settings, nil
}

// Save persists application settings. Credentials that came from the
// environment are never written to the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	names := make([]string, 0, len(settings.Corpora))
	for _, c := range settings.Corpora {
		names = append(names, c.Name)
		if err := s.configStore.Set(corpusKey(c.Name, "path"), c.Root); err != nil {
			return fmt.Errorf("save corpus %s path: %w", c.Name, err)
		}
		if err := s.configStore.Set(corpusKey(c.Name, "kind"), c.Kind.String()); err != nil {
			return fmt.Errorf("save corpus %s kind: %w", c.Name, err)
		}
	}

	values := []struct {
		key   string
		value any
	}{
		{keyCorpusNames, names},
		{keyIndexDir, settings.IndexDir},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyLLMRateLimit, settings.LLM.RequestsPerSecond},
		{keyRetrievalTopK, settings.Retrieval.TopK},
		{keyContextMaxChars, settings.Retrieval.ContextMaxChars},
		{keyQueryCorpus, settings.Retrieval.QueryCorpus},
		{keyIngestWorkers, settings.Ingest.Workers},
		{keyIngestExtensions, settings.Ingest.Extensions},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.envAPIKey() {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// SetLLMProvider configures the generation backend.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	// Validate API key if required
	if apiKey == "" {
		apiKey = settings.LLM.APIKey
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrMissingCredential, provider)
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if baseURL == "" {
		baseURL = defaultBaseURL(provider)
	}
	settings.LLM.BaseURL = baseURL
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetCorpusRoot points a named corpus at a directory. Unknown names are
// added as flat corpora.
func (s *SettingsService) SetCorpusRoot(name, root string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty corpus name", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	found := false
	for i := range settings.Corpora {
		if settings.Corpora[i].Name == name {
			settings.Corpora[i].Root = root
			found = true
		}
	}
	if !found {
		settings.Corpora = append(settings.Corpora, domain.CorpusConfig{
			Name: name,
			Kind: domain.CorpusFlat,
			Root: root,
		})
	}

	return s.Save(settings)
}

// Validate checks that the query corpus exists on disk and that the
// generation backend has what it needs. Errors wrap domain.ErrConfiguration.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error

	corpus, ok := settings.Corpus(settings.Retrieval.QueryCorpus)
	switch {
	case !ok:
		errs = append(errs, fmt.Errorf("query corpus %q is not configured", settings.Retrieval.QueryCorpus))
	case !corpus.Kind.IsValid():
		errs = append(errs, fmt.Errorf("corpus %q has unknown kind %q", corpus.Name, corpus.Kind))
	case corpus.Root == "":
		errs = append(errs, fmt.Errorf("%w: corpus %q has no path (set %s)",
			domain.ErrMissingCorpusRoot, corpus.Name, corpusKey(corpus.Name, "path")))
	default:
		if info, err := os.Stat(corpus.Root); err != nil || !info.IsDir() {
			errs = append(errs, fmt.Errorf("%w: %s", domain.ErrMissingCorpusRoot, corpus.Root))
		}
	}

	if !settings.LLM.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("invalid LLM provider: %s", settings.LLM.Provider))
	} else if !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: %s needs an API key (set %s)",
			domain.ErrMissingCredential, settings.LLM.Provider, APIKeyEnvVars[0]))
	}

	if settings.Retrieval.TopK <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", keyRetrievalTopK))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(ctx, &settings.LLM)
}

// GetPipelineConfig returns the fragment pipeline configuration for a
// corpus kind. Returns the default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig(kind domain.CorpusKind) domain.PipelineConfig {
	defaults := domain.DefaultPipelineConfig(kind)
	prefix := keyPipelinePrefix + kind.String() + "."

	if processors := s.configStore.GetStringSlice(prefix + "processors"); len(processors) > 0 {
		defaults.Processors = processors
	}

	for _, name := range defaults.Processors {
		cfg := s.loadProcessorConfig(prefix + name + ".")
		if len(cfg) == 0 {
			continue
		}
		if defaults.ProcessorConfigs == nil {
			defaults.ProcessorConfigs = make(map[string]map[string]any)
		}
		existing := defaults.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for k, v := range cfg {
			existing[k] = v
		}
		defaults.ProcessorConfigs[name] = existing
	}

	return defaults
}

// loadProcessorConfig loads config keys with a given prefix into a map.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)

	knownKeys := []string{"max_level"}
	for _, key := range knownKeys {
		if val, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = val
		}
	}

	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getCorpora(defaults []domain.CorpusConfig) []domain.CorpusConfig {
	names := s.configStore.GetStringSlice(keyCorpusNames)
	known := make(map[string]domain.CorpusConfig, len(defaults))
	for _, c := range defaults {
		known[c.Name] = c
	}
	if len(names) == 0 {
		for _, c := range defaults {
			names = append(names, c.Name)
		}
	}

	corpora := make([]domain.CorpusConfig, 0, len(names))
	for _, name := range names {
		c, ok := known[name]
		if !ok {
			c = domain.CorpusConfig{Name: name, Kind: domain.CorpusFlat}
		}
		if kind := domain.CorpusKind(s.configStore.GetString(corpusKey(name, "kind"))); kind.IsValid() {
			c.Kind = kind
		}
		c.Root = expandHome(s.getString(corpusKey(name, "path"), c.Root))
		corpora = append(corpora, c)
	}
	return corpora
}

func (s *SettingsService) getAPIKey() string {
	if key := s.configStore.GetString(keyLLMAPIKey); key != "" {
		return key
	}
	return s.envAPIKey()
}

func (s *SettingsService) envAPIKey() string {
	for _, name := range APIKeyEnvVars {
		if v := strings.TrimSpace(s.getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func defaultBaseURL(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOllama:
		return "http://localhost:11434"
	case domain.AIProviderOpenAI:
		return domain.DefaultAppSettings().LLM.BaseURL
	default:
		return ""
	}
}

func defaultIndexDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".medrag", "index")
	}
	return filepath.Join(home, ".medrag", "index")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
