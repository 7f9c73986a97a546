// Package ollama provides a generation backend using a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/medrag/internal/adapters/driven/llm"
	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
	"github.com/custodia-labs/medrag/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.GenerationBackend = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the Ollama service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// Timeout bounds blocking requests (default: 120s).
	Timeout time.Duration

	// Options are the generation parameters sent with every request.
	Options driven.GenerateOptions

	// RequestsPerSecond is the client-side rate limit (0 = unlimited).
	RequestsPerSecond float64
}

// LLMService provides completions using Ollama.
type LLMService struct {
	client  *http.Client
	stream  *http.Client
	baseURL string
	model   string
	opts    driven.GenerateOptions
	limiter *llm.RateLimiter
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

// generateResponse is one /api/generate response object. Streaming
// responses send one per line.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewLLMService creates a new Ollama service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		stream:  &http.Client{},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		opts:    cfg.Options,
		limiter: llm.NewRateLimiter(cfg.RequestsPerSecond, 1),
	}
}

// Complete returns the full completion for a prompt.
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.generate(ctx, s.client, prompt, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if genResp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", genResp.Error)
	}

	return genResp.Response, nil
}

// Stream starts a streamed completion. Each Next reads one JSON line.
func (s *LLMService) Stream(ctx context.Context, prompt string) (domain.TextStream, error) {
	ctx, cancel := context.WithCancel(ctx)
	resp, err := s.generate(ctx, s.stream, prompt, true)
	if err != nil {
		cancel()
		return nil, err
	}
	return llm.NewLineStream(resp.Body, cancel, decodeLine), nil
}

// decodeLine extracts the text of one streamed response object.
func decodeLine(line []byte) (string, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return "", nil
	}

	var chunk generateResponse
	if err := json.Unmarshal(line, &chunk); err != nil {
		return "", fmt.Errorf("decode stream line: %w", err)
	}
	if chunk.Error != "" {
		return "", fmt.Errorf("ollama error: %s", chunk.Error)
	}
	if chunk.Done && chunk.Response == "" {
		return "", llm.ErrStreamDone
	}
	return chunk.Response, nil
}

// generate posts to /api/generate and checks the status. On success the
// caller owns the response body.
func (s *LLMService) generate(ctx context.Context, client *http.Client, prompt string, stream bool) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	reqBody := generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: stream,
		Options: &options{
			NumPredict:  s.opts.MaxTokens,
			Temperature: s.opts.Temperature,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("ollama: POST %s/api/generate (model %s, stream %t)", s.baseURL, s.model, stream)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			s.limiter.RecordRateLimitError(resp)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return resp, nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases idle connections.
func (s *LLMService) Close() error {
	s.client.CloseIdleConnections()
	s.stream.CloseIdleConnections()
	return nil
}
