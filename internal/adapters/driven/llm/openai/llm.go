// Package openai provides a generation backend for OpenAI-compatible chat
// completion APIs (OpenAI, DeepSeek, Moonshot).
package openai

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
	DefaultBaseURL    = "https://api.deepseek.com/v1"
	DefaultLLMModel   = "deepseek-chat"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the OpenAI-compatible service.
type LLMConfig struct {
	// APIKey is the API key (required).
	APIKey string

	// BaseURL is the API base URL (default: DeepSeek).
	BaseURL string

	// Model is the chat model to use (default: deepseek-chat).
	Model string

	// Timeout bounds blocking requests (default: 120s). Streams are bounded
	// by their context and Close instead.
	Timeout time.Duration

	// Options are the generation parameters sent with every request.
	Options driven.GenerateOptions

	// RequestsPerSecond is the client-side rate limit (0 = unlimited).
	RequestsPerSecond float64
}

// LLMService provides completions using an OpenAI-compatible API.
type LLMService struct {
	client  *http.Client
	stream  *http.Client
	baseURL string
	apiKey  string
	model   string
	opts    driven.GenerateOptions
	limiter *llm.RateLimiter
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature"`
	Stream      bool                `json:"stream,omitempty"`
}

// chatCompletionMsg is the chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// apiError is the error object returned in failed responses.
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// chatCompletionResponse is the /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

// chatCompletionChunk is one server-sent event of a streamed completion.
type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

// NewLLMService creates a new OpenAI-compatible service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w: API key is required", domain.ErrMissingCredential)
	}
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
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		opts:    cfg.Options,
		limiter: llm.NewRateLimiter(cfg.RequestsPerSecond, 1),
	}, nil
}

// Complete returns the full completion for a single-turn prompt.
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.send(ctx, s.client, prompt, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openai: no response choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// Stream starts a streamed completion. The returned stream reads one
// server-sent event per Next; closing it aborts the request.
func (s *LLMService) Stream(ctx context.Context, prompt string) (domain.TextStream, error) {
	ctx, cancel := context.WithCancel(ctx)
	resp, err := s.send(ctx, s.stream, prompt, true)
	if err != nil {
		cancel()
		return nil, err
	}
	return llm.NewLineStream(resp.Body, cancel, decodeEvent), nil
}

// decodeEvent extracts the content delta from one SSE line.
func decodeEvent(line []byte) (string, error) {
	data, ok := bytes.CutPrefix(line, []byte("data:"))
	if !ok {
		return "", nil
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", nil
	}
	if string(data) == "[DONE]" {
		return "", llm.ErrStreamDone
	}

	var chunk chatCompletionChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return "", fmt.Errorf("decode stream event: %w", err)
	}
	if chunk.Error != nil {
		return "", fmt.Errorf("openai error: %s", chunk.Error.Message)
	}
	if len(chunk.Choices) == 0 {
		return "", nil
	}
	return chunk.Choices[0].Delta.Content, nil
}

// send posts a chat completion request and checks the status. On success
// the caller owns the response body.
func (s *LLMService) send(ctx context.Context, client *http.Client, prompt string, stream bool) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	reqBody := chatCompletionRequest{
		Model:       s.model,
		Messages:    []chatCompletionMsg{{Role: "user", Content: prompt}},
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
		Stream:      stream,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	logger.Debug("openai: POST %s/chat/completions (model %s, stream %t)", s.baseURL, s.model, stream)
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
			return nil, fmt.Errorf("openai error (status %d): failed to read response", resp.StatusCode)
		}
		var errResp chatCompletionResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			return nil, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return resp, nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("openai: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases idle connections.
func (s *LLMService) Close() error {
	s.client.CloseIdleConnections()
	s.stream.CloseIdleConnections()
	return nil
}
