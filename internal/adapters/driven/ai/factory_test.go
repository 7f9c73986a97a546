package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantNil   bool
		wantErr   bool
		wantModel string
	}{
		{
			name:    "nil settings returns nil",
			wantNil: true,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.LLMSettings{},
			wantNil:  true,
		},
		{
			name:     "openai without key is not configured",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI},
			wantNil:  true,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				Model:    "qwen2.5",
			},
			wantModel: "qwen2.5",
		},
		{
			name: "openai provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "sk-test",
				Model:    "deepseek-chat",
			},
			wantModel: "deepseek-chat",
		},
		{
			name:     "unknown provider returns nil (not configured)",
			settings: &domain.LLMSettings{Provider: "anthropic", APIKey: "k"},
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.wantModel, svc.ModelName())
			assert.NoError(t, svc.Close())
		})
	}
}

func ollamaServer(t *testing.T, status int) *domain.LLMSettings {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL, Model: "m"}
}

func TestValidateLLMConfig(t *testing.T) {
	assert.NoError(t, ValidateLLMConfig(context.Background(), nil))
	assert.NoError(t, ValidateLLMConfig(context.Background(), ollamaServer(t, http.StatusOK)))
	assert.Error(t, ValidateLLMConfig(context.Background(), ollamaServer(t, http.StatusInternalServerError)))
}

func TestCreateAndValidateLLMService(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		svc, err := CreateAndValidateLLMService(context.Background(), ollamaServer(t, http.StatusOK))
		require.NoError(t, err)
		require.NotNil(t, svc)
		assert.NoError(t, svc.Close())
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := CreateAndValidateLLMService(context.Background(), ollamaServer(t, http.StatusBadGateway))
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("not configured", func(t *testing.T) {
		svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{})
		require.NoError(t, err)
		assert.Nil(t, svc)
	})
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	validator := NewConfigValidator()
	require.NotNil(t, validator)

	assert.NoError(t, validator.ValidateLLM(context.Background(), nil))
	assert.NoError(t, validator.ValidateLLM(context.Background(), ollamaServer(t, http.StatusOK)))
}
