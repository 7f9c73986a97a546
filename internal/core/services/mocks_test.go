package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLLM implements driven.GenerationBackend. Complete returns the
// scripted responses in order and records every prompt.
type mockLLM struct {
	mu          sync.Mutex
	responses   []string
	completeErr error
	streamParts []string
	streamErr   error
	pingErr     error
	prompts     []string
}

func (m *mockLLM) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.completeErr != nil {
		return "", m.completeErr
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	r := m.responses[0]
	m.responses = m.responses[1:]
	return r, nil
}

func (m *mockLLM) Stream(_ context.Context, prompt string) (domain.TextStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	return domain.NewSliceStream(m.streamParts...), nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return m.pingErr }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// mockHandle implements driven.IndexHandle. Search returns the first topK
// fragments; FilteredSearch applies the filters first.
type mockHandle struct {
	fragments   []domain.ChildFragment
	noHits      bool
	searchErr   error
	lastQuery   string
	lastFilters domain.Filters
}

func (h *mockHandle) Search(_ context.Context, query string, topK int) ([]domain.ChildFragment, error) {
	h.lastQuery = query
	if h.searchErr != nil {
		return nil, h.searchErr
	}
	if h.noHits {
		return nil, nil
	}
	return head(h.fragments, topK), nil
}

func (h *mockHandle) FilteredSearch(
	_ context.Context, query string, filters domain.Filters, topK int,
) ([]domain.ChildFragment, error) {
	h.lastQuery = query
	h.lastFilters = filters
	if h.searchErr != nil {
		return nil, h.searchErr
	}
	if h.noHits {
		return nil, nil
	}
	var matched []domain.ChildFragment
	for _, f := range h.fragments {
		if filters.Matches(f.Metadata) {
			matched = append(matched, f)
		}
	}
	return head(matched, topK), nil
}

func (h *mockHandle) Fragments() []domain.ChildFragment {
	return h.fragments
}

func head(frags []domain.ChildFragment, n int) []domain.ChildFragment {
	if n < len(frags) {
		return frags[:n]
	}
	return frags
}

// mockIndex implements driven.SimilarityIndex.
type mockIndex struct {
	saved    *mockHandle
	loadErr  error
	buildErr error
	saveErr  error
	noHits   bool

	builds int
	loads  int
	saves  int
	handle *mockHandle
}

func (m *mockIndex) Build(_ context.Context, fragments []domain.ChildFragment) (driven.IndexHandle, error) {
	m.builds++
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	m.handle = &mockHandle{fragments: fragments, noHits: m.noHits}
	return m.handle, nil
}

func (m *mockIndex) Load(_ context.Context) (driven.IndexHandle, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.saved == nil {
		return nil, domain.ErrNotFound
	}
	m.handle = m.saved
	return m.saved, nil
}

func (m *mockIndex) Save(_ context.Context, handle driven.IndexHandle) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = handle.(*mockHandle)
	return nil
}

// mockPromptStore implements driven.PromptStore over a map.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// markerPrompts tags each template so tests can tell pipeline stages apart.
func markerPrompts() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptQueryRouter:  "ROUTE:%s",
		driven.PromptQueryRewrite: "REWRITE:%s",
		driven.PromptAnswerBasic:  "BASIC:%s|%s",
		driven.PromptAnswerDetail: "DETAIL:%s|%s",
	}}
}

var _ driven.ConfigStore = (*mockConfigStore)(nil)

// mockConfigStore implements driven.ConfigStore over a map. Values keep
// the types a TOML decode would produce: int64, float64, []any.
type mockConfigStore struct {
	values map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	switch v := m.values[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error  { return nil }
func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return "" }

// mockPipeline implements driven.PostProcessorPipeline.
type mockPipeline struct {
	fragments []domain.ChildFragment
	err       error
}

func (m *mockPipeline) Process(_ context.Context, doc *domain.ParentDocument) ([]domain.ChildFragment, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.ChildFragment, len(m.fragments))
	for i, f := range m.fragments {
		f.ParentID = doc.ID
		f.Metadata = doc.Metadata
		out[i] = f
	}
	return out, nil
}

// --- Fixtures ---

// writeTree creates files under a temporary root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

// parent builds a flat-corpus parent document.
func parent(t *testing.T, relPath, category, topic, content string) domain.ParentDocument {
	t.Helper()
	doc, err := domain.NewParentDocument(domain.CorpusFlat, relPath, relPath, content,
		domain.Metadata{Category: category, Topic: topic})
	require.NoError(t, err)
	return *doc
}
