package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driving"
)

// mockEngine is a mock implementation of driving.KnowledgeBaseService.
type mockEngine struct {
	answer     *domain.Answer
	askErr     error
	asked      []string
	modes      []domain.DeliveryMode
	browse     []domain.RankedParent
	browseErr  error
	browseArgs []string
	docs       map[string]*domain.ParentDocument
	categories []string
	byCategory map[string][]domain.ParentDocument
	stats      *domain.CorpusStats
	statsErr   error
}

var _ driving.KnowledgeBaseService = (*mockEngine)(nil)

func (m *mockEngine) Ask(_ context.Context, question string, mode domain.DeliveryMode) (*domain.Answer, error) {
	m.asked = append(m.asked, question)
	m.modes = append(m.modes, mode)
	return m.answer, m.askErr
}

func (m *mockEngine) ExtractFilters(question string) domain.Filters {
	for _, c := range m.categories {
		if c != "" && strings.Contains(question, c) {
			return domain.Filters{Category: c}
		}
	}
	return domain.Filters{}
}

func (m *mockEngine) BrowseCategory(_ context.Context, category, query string) ([]domain.RankedParent, error) {
	m.browseArgs = []string{category, query}
	return m.browse, m.browseErr
}

func (m *mockEngine) DocumentsByCategory(category string) ([]domain.ParentDocument, error) {
	return m.byCategory[category], nil
}

func (m *mockEngine) Document(id string) (*domain.ParentDocument, error) {
	if doc, ok := m.docs[id]; ok {
		return doc, nil
	}
	return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
}

func (m *mockEngine) Stats() (*domain.CorpusStats, error) {
	return m.stats, m.statsErr
}

func (m *mockEngine) ExportMetadata() ([]domain.MetadataRecord, error) { return nil, nil }

func (m *mockEngine) Categories() []string { return m.categories }

func (m *mockEngine) Build(context.Context, domain.CorpusConfig, bool) (*domain.BuildReport, error) {
	return &domain.BuildReport{}, nil
}

func (m *mockEngine) Ready() bool { return true }

func fractureDoc() *domain.ParentDocument {
	return &domain.ParentDocument{
		ID:       "d41d8cd9",
		RelPath:  "骨折/桡骨远端骨折/case1.md",
		Content:  "# 治疗\n手法复位",
		Metadata: domain.Metadata{Category: "骨折", Topic: "桡骨远端骨折"},
	}
}
