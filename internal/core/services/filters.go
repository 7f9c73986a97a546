package services

import (
	"strings"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

// FilterExtractor derives retrieval constraints from literal category
// labels in a question.
type FilterExtractor struct {
	labels []string
}

// NewFilterExtractor creates an extractor over the table's labels.
func NewFilterExtractor(table domain.CategoryTable) *FilterExtractor {
	return &FilterExtractor{labels: table.Labels()}
}

// Extract returns a category filter for the first label contained in the
// question, or empty filters. Matching is plain substring containment.
func (f *FilterExtractor) Extract(question string) domain.Filters {
	for _, label := range f.labels {
		if strings.Contains(question, label) {
			return domain.Filters{Category: label}
		}
	}
	return domain.Filters{}
}
