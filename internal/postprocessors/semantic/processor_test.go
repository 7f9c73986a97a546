package semantic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

func bookDoc() *domain.ParentDocument {
	return &domain.ParentDocument{
		ID:   "p1",
		Kind: domain.CorpusHierarchical,
		Metadata: domain.Metadata{
			BookName:     "Adult Isthmic Spondylolisthesis",
			ChapterIndex: "B",
			ChapterName:  "Diagnosis Imaging",
			PartIndex:    2,
		},
	}
}

func TestProcessor_Name(t *testing.T) {
	assert.Equal(t, "semantic_context", New().Name())
}

func TestProcessor_Process_Hierarchical(t *testing.T) {
	fragments := []domain.ChildFragment{
		{ID: "a", Headings: []string{"Radiographs", "Standing Views"}},
		{ID: "b"},
	}

	got, err := New().Process(context.Background(), bookDoc(), fragments)
	require.NoError(t, err)

	assert.Equal(t, "Adult Isthmic Spondylolisthesis > Diagnosis Imaging > Radiographs > Standing Views", got[0].SemanticContext)
	assert.Equal(t, "Adult Isthmic Spondylolisthesis > Diagnosis Imaging", got[1].SemanticContext)
}

func TestProcessor_Process_FlatPassthrough(t *testing.T) {
	doc := &domain.ParentDocument{ID: "p", Kind: domain.CorpusFlat}
	fragments := []domain.ChildFragment{{ID: "a", Headings: []string{"H"}}}

	got, err := New().Process(context.Background(), doc, fragments)
	require.NoError(t, err)
	assert.Empty(t, got[0].SemanticContext)
}

func TestContext_SkipsMissingParts(t *testing.T) {
	tests := []struct {
		name     string
		meta     domain.Metadata
		headings []string
		want     string
	}{
		{name: "all present", meta: domain.Metadata{BookName: "B", ChapterName: "C"}, headings: []string{"H1", "H2", "H3"}, want: "B > C > H1 > H2 > H3"},
		{name: "no headings", meta: domain.Metadata{BookName: "B", ChapterName: "C"}, want: "B > C"},
		{name: "blank chapter", meta: domain.Metadata{BookName: "B", ChapterName: " "}, headings: []string{"H"}, want: "B > H"},
		{name: "nothing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Context(tt.meta, tt.headings))
		})
	}
}
