package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

func TestFilterExtractor_Extract(t *testing.T) {
	fe := NewFilterExtractor(domain.DefaultCategoryTable())

	tests := []struct {
		name     string
		question string
		want     domain.Filters
	}{
		{"single label", "骨折后多久可以下床", domain.Filters{Category: "骨折"}},
		{"first label in table order wins", "感染和骨折同时出现怎么办", domain.Filters{Category: "骨折"}},
		{"no label", "腰疼怎么办", domain.Filters{}},
		{"keyword is not a label", "fracture treatment", domain.Filters{}},
		{"empty", "", domain.Filters{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fe.Extract(tt.question))
		})
	}
}

func rankedWithContent(t *testing.T, n, size int) []domain.RankedParent {
	t.Helper()
	out := make([]domain.RankedParent, n)
	for i := range out {
		doc := parent(t, "fracture/"+string(rune('a'+i))+"/doc.md", "骨折", "topic", "")
		doc.Content = strings.Repeat("字", size)
		out[i] = domain.RankedParent{Document: doc, Relevance: 1}
	}
	return out
}

func TestContextComposer_GreedyBudget(t *testing.T) {
	// Three ~900 character documents under a 2000 budget fit exactly two.
	parents := rankedWithContent(t, 3, 900)
	out := NewContextComposer(2000).Compose(parents)

	assert.Equal(t, 2, strings.Count(out, "【治疗方案"))
	assert.Contains(t, out, "【治疗方案 1】")
	assert.Contains(t, out, "【治疗方案 2】")
	assert.NotContains(t, out, "【治疗方案 3】")
}

func TestContextComposer_StopsAtFirstOverflow(t *testing.T) {
	parents := append(rankedWithContent(t, 1, 1900), rankedWithContent(t, 1, 10)...)
	out := NewContextComposer(1000).Compose(parents)

	// The first block does not fit, so nothing after it is considered.
	assert.Equal(t, 0, strings.Count(out, "【治疗方案"))
	assert.True(t, strings.HasPrefix(out, "\n"+strings.Repeat("=", 50)))
}

func TestContextComposer_Empty(t *testing.T) {
	assert.Equal(t, NoContextMessage, NewContextComposer(0).Compose(nil))
}

func TestContextComposer_DefaultBudget(t *testing.T) {
	assert.Equal(t, DefaultContextMaxChars, NewContextComposer(-1).maxChars)
}

func TestContextComposer_BudgetCountsCharacters(t *testing.T) {
	parents := rankedWithContent(t, 1, 100)
	block := Block(1, &parents[0].Document)
	n := utf8.RuneCountInString(block)

	assert.Contains(t, NewContextComposer(n).Compose(parents), "【治疗方案 1】")
	assert.NotContains(t, NewContextComposer(n-1).Compose(parents), "【治疗方案 1】")
}

func TestBlock(t *testing.T) {
	t.Run("flat", func(t *testing.T) {
		doc := parent(t, "fracture/compression/a.md", "骨折", "compression", "卧床休息")
		assert.Equal(t, "【治疗方案 2】 compression | 分类: 骨折\n卧床休息\n", Block(2, &doc))
	})

	t.Run("hierarchical uses hierarchy string", func(t *testing.T) {
		doc := domain.ParentDocument{
			Content: "MRI",
			Metadata: domain.Metadata{
				BookName:  "Adult Isthmic Spondylolisthesis",
				Hierarchy: "Adult Isthmic Spondylolisthesis > B. Diagnosis Imaging > Part 2",
			},
		}
		assert.Equal(t,
			"【治疗方案 1】 Adult Isthmic Spondylolisthesis > B. Diagnosis Imaging > Part 2\nMRI\n",
			Block(1, &doc))
	})

	t.Run("no labels", func(t *testing.T) {
		doc := domain.ParentDocument{Content: "x"}
		assert.Equal(t, "【治疗方案 1】\nx\n", Block(1, &doc))
	})
}

func TestCompose_JoinsBlocksAfterSeparator(t *testing.T) {
	a := parent(t, "fracture/a/a.md", "骨折", "a", "A")
	b := parent(t, "fracture/b/b.md", "骨折", "b", "B")

	out := NewContextComposer(0).Compose([]domain.RankedParent{{Document: a}, {Document: b}})

	want := "\n" + strings.Repeat("=", 50) + Block(1, &a) + "\n" + Block(2, &b)
	require.Equal(t, want, out)
}
