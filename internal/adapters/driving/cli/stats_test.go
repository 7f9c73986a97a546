package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

func testStats() *domain.CorpusStats {
	return &domain.CorpusStats{
		Name:             "case_reports",
		Kind:             domain.CorpusFlat,
		TotalDocuments:   2,
		TotalFragments:   9,
		Skipped:          1,
		Categories:       map[string]int{"脊柱": 1, "骨折": 1},
		AvgFragmentSize:  412.5,
		IndexedFragments: 9,
	}
}

func TestStatsCmd_Text(t *testing.T) {
	setupTestRuntime(t, &mockEngine{stats: testStats()})

	out, err := execute(t, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Corpus: case_reports (flat)")
	assert.Contains(t, out, "Documents: 2")
	assert.Contains(t, out, "Fragments: 9")
	assert.Contains(t, out, "Average fragment size: 412.5")
	assert.Contains(t, out, "Skipped files: 1")
	// Categories are listed in sorted order.
	assert.Less(t, strings.Index(out, "脊柱: 1"), strings.Index(out, "骨折: 1"))
}

func TestStatsCmd_JSON(t *testing.T) {
	setupTestRuntime(t, &mockEngine{stats: testStats()})

	out, err := execute(t, "stats", "--json")

	require.NoError(t, err)
	var got domain.CorpusStats
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, *testStats(), got)
}
