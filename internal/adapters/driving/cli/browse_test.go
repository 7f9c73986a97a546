package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowseCmd_RequiresCategory(t *testing.T) {
	rt := setupTestRuntime(t, &mockEngine{})

	_, err := execute(t, "browse")

	assert.EqualError(t, err, "category is required")
	assert.Empty(t, rt.opened)
}

func TestBrowseCmd_ListsRankedDocuments(t *testing.T) {
	setupTestRuntime(t, &mockEngine{docs: fractureDocs()})

	out, err := execute(t, "browse", "骨折", "治疗")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents in 骨折:")
	assert.Contains(t, out, "[1] 桡骨远端骨折 (1)")
	assert.Contains(t, out, "骨折/桡骨远端骨折/case1.md")
	assert.NotContains(t, out, "腰椎间盘突出")
}

func TestBrowseCmd_EmptyCategory(t *testing.T) {
	setupTestRuntime(t, &mockEngine{docs: fractureDocs()})

	out, err := execute(t, "browse", "肿瘤")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents found in category: 肿瘤")
}

func TestBrowseCmd_ListCategories(t *testing.T) {
	setupTestRuntime(t, &mockEngine{docs: fractureDocs()})

	out, err := execute(t, "browse", "--list")

	require.NoError(t, err)
	assert.Contains(t, out, "骨折 (1)")
	assert.Contains(t, out, "脊柱 (1)")
}
