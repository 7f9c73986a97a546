package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
)

var caseReports = map[string]string{
	"fracture/compression_fracture/treatment.md":  "# 治疗\n卧床休息\n## 手术\n椎体成形术\n",
	"hemangioma/vertebral_hemangioma/overview.md": "# 血管瘤\n定期观察",
	"infection/spinal_tb/overview.md":             "# 概述\n脊柱结核需要抗结核治疗",
}

func newTestEngine(t *testing.T, llm driven.GenerationBackend, index *mockIndex) (*Engine, domain.CorpusConfig) {
	t.Helper()
	e := NewEngine(NewIngestService(defaultComponents(t), nil, 2), index, llm, EngineConfig{})
	e.SetPromptStore(markerPrompts())
	return e, flatConfig(writeTree(t, caseReports))
}

func builtEngine(t *testing.T, llm driven.GenerationBackend, index *mockIndex) *Engine {
	t.Helper()
	e, cfg := newTestEngine(t, llm, index)
	_, err := e.Build(context.Background(), cfg, false)
	require.NoError(t, err)
	return e
}

func TestEngine_BuildSavesNewIndex(t *testing.T) {
	index := &mockIndex{}
	e, cfg := newTestEngine(t, &mockLLM{}, index)
	assert.False(t, e.Ready())

	report, err := e.Build(context.Background(), cfg, false)
	require.NoError(t, err)

	assert.True(t, e.Ready())
	assert.False(t, report.Loaded)
	assert.Equal(t, 4, report.IndexedFragments)
	assert.Len(t, report.Corpus.Parents, 3)
	assert.Equal(t, 1, index.loads)
	assert.Equal(t, 1, index.builds)
	assert.Equal(t, 1, index.saves)
}

func TestEngine_BuildReusesSavedIndex(t *testing.T) {
	index := &mockIndex{}
	e, cfg := newTestEngine(t, &mockLLM{}, index)

	_, err := e.Build(context.Background(), cfg, false)
	require.NoError(t, err)

	report, err := e.Build(context.Background(), cfg, false)
	require.NoError(t, err)
	assert.True(t, report.Loaded)
	assert.Equal(t, 1, index.builds)

	// Fragments of the snapshot resolve through the fresh corpus.
	saved := index.saved.Fragments()
	ranked, err := e.ResolveParents(saved[:1])
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, saved[0].ParentID, ranked[0].Document.ID)
}

func TestEngine_Rebuild(t *testing.T) {
	index := &mockIndex{}
	e, cfg := newTestEngine(t, &mockLLM{}, index)

	_, err := e.Build(context.Background(), cfg, false)
	require.NoError(t, err)
	report, err := e.Build(context.Background(), cfg, true)
	require.NoError(t, err)

	assert.False(t, report.Loaded)
	assert.Equal(t, 1, index.loads)
	assert.Equal(t, 2, index.builds)
}

func TestEngine_BuildErrors(t *testing.T) {
	t.Run("no index", func(t *testing.T) {
		e := NewEngine(NewIngestService(defaultComponents(t), nil, 1), nil, &mockLLM{}, EngineConfig{})
		_, err := e.Build(context.Background(), flatConfig(t.TempDir()), false)
		assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	})

	t.Run("missing root", func(t *testing.T) {
		e, _ := newTestEngine(t, &mockLLM{}, &mockIndex{})
		_, err := e.Build(context.Background(), flatConfig("/nonexistent/medrag"), false)
		assert.ErrorIs(t, err, domain.ErrMissingCorpusRoot)
		assert.False(t, e.Ready())
	})

	t.Run("load failure", func(t *testing.T) {
		loadErr := errors.New("corrupt snapshot")
		e, cfg := newTestEngine(t, &mockLLM{}, &mockIndex{loadErr: loadErr})
		_, err := e.Build(context.Background(), cfg, false)
		assert.ErrorIs(t, err, loadErr)
	})

	t.Run("save failure", func(t *testing.T) {
		saveErr := errors.New("disk full")
		e, cfg := newTestEngine(t, &mockLLM{}, &mockIndex{saveErr: saveErr})
		_, err := e.Build(context.Background(), cfg, false)
		assert.ErrorIs(t, err, saveErr)
		assert.False(t, e.Ready())
	})
}

func TestEngine_AskDetail(t *testing.T) {
	llm := &mockLLM{responses: []string{"detail", "腰椎压缩性骨折 治疗", "先卧床休息"}}
	index := &mockIndex{}
	e := builtEngine(t, llm, index)

	answer, err := e.Ask(context.Background(), "  腰椎骨折怎么治疗 ", domain.DeliveryBlocking)
	require.NoError(t, err)

	assert.Equal(t, "先卧床休息", answer.Text)
	assert.False(t, answer.NotFound)
	assert.Nil(t, answer.Stream)

	q := answer.Query
	assert.Equal(t, domain.RouteDetail, q.Route)
	assert.Equal(t, "腰椎压缩性骨折 治疗", q.Rewritten)
	assert.Equal(t, domain.Filters{Category: "骨折"}, q.Filters)
	assert.Equal(t, "腰椎压缩性骨折 治疗", index.handle.lastQuery)
	assert.Equal(t, "骨折", index.handle.lastFilters.Category)

	require.Len(t, q.Parents, 1)
	assert.Equal(t, 2, q.Parents[0].Relevance)
	assert.Equal(t, "compression_fracture", q.Parents[0].Document.Metadata.Topic)

	calls := llm.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "ROUTE:腰椎骨折怎么治疗", calls[0])
	assert.Equal(t, "REWRITE:腰椎骨折怎么治疗", calls[1])
	// The answer prompt gets the original question, not the rewrite.
	assert.True(t, strings.HasPrefix(calls[2], "DETAIL:"+q.Context))
	assert.True(t, strings.HasSuffix(calls[2], "|腰椎骨折怎么治疗"))
}

var guidelines = map[string]string{
	"SpineBook/A_Fracture_Care/part1.md": "# 骨折护理\n骨折后需要制动和固定",
	"SpineBook/B_Infection/part1.md":     "# 结核\n抗结核治疗",
}

func TestEngine_AskAcrossCorpusKinds(t *testing.T) {
	tests := []struct {
		name        string
		cfg         func(t *testing.T) domain.CorpusConfig
		question    string
		wantFilters domain.Filters
		wantSource  string
	}{
		{
			name:        "flat with label",
			cfg:         func(t *testing.T) domain.CorpusConfig { return flatConfig(writeTree(t, caseReports)) },
			question:    "骨折怎么治疗",
			wantFilters: domain.Filters{Category: "骨折"},
			wantSource:  "fracture/compression_fracture/treatment.md",
		},
		{
			name:       "flat without label",
			cfg:        func(t *testing.T) domain.CorpusConfig { return flatConfig(writeTree(t, caseReports)) },
			question:   "卧床休息多久",
			wantSource: "fracture/compression_fracture/treatment.md",
		},
		{
			name:       "hierarchical with label",
			cfg:        hierarchicalConfig,
			question:   "骨折怎么治疗",
			wantSource: "SpineBook/A_Fracture_Care/part1.md",
		},
		{
			name:       "hierarchical without label",
			cfg:        hierarchicalConfig,
			question:   "术后如何护理",
			wantSource: "SpineBook/A_Fracture_Care/part1.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLM{responses: []string{"detail", tt.question, "答案"}}
			e := NewEngine(NewIngestService(defaultComponents(t), nil, 2), &mockIndex{}, llm, EngineConfig{})
			e.SetPromptStore(markerPrompts())
			_, err := e.Build(context.Background(), tt.cfg(t), false)
			require.NoError(t, err)

			answer, err := e.Ask(context.Background(), tt.question, domain.DeliveryBlocking)
			require.NoError(t, err)

			assert.False(t, answer.NotFound)
			assert.Equal(t, "答案", answer.Text)
			assert.Equal(t, tt.wantFilters, answer.Query.Filters)
			assert.Equal(t, tt.wantFilters, e.ExtractFilters(tt.question))

			var sources []string
			for _, p := range answer.Query.Parents {
				sources = append(sources, p.Document.RelPath)
			}
			assert.Contains(t, sources, tt.wantSource)
		})
	}
}

func hierarchicalConfig(t *testing.T) domain.CorpusConfig {
	return domain.CorpusConfig{
		Name: domain.CorpusGuidelines, Kind: domain.CorpusHierarchical, Root: writeTree(t, guidelines),
	}
}

func TestEngine_AskListSkipsRewrite(t *testing.T) {
	llm := &mockLLM{responses: []string{"list", "方案一、方案二"}}
	index := &mockIndex{}
	e := builtEngine(t, llm, index)

	answer, err := e.Ask(context.Background(), "有哪些脊柱疾病", domain.DeliveryBlocking)
	require.NoError(t, err)

	assert.Equal(t, "方案一、方案二", answer.Text)
	assert.Empty(t, answer.Query.Rewritten)
	assert.Equal(t, "有哪些脊柱疾病", index.handle.lastQuery)
	assert.True(t, answer.Query.Filters.IsEmpty())

	calls := llm.calls()
	require.Len(t, calls, 2)
	assert.True(t, strings.HasPrefix(calls[1], "BASIC:"))
	assert.Len(t, answer.Query.Parents, 2)
}

func TestEngine_AskNotFound(t *testing.T) {
	llm := &mockLLM{responses: []string{"general", "未知疾病"}}
	e := builtEngine(t, llm, &mockIndex{noHits: true})

	answer, err := e.Ask(context.Background(), "未知疾病", domain.DeliveryBlocking)
	require.NoError(t, err)

	assert.True(t, answer.NotFound)
	assert.Equal(t, NotFoundMessage, answer.Text)
	assert.Len(t, llm.calls(), 2)
}

func TestEngine_AskNotFoundStream(t *testing.T) {
	llm := &mockLLM{responses: []string{"general", "x"}}
	e := builtEngine(t, llm, &mockIndex{noHits: true})

	answer, err := e.Ask(context.Background(), "x", domain.DeliveryStream)
	require.NoError(t, err)

	require.NotNil(t, answer.Stream)
	assert.Empty(t, answer.Text)
	got, err := domain.ReadAll(answer.Stream)
	require.NoError(t, err)
	assert.Equal(t, NotFoundMessage, got)
}

func TestEngine_AskStream(t *testing.T) {
	llm := &mockLLM{responses: []string{"general", "脊柱结核"}, streamParts: []string{"抗结核", "治疗"}}
	e := builtEngine(t, llm, &mockIndex{})

	answer, err := e.Ask(context.Background(), "脊柱结核", domain.DeliveryStream)
	require.NoError(t, err)

	assert.Equal(t, domain.DeliveryStream, answer.Mode)
	got, err := domain.ReadAll(answer.Stream)
	require.NoError(t, err)
	assert.Equal(t, "抗结核治疗", got)
}

func TestEngine_AskErrors(t *testing.T) {
	t.Run("before build", func(t *testing.T) {
		e, _ := newTestEngine(t, &mockLLM{}, &mockIndex{})
		_, err := e.Ask(context.Background(), "q", domain.DeliveryBlocking)
		assert.ErrorIs(t, err, domain.ErrNoKnowledgeBase)
	})

	t.Run("no backend", func(t *testing.T) {
		e, cfg := newTestEngine(t, nil, &mockIndex{})
		_, err := e.Build(context.Background(), cfg, false)
		require.NoError(t, err)

		_, err = e.Ask(context.Background(), "q", domain.DeliveryBlocking)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("empty question", func(t *testing.T) {
		e := builtEngine(t, &mockLLM{}, &mockIndex{})
		_, err := e.Ask(context.Background(), "  \n", domain.DeliveryBlocking)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("router failure", func(t *testing.T) {
		backendErr := errors.New("unauthorised")
		e := builtEngine(t, &mockLLM{completeErr: backendErr}, &mockIndex{})
		_, err := e.Ask(context.Background(), "q", domain.DeliveryBlocking)
		assert.ErrorIs(t, err, backendErr)
	})

	t.Run("search failure", func(t *testing.T) {
		searchErr := errors.New("index closed")
		index := &mockIndex{}
		e := builtEngine(t, &mockLLM{responses: []string{"list"}}, index)
		index.handle.searchErr = searchErr

		_, err := e.Ask(context.Background(), "q", domain.DeliveryBlocking)
		assert.ErrorIs(t, err, searchErr)
	})
}

func TestEngine_CatalogBeforeBuild(t *testing.T) {
	e, _ := newTestEngine(t, &mockLLM{}, &mockIndex{})

	_, err := e.Stats()
	assert.ErrorIs(t, err, domain.ErrNoKnowledgeBase)
	_, err = e.ExportMetadata()
	assert.ErrorIs(t, err, domain.ErrNoKnowledgeBase)
	_, err = e.BrowseCategory(context.Background(), "骨折", "")
	assert.ErrorIs(t, err, domain.ErrNoKnowledgeBase)
	_, err = e.Document("x")
	assert.ErrorIs(t, err, domain.ErrNoKnowledgeBase)

	// Filter extraction needs no knowledge base.
	assert.Equal(t, "感染", e.ExtractFilters("感染怎么办").Category)
	assert.Equal(t, domain.DefaultCategoryTable().Labels(), e.Categories())
}

func TestEngine_BrowseCategory(t *testing.T) {
	index := &mockIndex{}
	e := builtEngine(t, &mockLLM{}, index)

	ranked, err := e.BrowseCategory(context.Background(), "骨折", "")
	require.NoError(t, err)

	require.Len(t, ranked, 1)
	assert.Equal(t, "compression_fracture", ranked[0].Document.Metadata.Topic)
	assert.Equal(t, "骨折", index.handle.lastQuery)

	_, err = e.BrowseCategory(context.Background(), "感染", "结核")
	require.NoError(t, err)
	assert.Equal(t, "结核", index.handle.lastQuery)

	_, err = e.BrowseCategory(context.Background(), " ", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEngine_Documents(t *testing.T) {
	e := builtEngine(t, &mockLLM{}, &mockIndex{})

	docs, err := e.DocumentsByCategory("感染")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "spinal_tb", docs[0].Metadata.Topic)

	doc, err := e.Document(docs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, docs[0].RelPath, doc.RelPath)

	_, err = e.Document("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_Stats(t *testing.T) {
	e := builtEngine(t, &mockLLM{}, &mockIndex{})

	stats, err := e.Stats()
	require.NoError(t, err)

	assert.Equal(t, domain.CorpusCaseReports, stats.Name)
	assert.Equal(t, 3, stats.TotalDocuments)
	assert.Equal(t, 4, stats.TotalFragments)
	assert.Equal(t, 4, stats.IndexedFragments)
	assert.Equal(t, map[string]int{"骨折": 1, "血管瘤": 1, "感染": 1}, stats.Categories)
	assert.Greater(t, stats.AvgFragmentSize, 0.0)
}

func TestEngine_ExportMetadata(t *testing.T) {
	e := builtEngine(t, &mockLLM{}, &mockIndex{})

	records, err := e.ExportMetadata()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "fracture/compression_fracture/treatment.md", records[0].Source)
	assert.Equal(t, "骨折", records[0].Category)
	assert.Equal(t, 2, records[0].Fragments)
	assert.Positive(t, records[0].ContentLength)
}

func TestEngine_ExportMetadataHierarchicalSorted(t *testing.T) {
	root := writeTree(t, map[string]string{
		"SpinalStenosis/A_Overview/part1.md":                         "# S",
		"AdultIsthmicSpondylolisthesis/C_Surgery/part1.md":           "# C",
		"AdultIsthmicSpondylolisthesis/B_Diagnosis_Imaging/part2.md": "# B2",
		"AdultIsthmicSpondylolisthesis/B_Diagnosis_Imaging/part1.md": "# B1",
	})
	e := NewEngine(NewIngestService(defaultComponents(t), nil, 2), &mockIndex{}, &mockLLM{}, EngineConfig{})
	_, err := e.Build(context.Background(), domain.CorpusConfig{
		Name: domain.CorpusGuidelines, Kind: domain.CorpusHierarchical, Root: root,
	}, false)
	require.NoError(t, err)

	records, err := e.ExportMetadata()
	require.NoError(t, err)

	var order []string
	for _, r := range records {
		order = append(order, r.Book+"/"+r.Chapter+"/"+r.File)
	}
	assert.Equal(t, []string{
		"Adult Isthmic Spondylolisthesis/B. Diagnosis Imaging/part1.md",
		"Adult Isthmic Spondylolisthesis/B. Diagnosis Imaging/part2.md",
		"Adult Isthmic Spondylolisthesis/C. Surgery/part1.md",
		"Spinal Stenosis/A. Overview/part1.md",
	}, order)

	stats, err := e.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Categories["Adult Isthmic Spondylolisthesis"])
}
