package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/postprocessors/chunker"
)

// mockProcessor is a test processor that returns predefined fragments.
type mockProcessor struct {
	name      string
	fragments []domain.ChildFragment
	err       error
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, _ *domain.ParentDocument, fragments []domain.ChildFragment) ([]domain.ChildFragment, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.fragments != nil {
		return m.fragments, nil
	}
	return fragments, nil
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.Len() != 0 {
		t.Errorf("expected 0 processors, got %d", p.Len())
	}
}

func TestPipeline_Add(t *testing.T) {
	p := NewPipeline()
	p.Add(&mockProcessor{name: "test"})

	if p.Len() != 1 {
		t.Errorf("expected 1 processor, got %d", p.Len())
	}
}

func TestPipeline_Process_NilDocument(t *testing.T) {
	p := NewPipeline()

	_, err := p.Process(context.Background(), nil)
	if err == nil {
		t.Error("expected error for nil document")
	}
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	p := NewPipeline()
	doc := &domain.ParentDocument{
		ID:      "test-doc",
		Content: "test content",
	}

	fragments, err := p.Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fragments != nil {
		t.Errorf("expected nil fragments from empty pipeline, got %v", fragments)
	}
}

func TestPipeline_Process_SingleProcessor(t *testing.T) {
	expectedFragments := []domain.ChildFragment{
		{ID: "frag-1", Content: "test"},
	}

	p := NewPipeline(&mockProcessor{
		name:      "chunker",
		fragments: expectedFragments,
	})

	doc := &domain.ParentDocument{
		ID:      "test-doc",
		Content: "test content",
	}

	fragments, err := p.Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fragments) != len(expectedFragments) {
		t.Errorf("expected %d fragments, got %d", len(expectedFragments), len(fragments))
	}
}

func TestPipeline_Process_MultipleProcessors(t *testing.T) {
	firstFragments := []domain.ChildFragment{
		{ID: "frag-1", Content: "first"},
	}
	secondFragments := []domain.ChildFragment{
		{ID: "frag-1", Content: "modified"},
		{ID: "frag-2", Content: "added"},
	}

	p := NewPipeline(
		&mockProcessor{name: "first", fragments: firstFragments},
		&mockProcessor{name: "second", fragments: secondFragments},
	)

	doc := &domain.ParentDocument{
		ID:      "test-doc",
		Content: "test content",
	}

	fragments, err := p.Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fragments) != len(secondFragments) {
		t.Errorf("expected %d fragments, got %d", len(secondFragments), len(fragments))
	}
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	expectedErr := errors.New("processor failed")

	p := NewPipeline(&mockProcessor{
		name: "failing",
		err:  expectedErr,
	})

	doc := &domain.ParentDocument{
		ID:      "test-doc",
		Content: "test content",
	}

	_, err := p.Process(context.Background(), doc)
	if err == nil {
		t.Error("expected error from failing processor")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected wrapped error, got: %v", err)
	}
}

func TestPipeline_Process_PassthroughProcessor(t *testing.T) {
	initialFragments := []domain.ChildFragment{
		{ID: "frag-1", Content: "test"},
	}

	p := NewPipeline(
		&mockProcessor{name: "chunker", fragments: initialFragments},
		&mockProcessor{name: "passthrough"}, // Returns received fragments unchanged
	)

	doc := &domain.ParentDocument{
		ID:      "test-doc",
		Content: "test content",
	}

	fragments, err := p.Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fragments) != len(initialFragments) {
		t.Errorf("expected %d fragments, got %d", len(initialFragments), len(fragments))
	}
}

func TestPipeline_Names(t *testing.T) {
	p := NewPipeline(&mockProcessor{name: "chunker"}, &mockProcessor{name: "semantic_context"})

	names := p.Names()
	if len(names) != 2 || names[0] != "chunker" || names[1] != "semantic_context" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestDefaultPipeline_Flat(t *testing.T) {
	p, err := DefaultPipeline(domain.CorpusFlat, chunker.NewSequenceGenerator("f"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := &domain.ParentDocument{
		ID:       "p",
		Kind:     domain.CorpusFlat,
		Content:  "# 概述\n内容\n## 治疗\n固定",
		Metadata: domain.Metadata{Category: "骨折", Topic: "t"},
	}
	fragments, err := p.Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}
	if fragments[0].ID != "f-1" || fragments[0].SemanticContext != "" {
		t.Errorf("unexpected first fragment: %+v", fragments[0])
	}
}

func TestDefaultPipeline_HierarchicalAddsSemanticContext(t *testing.T) {
	p, err := DefaultPipeline(domain.CorpusHierarchical, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("expected chunker and semantic_context, got %v", p.Names())
	}

	doc := &domain.ParentDocument{
		ID:      "p",
		Kind:    domain.CorpusHierarchical,
		Content: "# Radiographs\nStanding lateral view.",
		Metadata: domain.Metadata{
			BookName:    "Adult Isthmic Spondylolisthesis",
			ChapterName: "Diagnosis Imaging",
			PartIndex:   2,
		},
	}
	fragments, err := p.Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Adult Isthmic Spondylolisthesis > Diagnosis Imaging > Radiographs"
	if fragments[0].SemanticContext != want {
		t.Errorf("expected %q, got %q", want, fragments[0].SemanticContext)
	}
}
