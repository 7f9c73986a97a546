package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
	"github.com/custodia-labs/medrag/internal/core/ports/driving"
	"github.com/custodia-labs/medrag/internal/logger"
)

// Ensure Engine implements the interfaces.
var (
	_ driving.AnswerService        = (*Engine)(nil)
	_ driving.CatalogService       = (*Engine)(nil)
	_ driving.KnowledgeBaseService = (*Engine)(nil)
)

// NotFoundMessage is returned instead of an answer when retrieval matches nothing.
const NotFoundMessage = "抱歉，没有找到相关的疾病信息。请尝试其他疾病名称或关键词。"

// DefaultTopK is the number of fragments retrieved per question.
const DefaultTopK = 3

// BrowseTopK is the number of fragments retrieved when browsing a category.
const BrowseTopK = 10

// EngineConfig tunes the query pipeline.
type EngineConfig struct {
	TopK            int
	ContextMaxChars int
	Categories      domain.CategoryTable
}

// knowledgeBase is an ingested corpus with its searchable index.
// It is replaced wholesale on rebuild and never mutated.
type knowledgeBase struct {
	corpus   *domain.Corpus
	handle   driven.IndexHandle
	resolver *ParentResolver
}

// Engine answers questions against one corpus. It owns the current
// knowledge base and swaps it atomically on rebuild, so queries may run
// concurrently with a watch-triggered Build.
type Engine struct {
	ingest   driving.IngestService
	index    driven.SimilarityIndex
	llm      driven.GenerationBackend
	router   *Router
	rewriter *Rewriter
	filters  *FilterExtractor
	composer *ContextComposer

	categories  domain.CategoryTable
	topK        int
	promptStore driven.PromptStore

	mu sync.RWMutex
	kb *knowledgeBase
}

// NewEngine creates an engine. llm may be nil, in which case Ask fails
// with domain.ErrLLMUnavailable but browsing and statistics work.
func NewEngine(
	ingest driving.IngestService,
	index driven.SimilarityIndex,
	llm driven.GenerationBackend,
	cfg EngineConfig,
) *Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Categories.Len() == 0 {
		cfg.Categories = domain.DefaultCategoryTable()
	}
	return &Engine{
		ingest:     ingest,
		index:      index,
		llm:        llm,
		router:     NewRouter(llm),
		rewriter:   NewRewriter(llm),
		filters:    NewFilterExtractor(cfg.Categories),
		composer:   NewContextComposer(cfg.ContextMaxChars),
		categories: cfg.Categories,
		topK:       cfg.TopK,
	}
}

// SetPromptStore sets the prompt store used by every pipeline stage.
func (e *Engine) SetPromptStore(store driven.PromptStore) {
	e.promptStore = store
	e.router.SetPromptStore(store)
	e.rewriter.SetPromptStore(store)
}

// Build ingests the corpus and prepares its index. A saved index is reused
// unless rebuild is set; documents are always ingested because parents
// are needed to resolve fragments.
func (e *Engine) Build(ctx context.Context, cfg domain.CorpusConfig, rebuild bool) (*domain.BuildReport, error) {
	if e.index == nil {
		return nil, domain.ErrIndexUnavailable
	}

	corpus, err := e.ingest.Ingest(ctx, cfg)
	if err != nil {
		return nil, err
	}

	report := &domain.BuildReport{Corpus: corpus}
	var handle driven.IndexHandle

	if !rebuild {
		handle, err = e.index.Load(ctx)
		switch {
		case err == nil:
			report.Loaded = true
			logger.Info("Loaded saved index for %s", cfg.Name)
		case errors.Is(err, domain.ErrNotFound):
			logger.Info("No saved index for %s, building", cfg.Name)
		default:
			return nil, fmt.Errorf("load index: %w", err)
		}
	}

	if handle == nil {
		handle, err = e.index.Build(ctx, corpus.Fragments)
		if err != nil {
			return nil, fmt.Errorf("build index: %w", err)
		}
		if err := e.index.Save(ctx, handle); err != nil {
			return nil, fmt.Errorf("save index: %w", err)
		}
	} else {
		// Snapshot fragments carry the IDs of the run that saved them.
		corpus.Index.AddFragments(handle.Fragments())
	}

	report.IndexedFragments = len(handle.Fragments())
	e.swap(&knowledgeBase{
		corpus:   corpus,
		handle:   handle,
		resolver: NewParentResolver(corpus),
	})
	return report, nil
}

// Ready returns true once a knowledge base has been built.
func (e *Engine) Ready() bool {
	return e.current() != nil
}

func (e *Engine) swap(kb *knowledgeBase) {
	e.mu.Lock()
	e.kb = kb
	e.mu.Unlock()
}

func (e *Engine) current() *knowledgeBase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.kb
}

func (e *Engine) require() (*knowledgeBase, error) {
	kb := e.current()
	if kb == nil {
		return nil, domain.ErrNoKnowledgeBase
	}
	return kb, nil
}

// Ask runs the query pipeline: route, rewrite unless the route is list,
// extract filters (flat corpora only), retrieve, resolve parents, compose
// context and generate.
func (e *Engine) Ask(ctx context.Context, question string, mode domain.DeliveryMode) (*domain.Answer, error) {
	kb, err := e.require()
	if err != nil {
		return nil, err
	}
	if e.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	logger.Section("Query")
	logger.Debug("Question: %q (mode %s)", question, mode)
	q := &domain.QueryContext{Question: question}

	q.Route, err = e.router.Route(ctx, question)
	if err != nil {
		return nil, err
	}

	if q.Route != domain.RouteList {
		q.Rewritten, err = e.rewriter.Rewrite(ctx, question)
		if err != nil {
			return nil, err
		}
	}

	q.Filters = e.filtersFor(kb, question)
	q.Fragments, err = e.retrieve(ctx, kb, q.SearchQuery(), q.Filters, e.topK)
	if err != nil {
		return nil, err
	}

	if len(q.Fragments) == 0 {
		logger.Info("No fragments matched")
		answer := &domain.Answer{Query: q, Mode: mode, NotFound: true}
		if mode == domain.DeliveryStream {
			answer.Stream = domain.NewSliceStream(NotFoundMessage)
		} else {
			answer.Text = NotFoundMessage
		}
		return answer, nil
	}

	q.Parents = kb.resolver.Resolve(q.Fragments)
	q.Context = e.composer.Compose(q.Parents)

	strategy := SelectStrategy(q.Route, mode)
	logger.Debug("Strategy: %s / %s", strategy.Prompt, strategy.Mode)
	text, stream, err := strategy.Generate(ctx, e.llm, strategy.Render(e.promptStore, q.Context, question))
	if err != nil {
		return nil, err
	}

	return &domain.Answer{Query: q, Mode: mode, Text: text, Stream: stream}, nil
}

// retrieve runs a filtered or plain search against the index.
func (e *Engine) retrieve(
	ctx context.Context, kb *knowledgeBase, query string, filters domain.Filters, topK int,
) ([]domain.ChildFragment, error) {
	var (
		fragments []domain.ChildFragment
		err       error
	)
	if filters.IsEmpty() {
		fragments, err = kb.handle.Search(ctx, query, topK)
	} else {
		logger.Debug("Filters: category=%s", filters.Category)
		fragments, err = kb.handle.FilteredSearch(ctx, query, filters, topK)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	logger.Debug("Retrieved %d fragments for %q", len(fragments), query)
	return fragments, nil
}

// ResolveParents maps fragments to their ranked parent documents.
func (e *Engine) ResolveParents(fragments []domain.ChildFragment) ([]domain.RankedParent, error) {
	kb, err := e.require()
	if err != nil {
		return nil, err
	}
	return kb.resolver.Resolve(fragments), nil
}

// ExtractFilters derives retrieval constraints from a question. Before
// the first build the category table alone decides.
func (e *Engine) ExtractFilters(question string) domain.Filters {
	return e.filtersFor(e.current(), question)
}

// filtersFor extracts category filters only for corpora whose fragments
// carry a category. Hierarchical fragments never match one.
func (e *Engine) filtersFor(kb *knowledgeBase, question string) domain.Filters {
	if kb != nil && kb.corpus.Kind != domain.CorpusFlat {
		return domain.Filters{}
	}
	return e.filters.Extract(question)
}

// Categories returns the category labels in table order.
func (e *Engine) Categories() []string {
	return e.categories.Labels()
}

// BrowseCategory searches within a category. The query defaults to the
// category label itself.
func (e *Engine) BrowseCategory(ctx context.Context, category, query string) ([]domain.RankedParent, error) {
	kb, err := e.require()
	if err != nil {
		return nil, err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: empty category", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(query) == "" {
		query = category
	}

	fragments, err := e.retrieve(ctx, kb, query, domain.Filters{Category: category}, BrowseTopK)
	if err != nil {
		return nil, err
	}
	return kb.resolver.Resolve(fragments), nil
}

// DocumentsByCategory lists every parent document in a category, in corpus order.
func (e *Engine) DocumentsByCategory(category string) ([]domain.ParentDocument, error) {
	kb, err := e.require()
	if err != nil {
		return nil, err
	}
	var docs []domain.ParentDocument
	for _, d := range kb.corpus.Parents {
		if d.Metadata.Category == category {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

// Document returns a parent document by ID.
func (e *Engine) Document(id string) (*domain.ParentDocument, error) {
	kb, err := e.require()
	if err != nil {
		return nil, err
	}
	doc, ok := kb.corpus.Parent(id)
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return doc, nil
}

// Stats summarises the current knowledge base. Category counts use the
// category label, or the book name for hierarchical corpora.
func (e *Engine) Stats() (*domain.CorpusStats, error) {
	kb, err := e.require()
	if err != nil {
		return nil, err
	}
	c := kb.corpus

	stats := &domain.CorpusStats{
		Name:             c.Name,
		Kind:             c.Kind,
		TotalDocuments:   len(c.Parents),
		TotalFragments:   len(c.Fragments),
		Skipped:          len(c.Skipped),
		Categories:       make(map[string]int),
		IndexedFragments: len(kb.handle.Fragments()),
	}
	for _, d := range c.Parents {
		key := d.Metadata.Category
		if key == "" {
			key = d.Metadata.BookName
		}
		stats.Categories[key]++
	}
	if len(c.Fragments) > 0 {
		total := 0
		for _, f := range c.Fragments {
			total += f.Size
		}
		stats.AvgFragmentSize = float64(total) / float64(len(c.Fragments))
	}
	return stats, nil
}

// ExportMetadata returns one record per parent document. Hierarchical
// corpora are sorted by book, chapter and file.
func (e *Engine) ExportMetadata() ([]domain.MetadataRecord, error) {
	kb, err := e.require()
	if err != nil {
		return nil, err
	}
	c := kb.corpus

	perParent := make(map[string]int, len(c.Parents))
	for _, f := range c.Fragments {
		perParent[f.ParentID]++
	}

	records := make([]domain.MetadataRecord, 0, len(c.Parents))
	for _, d := range c.Parents {
		r := domain.MetadataRecord{
			Source:        d.RelPath,
			Topic:         d.Metadata.Topic,
			Category:      d.Metadata.Category,
			Book:          d.Metadata.BookName,
			File:          d.Metadata.SourceFile,
			ContentLength: len([]rune(d.Content)),
			Fragments:     perParent[d.ID],
		}
		if d.Metadata.ChapterName != "" {
			r.Chapter = d.Metadata.ChapterIndex + ". " + d.Metadata.ChapterName
		}
		records = append(records, r)
	}

	if c.Kind == domain.CorpusHierarchical {
		sort.SliceStable(records, func(i, j int) bool {
			a, b := records[i], records[j]
			if a.Book != b.Book {
				return a.Book < b.Book
			}
			if a.Chapter != b.Chapter {
				return a.Chapter < b.Chapter
			}
			return a.File < b.File
		})
	}
	return records, nil
}
