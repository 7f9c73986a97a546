package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
	"github.com/custodia-labs/medrag/internal/core/ports/driving"
	"github.com/custodia-labs/medrag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// KindComponents are the per-corpus-kind stages of the ingestion pipeline.
type KindComponents struct {
	Normaliser driven.Normaliser
	Resolver   driven.PathResolver
	Pipeline   driven.PostProcessorPipeline
}

// IngestService walks a corpus tree and turns each file into a parent
// document and its fragments.
type IngestService struct {
	components map[domain.CorpusKind]KindComponents
	ids        driven.IDGenerator
	workers    int
}

// NewIngestService creates an ingestion service. ids mints fallback
// fragment IDs; workers bounds parallel file processing (<= 0 means one
// per CPU).
func NewIngestService(components map[domain.CorpusKind]KindComponents, ids driven.IDGenerator, workers int) *IngestService {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &IngestService{
		components: components,
		ids:        ids,
		workers:    workers,
	}
}

// Ingest processes every matching file under cfg.Root. Files are handled in
// parallel but merged in walk order, so the output is deterministic apart
// from fragment IDs. Per-file problems become skips; only an unusable root,
// an unknown kind or cancellation fail the call.
func (s *IngestService) Ingest(ctx context.Context, cfg domain.CorpusConfig) (*domain.Corpus, error) {
	logger.Section("Ingest " + cfg.Name)

	comps, ok := s.components[cfg.Kind]
	if !ok || comps.Normaliser == nil || comps.Resolver == nil || comps.Pipeline == nil {
		return nil, fmt.Errorf("%w: no ingestion pipeline for corpus kind %q", domain.ErrInvalidInput, cfg.Kind)
	}

	files, err := listFiles(cfg.Root, cfg.Extensions)
	if err != nil {
		return nil, err
	}
	logger.Debug("Found %d files under %s", len(files), cfg.Root)

	results := make([]domain.IngestResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.processFile(gctx, cfg, comps, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", cfg.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", cfg.Name, err)
	}

	corpus := &domain.Corpus{
		Name:  cfg.Name,
		Kind:  cfg.Kind,
		Root:  cfg.Root,
		Index: domain.NewParentChildIndex(),
	}
	for _, r := range results {
		if r.Skipped {
			logger.Warn("Skipped %s: %s", r.RelPath, r.Reason)
			corpus.Skipped = append(corpus.Skipped, domain.SkippedFile{RelPath: r.RelPath, Reason: r.Reason})
			continue
		}
		corpus.Parents = append(corpus.Parents, *r.Document)
		corpus.Fragments = append(corpus.Fragments, r.Fragments...)
		corpus.Index.AddFragments(r.Fragments)
	}

	logger.Info("Ingested %s: %d documents, %d fragments, %d skipped",
		cfg.Name, len(corpus.Parents), len(corpus.Fragments), len(corpus.Skipped))
	return corpus, nil
}

// processFile runs one file through resolve, read, normalise and split.
func (s *IngestService) processFile(ctx context.Context, cfg domain.CorpusConfig, comps KindComponents, path string) domain.IngestResult {
	rel, err := filepath.Rel(cfg.Root, path)
	if err != nil {
		return domain.SkipResult(path, err.Error())
	}
	rel = filepath.ToSlash(rel)

	resolved := comps.Resolver.Resolve(rel)
	if !resolved.Valid {
		return domain.SkipResult(rel, resolved.Reason)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SkipResult(rel, fmt.Sprintf("read: %v", err))
	}
	if !utf8.Valid(data) {
		return domain.SkipResult(rel, "not valid UTF-8")
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	content = comps.Normaliser.Normalise(content)

	doc, err := domain.NewParentDocument(cfg.Kind, path, rel, content, resolved.Metadata)
	if err != nil {
		return domain.SkipResult(rel, err.Error())
	}

	result := domain.IngestResult{RelPath: rel, Document: doc}
	fragments, err := comps.Pipeline.Process(ctx, doc)
	if err != nil {
		if ctx.Err() != nil {
			return result
		}
		logger.Warn("Splitting %s failed, keeping whole document: %v", rel, err)
		fragments = []domain.ChildFragment{domain.WholeFragment(doc, s.newID(doc))}
		result.Degraded = true
	}
	result.Fragments = fragments
	return result
}

// newID mints the fallback fragment ID. Without a generator the ID is
// derived from the parent, which is unique since the fallback is the
// document's only fragment.
func (s *IngestService) newID(doc *domain.ParentDocument) string {
	if s.ids == nil {
		return doc.ID + "-0"
	}
	return s.ids.NewID()
}

// listFiles walks root in lexical order and returns files whose extension
// is in exts (case-insensitive). Hidden directories are not entered.
func listFiles(root string, exts []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrConfiguration, domain.ErrMissingCorpusRoot, root)
	}

	if len(exts) == 0 {
		exts = []string{".md"}
	}
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(e)] = true
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Walk %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if allowed[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}
