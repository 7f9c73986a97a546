// Command medrag answers medical questions from a local Markdown knowledge base.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/medrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/medrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/medrag/internal/adapters/driven/index/keyword"
	"github.com/custodia-labs/medrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/medrag/internal/adapters/driven/watch"
	"github.com/custodia-labs/medrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/services"
	"github.com/custodia-labs/medrag/internal/logger"
	"github.com/custodia-labs/medrag/internal/normalisers/markdown"
	"github.com/custodia-labs/medrag/internal/pathmeta"
	"github.com/custodia-labs/medrag/internal/postprocessors"
	"github.com/custodia-labs/medrag/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the driven adapters behind the driving ports once global
// flags are known.
func bootstrap(opts cli.Options) (*cli.Runtime, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settings := services.NewSettingsService(configStore, ai.NewConfigValidator())

	promptDir := ""
	if opts.ConfigDir != "" {
		promptDir = filepath.Join(opts.ConfigDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	w := &wiring{settings: settings, prompts: prompts}
	return &cli.Runtime{Settings: settings, Open: w.open}, nil
}

type wiring struct {
	settings *services.SettingsService
	prompts  *file.PromptStore
}

// open builds an engine for the named corpus. The caller owns the session.
func (w *wiring) open(_ context.Context, name string) (*cli.Session, error) {
	cfg, err := w.settings.Get()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = cfg.Retrieval.QueryCorpus
	}

	corpus, ok := cfg.Corpus(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown corpus %q", domain.ErrConfiguration, name)
	}
	if corpus.Root == "" {
		return nil, fmt.Errorf("%w: corpus %s has no path. Run 'medrag settings corpus %s <path>'",
			domain.ErrMissingCorpusRoot, name, name)
	}

	ingest, err := w.ingestService(cfg)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore(cfg.IndexDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	var generationErr error
	llm, err := ai.CreateLLMService(&cfg.LLM)
	switch {
	case err != nil:
		llm = nil
		generationErr = fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	case llm == nil && cfg.LLM.Provider.RequiresAPIKey():
		generationErr = fmt.Errorf("%w: %w: %s API key not set. Run 'medrag settings llm'",
			domain.ErrLLMUnavailable, domain.ErrMissingCredential, cfg.LLM.Provider)
	case llm == nil:
		generationErr = fmt.Errorf("%w: provider %q not configured. Run 'medrag settings llm'",
			domain.ErrLLMUnavailable, cfg.LLM.Provider)
	}
	if generationErr != nil {
		logger.Debug("generation backend: %v", generationErr)
	}

	engine := services.NewEngine(ingest, keyword.New(store, name), llm, services.EngineConfig{
		TopK:            cfg.Retrieval.TopK,
		ContextMaxChars: cfg.Retrieval.ContextMaxChars,
	})
	engine.SetPromptStore(w.prompts)

	session := &cli.Session{
		Corpus:        corpus,
		Engine:        engine,
		GenerationErr: generationErr,
		Close: func() error {
			var errs []error
			if llm != nil {
				errs = append(errs, llm.Close())
			}
			errs = append(errs, store.Close())
			return errors.Join(errs...)
		},
	}

	session.Watch = func(ctx context.Context) error {
		watcher, err := watch.New(corpus.Root, func(ctx context.Context, _ []string) {
			if _, err := engine.Build(ctx, corpus, true); err != nil {
				logger.Error("rebuild %s: %v", corpus.Name, err)
			}
		}, watch.WithExtensions(corpus.Extensions))
		if err != nil {
			return err
		}
		logger.Info("Watching %s for changes", corpus.Root)
		return watcher.Run(ctx)
	}

	return session, nil
}

// ingestService assembles the per-kind normaliser, path resolver and
// fragment pipeline.
func (w *wiring) ingestService(cfg *domain.AppSettings) (*services.IngestService, error) {
	ids := chunker.UUIDGenerator{}
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry, ids)

	table := domain.DefaultCategoryTable()
	components := make(map[domain.CorpusKind]services.KindComponents)
	for _, kind := range []domain.CorpusKind{domain.CorpusFlat, domain.CorpusHierarchical} {
		resolver, err := pathmeta.New(kind, table)
		if err != nil {
			return nil, err
		}
		pipeline, err := registry.BuildPipeline(w.settings.GetPipelineConfig(kind))
		if err != nil {
			return nil, fmt.Errorf("%w: %s pipeline: %w", domain.ErrConfiguration, kind, err)
		}
		components[kind] = services.KindComponents{
			Normaliser: markdown.New(kind),
			Resolver:   resolver,
			Pipeline:   pipeline,
		}
	}

	return services.NewIngestService(components, ids, cfg.Ingest.Workers), nil
}
