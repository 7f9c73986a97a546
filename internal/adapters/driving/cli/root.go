// Package cli provides the medrag command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driving"
	"github.com/custodia-labs/medrag/internal/logger"
)

// Options are the global flags handed to the bootstrap function.
type Options struct {
	ConfigDir string
	Verbose   bool
}

// Session is an opened knowledge base for one corpus.
type Session struct {
	// Corpus is the resolved corpus configuration.
	Corpus domain.CorpusConfig

	// Engine answers and browses once built.
	Engine driving.KnowledgeBaseService

	// Watch rebuilds the knowledge base when the corpus tree changes and
	// blocks until ctx is cancelled. Nil when watching is unavailable.
	Watch func(ctx context.Context) error

	// Close releases the index store and generation backend.
	Close func() error

	// GenerationErr is why no generation backend is available, nil when
	// answers can be generated.
	GenerationErr error
}

// Runtime is the set of services the commands drive.
type Runtime struct {
	Settings driving.SettingsService

	// Open prepares the engine for a corpus. An empty name selects the
	// configured query corpus.
	Open func(ctx context.Context, corpus string) (*Session, error)
}

// Bootstrap builds the runtime once global flags are parsed.
type Bootstrap func(opts Options) (*Runtime, error)

var (
	version   = "dev"
	verbose   bool
	configDir string
	envFile   string

	bootstrap Bootstrap
	app       *Runtime
)

var rootCmd = &cobra.Command{
	Use:   "medrag",
	Short: "Question answering over a local medical knowledge base",
	Long: `medrag ingests a tree of Markdown case reports or clinical guidelines,
indexes it, and answers questions with a language model grounded in the
retrieved documents.`,
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.medrag)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file to load credentials from")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that builds the runtime.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func initRuntime(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if envFile != "" {
		// A missing .env is normal; the environment may already hold the key.
		if err := godotenv.Load(envFile); err != nil {
			logger.Debug("env file %s not loaded: %v", envFile, err)
		}
	}

	if bootstrap == nil {
		return nil
	}
	rt, err := bootstrap(Options{ConfigDir: configDir, Verbose: verbose})
	if err != nil {
		return err
	}
	app = rt
	return nil
}

func settingsService() (driving.SettingsService, error) {
	if app == nil || app.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	return app.Settings, nil
}

// openSession opens the corpus and, when build is set, builds its
// knowledge base. The caller must close the session.
func openSession(ctx context.Context, corpus string, build bool) (*Session, error) {
	if app == nil || app.Open == nil {
		return nil, errors.New("knowledge base not configured")
	}

	session, err := app.Open(ctx, corpus)
	if err != nil {
		return nil, err
	}
	if !build {
		return session, nil
	}
	if err := buildSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// openAnswerSession opens and builds a session for commands that generate
// answers. A missing generation backend fails before the corpus is ingested.
func openAnswerSession(ctx context.Context, corpus string) (*Session, error) {
	session, err := openSession(ctx, corpus, false)
	if err != nil {
		return nil, err
	}
	if session.GenerationErr != nil {
		closeSession(session)
		return nil, session.GenerationErr
	}
	if err := buildSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// buildSession builds the knowledge base and closes the session on failure.
func buildSession(ctx context.Context, session *Session) error {
	if _, err := session.Engine.Build(ctx, session.Corpus, false); err != nil {
		closeSession(session)
		return fmt.Errorf("build knowledge base: %w", err)
	}
	return nil
}

func closeSession(s *Session) {
	if s == nil || s.Close == nil {
		return
	}
	if err := s.Close(); err != nil {
		logger.Warn("close session: %v", err)
	}
}
