package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/medrag/internal/adapters/driving/tui"
)

var (
	tuiCorpus string
	tuiWatch  bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch an interactive session for asking questions against the knowledge
base. Answers stream as they are generated and cited documents can be opened
in place.

Controls:
  Enter    - Ask / Open source
  Tab      - Move between question and sources
  ↑/k, ↓/j - Navigate sources, scroll documents
  Esc      - Back / Clear
  ?        - Help (while browsing sources)
  ctrl+c   - Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiCorpus, "corpus", "c", "", "corpus name (default: configured query corpus)")
	tuiCmd.Flags().BoolVarP(&tuiWatch, "watch", "w", false, "rebuild the knowledge base when corpus files change")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ctx := cmd.Context()
	session, err := openAnswerSession(ctx, tuiCorpus)
	if err != nil {
		return err
	}
	defer closeSession(session)

	app, err := tui.NewApp(tui.NewPorts(session.Engine, session.Corpus.Name))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	return runWatching(ctx, session, tuiWatch, func(ctx context.Context) error {
		err := app.WithContext(ctx).Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	})
}
