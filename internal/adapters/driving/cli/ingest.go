package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	ingestCorpus  string
	ingestRebuild bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a corpus and build its index",
	Long: `Walks the corpus directory, splits every document into fragments and
builds the search index. A saved index is reused unless --rebuild is given.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestCorpus, "corpus", "c", "", "corpus name (default: configured query corpus)")
	ingestCmd.Flags().BoolVar(&ingestRebuild, "rebuild", false, "ignore the saved index and build a new one")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	session, err := openSession(ctx, ingestCorpus, false)
	if err != nil {
		return err
	}
	defer closeSession(session)

	report, err := session.Engine.Build(ctx, session.Corpus, ingestRebuild)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	corpus := report.Corpus
	cmd.Printf("Corpus: %s (%s)\n", corpus.Name, corpus.Kind)
	cmd.Printf("  Root: %s\n", corpus.Root)
	cmd.Printf("  Documents: %d\n", len(corpus.Parents))
	cmd.Printf("  Fragments: %d\n", len(corpus.Fragments))
	if report.Loaded {
		cmd.Printf("  Index: loaded from snapshot (%d fragments)\n", report.IndexedFragments)
	} else {
		cmd.Printf("  Index: built (%d fragments)\n", report.IndexedFragments)
	}

	if len(corpus.Skipped) > 0 {
		cmd.Printf("  Skipped: %d\n", len(corpus.Skipped))
		for _, s := range corpus.Skipped {
			cmd.Printf("    %s: %s\n", s.RelPath, s.Reason)
		}
	}
	return nil
}
