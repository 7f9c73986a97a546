package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	statsCorpus string
	statsJSON   bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsCorpus, "corpus", "c", "", "corpus name (default: configured query corpus)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	session, err := openSession(cmd.Context(), statsCorpus, true)
	if err != nil {
		return err
	}
	defer closeSession(session)

	stats, err := session.Engine.Stats()
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Corpus: %s (%s)\n", stats.Name, stats.Kind)
	cmd.Printf("  Documents: %d\n", stats.TotalDocuments)
	cmd.Printf("  Fragments: %d\n", stats.TotalFragments)
	cmd.Printf("  Indexed fragments: %d\n", stats.IndexedFragments)
	cmd.Printf("  Average fragment size: %.1f\n", stats.AvgFragmentSize)
	if stats.Skipped > 0 {
		cmd.Printf("  Skipped files: %d\n", stats.Skipped)
	}

	if len(stats.Categories) > 0 {
		names := make([]string, 0, len(stats.Categories))
		for name := range stats.Categories {
			names = append(names, name)
		}
		sort.Strings(names)

		cmd.Println("  Categories:")
		for _, name := range names {
			cmd.Printf("    %s: %d\n", name, stats.Categories[name])
		}
	}
	return nil
}
