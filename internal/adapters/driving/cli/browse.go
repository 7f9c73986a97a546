package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	browseCorpus string
	browseList   bool
)

var browseCmd = &cobra.Command{
	Use:   "browse [category] [query]",
	Short: "List documents in a category",
	Long: `Lists the documents in a category that best match the query, ranked by
how many retrieved fragments came from each. Without a query the category
name itself is used.

Run "medrag browse --list" to see the configured categories.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseCorpus, "corpus", "c", "", "corpus name (default: configured query corpus)")
	browseCmd.Flags().BoolVarP(&browseList, "list", "l", false, "list categories and their document counts")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if !browseList && (len(args) == 0 || strings.TrimSpace(args[0]) == "") {
		return errors.New("category is required")
	}

	session, err := openSession(ctx, browseCorpus, true)
	if err != nil {
		return err
	}
	defer closeSession(session)

	if browseList {
		for _, c := range session.Engine.Categories() {
			docs, err := session.Engine.DocumentsByCategory(c)
			if err != nil {
				return err
			}
			cmd.Printf("  %s (%d)\n", c, len(docs))
		}
		return nil
	}

	category := args[0]
	query := ""
	if len(args) > 1 {
		query = args[1]
	}

	ranked, err := session.Engine.BrowseCategory(ctx, category, query)
	if err != nil {
		return fmt.Errorf("browse failed: %w", err)
	}

	if len(ranked) == 0 {
		cmd.Printf("No documents found in category: %s\n", category)
		return nil
	}

	cmd.Printf("Documents in %s:\n\n", category)
	for i, r := range ranked {
		cmd.Printf("  [%d] %s (%d)\n", i+1, r.Document.Metadata.Label(), r.Relevance)
		cmd.Printf("      %s\n", r.Document.RelPath)
	}
	return nil
}
