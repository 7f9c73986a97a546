package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var documentCorpus string

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect ingested documents",
	Long:  `List documents by category or show a single document.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list [category]",
	Short: "List every document in a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Print a document with its metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

func init() {
	documentCmd.PersistentFlags().StringVarP(&documentCorpus, "corpus", "c", "",
		"corpus name (default: configured query corpus)")
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	session, err := openSession(cmd.Context(), documentCorpus, true)
	if err != nil {
		return err
	}
	defer closeSession(session)

	category := args[0]
	docs, err := session.Engine.DocumentsByCategory(category)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Printf("No documents found in category: %s\n", category)
		return nil
	}

	cmd.Printf("Documents in %s:\n\n", category)
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    %s\n", docs[i].Metadata.Label())
		cmd.Printf("    Path: %s\n", docs[i].RelPath)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	session, err := openSession(cmd.Context(), documentCorpus, true)
	if err != nil {
		return err
	}
	defer closeSession(session)

	doc, err := session.Engine.Document(args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	meta, err := json.MarshalIndent(doc.Metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	cmd.Printf("ID: %s\n", doc.ID)
	cmd.Printf("Path: %s\n", doc.RelPath)
	cmd.Printf("Metadata: %s\n", meta)
	cmd.Println()
	cmd.Println(doc.Content)
	return nil
}
