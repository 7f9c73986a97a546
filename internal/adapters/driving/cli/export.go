package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCorpus string

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export document metadata as JSON",
	Long: `Writes one JSON record per document with its classification, content
length and fragment count. Use "-" to write to standard output.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportCorpus, "corpus", "c", "", "corpus name (default: configured query corpus)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	session, err := openSession(cmd.Context(), exportCorpus, true)
	if err != nil {
		return err
	}
	defer closeSession(session)

	records, err := session.Engine.ExportMetadata()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if args[0] == "-" {
		cmd.Println(string(data))
		return nil
	}

	if err := os.WriteFile(args[0], data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", args[0], err)
	}
	cmd.Printf("Exported %d records to %s\n", len(records), args[0])
	return nil
}
