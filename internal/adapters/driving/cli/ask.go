package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

var (
	askCorpus string
	askStream bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the knowledge base",
	Long: `Routes the question, retrieves matching fragments, and answers with the
configured language model using the documents they came from.

Answers stream to the terminal by default; use --stream=false to wait for
the complete answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askCorpus, "corpus", "c", "", "corpus name (default: configured query corpus)")
	askCmd.Flags().BoolVarP(&askStream, "stream", "s", false, "stream the answer as it is generated (default: on for terminals)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	session, err := openAnswerSession(ctx, askCorpus)
	if err != nil {
		return err
	}
	defer closeSession(session)

	mode := domain.DeliveryBlocking
	if streamEnabled(cmd) {
		mode = domain.DeliveryStream
	}

	answer, err := session.Engine.Ask(ctx, question, mode)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if err := printAnswer(cmd, answer); err != nil {
		return err
	}
	printSources(cmd, answer)
	return nil
}

// streamEnabled honours an explicit --stream and otherwise streams only
// when stdout is a terminal.
func streamEnabled(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("stream") {
		return askStream
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) error {
	if answer.Stream == nil {
		cmd.Println(answer.Text)
		return nil
	}

	stream := answer.Stream
	defer stream.Close()

	out := cmd.OutOrStdout()
	for stream.Next() {
		fmt.Fprint(out, stream.Current())
	}
	fmt.Fprintln(out)

	if err := stream.Err(); err != nil {
		return fmt.Errorf("answer stream: %w", err)
	}
	return nil
}

func printSources(cmd *cobra.Command, answer *domain.Answer) {
	if answer.NotFound || answer.Query == nil || len(answer.Query.Parents) == 0 {
		return
	}

	cmd.Println()
	cmd.Printf("Sources (%s):\n", answer.Query.Route)
	for i, p := range answer.Query.Parents {
		label := p.Document.Metadata.Label()
		if label == "" {
			label = p.Document.RelPath
		}
		cmd.Printf("  [%d] %s (%d)\n", i+1, label, p.Relevance)
	}
}
