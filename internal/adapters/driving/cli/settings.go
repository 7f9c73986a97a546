package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure corpora, the language model provider and retrieval
options. Settings are stored in config.toml inside the configuration directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the LLM provider",
	Long: `Configure the language model used for routing, rewriting and answering.

Without flags an interactive prompt asks for each value. With --provider the
values are taken from flags:

  medrag settings llm --provider openai --model deepseek-chat --api-key sk-...
  medrag settings llm --provider ollama --model qwen2.5`,
	RunE: runSettingsLLM,
}

var settingsCorpusCmd = &cobra.Command{
	Use:   "corpus [name] [path]",
	Short: "Point a corpus at a directory",
	Long: `Sets the root directory of a named corpus. Unknown names are added as
flat (case report) corpora.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsCorpus,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that settings can drive ingestion and answering",
	RunE:  runSettingsValidate,
}

var (
	llmProvider string
	llmModel    string
	llmBaseURL  string
	llmAPIKey   string
	llmNoPing   bool
)

func init() {
	settingsLLMCmd.Flags().StringVar(&llmProvider, "provider", "", "provider (openai, ollama)")
	settingsLLMCmd.Flags().StringVar(&llmModel, "model", "", "model name")
	settingsLLMCmd.Flags().StringVar(&llmBaseURL, "base-url", "", "API base URL")
	settingsLLMCmd.Flags().StringVar(&llmAPIKey, "api-key", "", "API key (remote providers)")
	settingsLLMCmd.Flags().BoolVar(&llmNoPing, "no-ping", false, "skip the connectivity check")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsCorpusCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Corpora]")
	for _, c := range settings.Corpora {
		root := c.Root
		if root == "" {
			root = "(not set)"
		}
		marker := ""
		if c.Name == settings.Retrieval.QueryCorpus {
			marker = " *"
		}
		cmd.Printf("  %s (%s)%s: %s\n", c.Name, c.Kind, marker, root)
	}
	cmd.Printf("  Index directory: %s\n", settings.IndexDir)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Context budget: %d characters\n", settings.Retrieval.ContextMaxChars)
	cmd.Printf("  Workers: %d\n", settings.Ingest.Workers)
	cmd.Printf("  Extensions: %s\n", strings.Join(settings.Ingest.Extensions, ", "))
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	provider := domain.AIProvider(llmProvider)
	model, baseURL, apiKey := llmModel, llmBaseURL, llmAPIKey

	if llmProvider == "" {
		reader := bufio.NewReader(cmd.InOrStdin())
		provider, model, apiKey, err = promptLLMProvider(cmd, reader)
		if err != nil {
			return err
		}
	}

	if err := svc.SetLLMProvider(provider, model, baseURL, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if !llmNoPing {
		cmd.Print("Validating configuration... ")
		if err := svc.ValidateLLMConfig(cmd.Context()); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("LLM provider configured: %s\n", provider.Description())
	return nil
}

func promptLLMProvider(cmd *cobra.Command, reader *bufio.Reader) (domain.AIProvider, string, string, error) {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	selected := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	defaultModel := domain.DefaultLLMModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key (blank to use the environment): ")
		apiKey = readPassword(reader)
		cmd.Println()
	}

	return selected, model, apiKey, nil
}

func runSettingsCorpus(cmd *cobra.Command, args []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	if err := svc.SetCorpusRoot(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set corpus root: %w", err)
	}
	cmd.Printf("Corpus %s now reads from %s\n", args[0], args[1])
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	if err := svc.Validate(); err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			cmd.Printf("Invalid settings: %v\n", err)
		}
		return err
	}
	cmd.Println("Settings OK")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo from a terminal, otherwise from reader.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
