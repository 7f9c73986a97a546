package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/medrag/internal/adapters/driving/mcp"
	"github.com/custodia-labs/medrag/internal/logger"
)

var (
	mcpPort   int
	mcpCorpus string
	mcpWatch  bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask questions
against the knowledge base and read its documents.

By default, the server communicates over stdio using JSON-RPC. Use --port
to serve the streamable HTTP transport instead.

Tools:
  ask              - answer a question with cited sources (needs a language model)
  browse_category  - rank documents within a category
  extract_filters  - show the category a question is restricted to

Resources:
  medrag://categories
  medrag://stats
  medrag://categories/{category}/documents
  medrag://documents/{documentId}

Examples:
  # Stdio mode (default)
  medrag mcp serve

  # HTTP mode, rebuilding when the corpus changes
  medrag mcp serve --port 8080 --watch

Client configuration:
  {
    "mcpServers": {
      "medrag": {
        "command": "/path/to/medrag",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVarP(&mcpCorpus, "corpus", "c", "", "corpus name (default: configured query corpus)")
	mcpServeCmd.Flags().BoolVarP(&mcpWatch, "watch", "w", false, "rebuild the knowledge base when corpus files change")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	session, err := openSession(ctx, mcpCorpus, true)
	if err != nil {
		return err
	}
	defer closeSession(session)

	ports := mcp.NewPorts(session.Engine)
	if session.GenerationErr != nil {
		logger.Warn("ask tool disabled: %v", session.GenerationErr)
		ports.Answer = nil
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	return runWatching(ctx, session, mcpWatch, func(ctx context.Context) error {
		if mcpPort > 0 {
			addr := fmt.Sprintf(":%d", mcpPort)
			// stdout carries JSON-RPC only in stdio mode.
			fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
			return server.RunHTTP(ctx, addr)
		}
		return server.Run(ctx)
	})
}
