package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the clinical question to answer"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string         `json:"answer"`
	Route    string         `json:"route,omitempty"`
	Query    string         `json:"query,omitempty"`
	NotFound bool           `json:"not_found,omitempty"`
	Sources  []SourceOutput `json:"sources"`
}

// SourceOutput is one cited parent document.
type SourceOutput struct {
	DocumentID string `json:"document_id"`
	Label      string `json:"label"`
	Category   string `json:"category,omitempty"`
	Path       string `json:"path"`
	URI        string `json:"uri"`
	Relevance  int    `json:"relevance"`
}

// BrowseInput is the input schema for the browse_category tool.
type BrowseInput struct {
	Category string `json:"category" jsonschema:"the category label to browse"`
	Query    string `json:"query,omitempty" jsonschema:"optional text to rank documents by (defaults to the category)"`
}

// BrowseOutput is the output schema for the browse_category tool.
type BrowseOutput struct {
	Category  string         `json:"category"`
	Documents []SourceOutput `json:"documents"`
	Count     int            `json:"count"`
}

// FiltersInput is the input schema for the extract_filters tool.
type FiltersInput struct {
	Question string `json:"question" jsonschema:"the question to derive retrieval filters from"`
}

// FiltersOutput is the output schema for the extract_filters tool.
type FiltersOutput struct {
	Category string `json:"category,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a medical question from the local knowledge base and cite the source documents",
		}, s.handleAsk)
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "browse_category",
		Description: "List documents in a disease category ranked by relevance to an optional query",
	}, s.handleBrowse)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_filters",
		Description: "Show which category a question would be restricted to during retrieval",
	}, s.handleExtractFilters)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, AskOutput{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	answer, err := s.ports.Answer.Ask(ctx, question, domain.DeliveryBlocking)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:   answer.Text,
		NotFound: answer.NotFound,
		Sources:  []SourceOutput{},
	}
	if q := answer.Query; q != nil {
		output.Route = q.Route.String()
		output.Query = q.SearchQuery()
		output.Sources = sourceOutputs(q.Parents)
	}
	return nil, output, nil
}

func (s *Server) handleBrowse(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BrowseInput,
) (*mcp.CallToolResult, BrowseOutput, error) {
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, BrowseOutput{}, fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}

	parents, err := s.ports.Catalog.BrowseCategory(ctx, category, input.Query)
	if err != nil {
		return nil, BrowseOutput{}, err
	}

	docs := sourceOutputs(parents)
	return nil, BrowseOutput{Category: category, Documents: docs, Count: len(docs)}, nil
}

func (s *Server) handleExtractFilters(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input FiltersInput,
) (*mcp.CallToolResult, FiltersOutput, error) {
	filters := s.ports.Catalog.ExtractFilters(input.Question)
	return nil, FiltersOutput{Category: filters.Category}, nil
}

func sourceOutputs(parents []domain.RankedParent) []SourceOutput {
	out := make([]SourceOutput, len(parents))
	for i, p := range parents {
		out[i] = SourceOutput{
			DocumentID: p.Document.ID,
			Label:      documentLabel(p.Document),
			Category:   p.Document.Metadata.Category,
			Path:       p.Document.RelPath,
			URI:        documentURI(p.Document.ID),
			Relevance:  p.Relevance,
		}
	}
	return out
}

func documentLabel(doc domain.ParentDocument) string {
	if label := doc.Metadata.Label(); label != "" {
		return label
	}
	return doc.RelPath
}
