package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

// uriScheme is the custom URI scheme for medrag resources.
const uriScheme = "medrag://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "categories",
		Name:        "categories",
		Description: "Category labels with their document counts",
		MIMEType:    "application/json",
	}, s.handleCategoriesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Knowledge base statistics",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "categories/{category}/documents",
		Name:        "category-documents",
		Description: "Documents classified under a category",
		MIMEType:    "application/json",
	}, s.handleCategoryDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Full text of a source document",
		MIMEType:    "text/markdown",
	}, s.handleDocumentContentResource)
}

type categoryInfo struct {
	Name      string `json:"name"`
	Documents int    `json:"documents"`
	URI       string `json:"uri"`
}

type documentInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path"`
	URI   string `json:"uri"`
}

func (s *Server) handleCategoriesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	names := s.ports.Catalog.Categories()
	infos := make([]categoryInfo, 0, len(names))
	for _, name := range names {
		docs, err := s.ports.Catalog.DocumentsByCategory(name)
		if err != nil {
			return nil, fmt.Errorf("listing category %s: %w", name, err)
		}
		infos = append(infos, categoryInfo{
			Name:      name,
			Documents: len(docs),
			URI:       uriScheme + "categories/" + url.PathEscape(name) + "/documents",
		})
	}
	return jsonResult(req.Params.URI, infos)
}

func (s *Server) handleStatsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Catalog.Stats()
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return jsonResult(req.Params.URI, stats)
}

func (s *Server) handleCategoryDocumentsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	category := extractCategory(req.Params.URI)
	if category == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Catalog.DocumentsByCategory(category)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	infos := make([]documentInfo, len(docs))
	for i, doc := range docs {
		infos[i] = documentInfo{
			ID:    doc.ID,
			Label: documentLabel(doc),
			Path:  doc.RelPath,
			URI:   documentURI(doc.ID),
		}
	}
	return jsonResult(req.Params.URI, infos)
}

func (s *Server) handleDocumentContentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Catalog.Document(docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     doc.Content,
		}},
	}, nil
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func documentURI(id string) string {
	return uriScheme + "documents/" + id
}

// extractCategory extracts the label from medrag://categories/{category}/documents.
func extractCategory(uri string) string {
	const prefix = uriScheme + "categories/"
	const suffix = "/documents"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	category, err := url.PathUnescape(strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix))
	if err != nil {
		return ""
	}
	return category
}

// extractDocumentID extracts the ID from medrag://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
