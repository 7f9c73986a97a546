package mcp

import (
	"github.com/custodia-labs/medrag/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
type Ports struct {
	// Answer answers questions. Nil disables the ask tool.
	Answer driving.AnswerService

	// Catalog serves categories, documents and statistics.
	Catalog driving.CatalogService
}

// NewPorts wires both ports to one knowledge base engine.
func NewPorts(engine driving.KnowledgeBaseService) *Ports {
	return &Ports{Answer: engine, Catalog: engine}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Catalog == nil {
		return ErrMissingEngine
	}
	return nil
}
