// Package tui provides an interactive terminal user interface for medrag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/medrag/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Engine answers questions and serves parent documents. It must be
	// built before the TUI starts.
	Engine driving.KnowledgeBaseService

	// Corpus is the corpus name shown in the header.
	Corpus string
}

// NewPorts creates a new Ports aggregate.
func NewPorts(engine driving.KnowledgeBaseService, corpus string) *Ports {
	return &Ports{Engine: engine, Corpus: corpus}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Engine == nil {
		return ErrMissingEngine
	}
	return nil
}
