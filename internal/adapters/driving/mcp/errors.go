// Package mcp provides an MCP (Model Context Protocol) server adapter for medrag.
// It lets AI assistants ask questions against the knowledge base and read
// the cited documents.
package mcp

import "errors"

// ErrMissingEngine is returned when the knowledge base engine is not provided.
var ErrMissingEngine = errors.New("mcp: knowledge base engine is required")
