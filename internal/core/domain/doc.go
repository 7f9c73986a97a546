// Package domain defines the core business entities for medrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ParentDocument: A normalised source file with path-derived metadata
//   - ChildFragment: A retrievable unit split from one parent
//   - Corpus: The parents, fragments and skips of one ingestion run
//   - QueryContext: A question as it moves through routing and retrieval
//   - Answer: Generated text or a stream, with the context it came from
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
