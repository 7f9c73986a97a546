package chunker

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/custodia-labs/medrag/internal/core/ports/driven"
)

var (
	_ driven.IDGenerator = UUIDGenerator{}
	_ driven.IDGenerator = (*SequenceGenerator)(nil)
)

// UUIDGenerator mints random version 4 UUIDs.
type UUIDGenerator struct{}

// NewID returns a fresh UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.New().String()
}

// SequenceGenerator mints "<prefix>-<n>" identifiers from a counter.
// Useful where fragment IDs must be predictable.
type SequenceGenerator struct {
	prefix string
	next   atomic.Int64
}

// NewSequenceGenerator creates a generator starting at 1.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// NewID returns the next identifier.
func (g *SequenceGenerator) NewID() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.next.Add(1))
}
