package pathmeta

import (
	"fmt"
	"path"
	"strings"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
)

// New returns the resolver for a corpus kind.
func New(kind domain.CorpusKind, table domain.CategoryTable) (driven.PathResolver, error) {
	switch kind {
	case domain.CorpusFlat:
		return NewFlat(table), nil
	case domain.CorpusHierarchical:
		return NewHierarchical(), nil
	default:
		return nil, fmt.Errorf("%w: unknown corpus kind %q", domain.ErrInvalidInput, kind)
	}
}

// segments splits a relative path into its non-empty components.
// Paths that escape the corpus root are rejected.
func segments(relPath string) ([]string, error) {
	relPath = strings.ReplaceAll(relPath, "\\", "/")
	if relPath == "" || path.IsAbs(relPath) {
		return nil, fmt.Errorf("not a relative path: %q", relPath)
	}
	clean := path.Clean(relPath)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return nil, fmt.Errorf("path outside corpus root: %q", relPath)
	}
	return strings.Split(clean, "/"), nil
}

// stem returns a file name without its extension.
func stem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
