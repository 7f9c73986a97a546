package pathmeta

import (
	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
)

// Ensure FlatResolver implements the interface.
var _ driven.PathResolver = (*FlatResolver)(nil)

// FlatResolver classifies case reports laid out as
// <category keyword>/.../<topic>/<file>.
type FlatResolver struct {
	table domain.CategoryTable
}

// NewFlat creates a flat resolver over the given category table.
// A zero table means the default case-report categories.
func NewFlat(table domain.CategoryTable) *FlatResolver {
	if table.Len() == 0 {
		table = domain.DefaultCategoryTable()
	}
	return &FlatResolver{table: table}
}

// Kind returns domain.CorpusFlat.
func (r *FlatResolver) Kind() domain.CorpusKind {
	return domain.CorpusFlat
}

// Table returns the category table the resolver matches against.
func (r *FlatResolver) Table() domain.CategoryTable {
	return r.table
}

// Resolve assigns the first matching category and the topic folder.
func (r *FlatResolver) Resolve(relPath string) domain.PathResult {
	segs, err := segments(relPath)
	if err != nil {
		return domain.InvalidPath(err.Error())
	}

	dirs := segs[:len(segs)-1]
	file := segs[len(segs)-1]

	category, ok := r.table.Match(dirs)
	if !ok {
		category = domain.DefaultCategory
	}

	topic := stem(file)
	if len(dirs) > 0 {
		topic = dirs[len(dirs)-1]
	}

	return domain.ValidPath(domain.Metadata{
		Category:   category,
		Topic:      topic,
		SourceFile: file,
	})
}
