package pathmeta

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
)

// Ensure HierarchicalResolver implements the interface.
var _ driven.PathResolver = (*HierarchicalResolver)(nil)

// MinDepth is the minimum number of path segments below the corpus root:
// book, chapter and file.
const MinDepth = 3

// DefaultChapterIndex is used when a chapter folder has no index prefix.
const DefaultChapterIndex = "0"

var partNumber = regexp.MustCompile(`(?i)part(\d+)`)

// HierarchicalResolver reads guideline books laid out as
// <BookName>/<Index_Chapter_Name>/partN.md.
type HierarchicalResolver struct{}

// NewHierarchical creates a hierarchical resolver.
func NewHierarchical() *HierarchicalResolver {
	return &HierarchicalResolver{}
}

// Kind returns domain.CorpusHierarchical.
func (r *HierarchicalResolver) Kind() domain.CorpusKind {
	return domain.CorpusHierarchical
}

// Resolve parses book, chapter and part. Shallow paths are invalid.
func (r *HierarchicalResolver) Resolve(relPath string) domain.PathResult {
	segs, err := segments(relPath)
	if err != nil {
		return domain.InvalidPath(err.Error())
	}
	if len(segs) < MinDepth {
		return domain.InvalidPath(fmt.Sprintf("path depth %d below %d (want Book/Chapter/file)", len(segs), MinDepth))
	}

	book := SplitCamel(segs[0])
	chapterIndex, chapterName := SplitChapter(segs[1])
	file := segs[len(segs)-1]

	part, err := PartIndex(file)
	if err != nil {
		return domain.InvalidPath(err.Error())
	}

	meta := domain.Metadata{
		BookName:     book,
		ChapterIndex: chapterIndex,
		ChapterName:  chapterName,
		PartIndex:    part,
		SourceFile:   file,
	}
	meta.Hierarchy = Hierarchy(meta)

	if err := meta.Validate(domain.CorpusHierarchical); err != nil {
		return domain.InvalidPath(err.Error())
	}
	return domain.ValidPath(meta)
}

// Hierarchy renders the citation string "<book> > <index>. <chapter> > Part <n>".
func Hierarchy(m domain.Metadata) string {
	return fmt.Sprintf("%s > %s. %s > Part %d", m.BookName, m.ChapterIndex, m.ChapterName, m.PartIndex)
}

// SplitCamel inserts spaces into a compact CamelCase identifier. A boundary
// falls between a lower-case and an upper-case letter, and before the last
// capital of an acronym that is followed by a lower-case letter, so
// "MRIImaging" becomes "MRI Imaging".
func SplitCamel(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && isBoundary(runes, i) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isBoundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	if !isASCIIUpper(cur) {
		return false
	}
	if isASCIILower(prev) {
		return true
	}
	return isASCIIUpper(prev) && i+1 < len(runes) && isASCIILower(runes[i+1])
}

func isASCIIUpper(r rune) bool { return r <= unicode.MaxASCII && unicode.IsUpper(r) }
func isASCIILower(r rune) bool { return r <= unicode.MaxASCII && unicode.IsLower(r) }

// SplitChapter splits "B_Diagnosis_Imaging" into ("B", "Diagnosis Imaging").
// Without an underscore the index is DefaultChapterIndex and the whole
// segment is the name.
func SplitChapter(folder string) (index, name string) {
	index, rest, ok := strings.Cut(folder, "_")
	if !ok {
		return DefaultChapterIndex, folder
	}
	return index, strings.ReplaceAll(rest, "_", " ")
}

// PartIndex extracts N from a "partN" file name, defaulting to 1.
func PartIndex(file string) (int, error) {
	m := partNumber.FindStringSubmatch(file)
	if m == nil {
		return 1, nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("part number in %q: %w", file, err)
	}
	return n, nil
}
