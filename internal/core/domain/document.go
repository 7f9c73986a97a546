package domain

import (
	"crypto/md5" //nolint:gosec // identity hash, not a security boundary
	"encoding/hex"
	"fmt"
	"path/filepath"
	"unicode/utf8"
)

// CorpusKind selects how a corpus lays out its files and which metadata
// fields its documents carry.
type CorpusKind string

const (
	// CorpusFlat is a category corpus: <root>/<category>/<topic>/<file>.md.
	CorpusFlat CorpusKind = "flat"

	// CorpusHierarchical is a book corpus: <root>/<Book>/<Idx_Chapter>/partN.md.
	CorpusHierarchical CorpusKind = "hierarchical"
)

// IsValid returns true if the corpus kind is recognised.
func (k CorpusKind) IsValid() bool {
	return k == CorpusFlat || k == CorpusHierarchical
}

// String returns the string representation.
func (k CorpusKind) String() string {
	return string(k)
}

// Metadata is the classification attached to a parent document and
// inherited by each of its fragments. Which fields are set depends on the
// corpus kind.
type Metadata struct {
	// Category is the localised category label (flat corpora).
	Category string `json:"category,omitempty"`

	// Topic is the disease/topic identifier, the document's folder name (flat corpora).
	Topic string `json:"topic,omitempty"`

	// BookName is the space-separated book title (hierarchical corpora).
	BookName string `json:"book_name,omitempty"`

	// ChapterIndex is the chapter prefix, e.g. "B" (hierarchical corpora).
	ChapterIndex string `json:"chapter_index,omitempty"`

	// ChapterName is the chapter title, e.g. "Diagnosis Imaging" (hierarchical corpora).
	ChapterName string `json:"chapter_name,omitempty"`

	// PartIndex is the part number taken from the file name (hierarchical corpora).
	PartIndex int `json:"part_index,omitempty"`

	// SourceFile is the bare file name (hierarchical corpora).
	SourceFile string `json:"source_file,omitempty"`

	// Hierarchy is the citation label "<book> > <idx>. <chapter> > Part <n>".
	Hierarchy string `json:"hierarchy,omitempty"`
}

// Validate checks that the fields required by the corpus kind are present.
func (m Metadata) Validate(kind CorpusKind) error {
	switch kind {
	case CorpusFlat:
		if m.Category == "" {
			return fmt.Errorf("%w: flat metadata requires a category", ErrInvalidInput)
		}
	case CorpusHierarchical:
		if m.BookName == "" || m.ChapterName == "" {
			return fmt.Errorf("%w: hierarchical metadata requires book and chapter", ErrInvalidInput)
		}
		if m.PartIndex < 0 {
			return fmt.Errorf("%w: negative part index %d", ErrInvalidInput, m.PartIndex)
		}
	default:
		return fmt.Errorf("%w: unknown corpus kind %q", ErrInvalidInput, kind)
	}
	return nil
}

// Label returns the human-readable name used when citing a document:
// the hierarchy string for book corpora, the topic otherwise.
func (m Metadata) Label() string {
	if m.Hierarchy != "" {
		return m.Hierarchy
	}
	return m.Topic
}

// ParentDocument is one physical source file, the citation unit.
// It is created once during ingestion and never mutated.
type ParentDocument struct {
	// ID is the md5 hex digest of RelPath. Stable across runs.
	ID string `json:"id"`

	// Source is the path the file was read from.
	Source string `json:"source"`

	// RelPath is the slash-separated path relative to the corpus root.
	RelPath string `json:"rel_path"`

	// Kind is the corpus kind the document belongs to.
	Kind CorpusKind `json:"kind"`

	// Content is the normalised full text.
	Content string `json:"-"`

	// Metadata is the path-derived classification.
	Metadata Metadata `json:"metadata"`
}

// NewParentDocument builds a validated parent document. The identifier is
// derived from relPath so re-ingesting a corpus reproduces it.
func NewParentDocument(kind CorpusKind, source, relPath, content string, meta Metadata) (*ParentDocument, error) {
	if relPath == "" {
		return nil, fmt.Errorf("%w: empty relative path", ErrInvalidInput)
	}
	if err := meta.Validate(kind); err != nil {
		return nil, err
	}
	relPath = filepath.ToSlash(relPath)
	return &ParentDocument{
		ID:       ParentID(relPath),
		Source:   source,
		RelPath:  relPath,
		Kind:     kind,
		Content:  content,
		Metadata: meta,
	}, nil
}

// ParentID returns the deterministic identifier for a relative path.
func ParentID(relPath string) string {
	sum := md5.Sum([]byte(filepath.ToSlash(relPath))) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}

// ChildFragment is a heading-delimited slice of exactly one parent
// document, the search unit.
type ChildFragment struct {
	// ID is freshly generated per fragment. Not stable across runs.
	ID string `json:"id"`

	// ParentID references the owning ParentDocument.
	ParentID string `json:"parent_id"`

	// Position is the ordinal within the parent.
	Position int `json:"position"`

	// Size is the content length in characters.
	Size int `json:"size"`

	// Content is the fragment text, heading line included.
	Content string `json:"content"`

	// Metadata is inherited from the parent.
	Metadata Metadata `json:"metadata"`

	// Headings is the active level 1-3 heading path at this fragment.
	Headings []string `json:"headings,omitempty"`

	// SemanticContext joins book, chapter and headings (hierarchical corpora).
	SemanticContext string `json:"semantic_context,omitempty"`
}

// Title returns the fragment's innermost heading, or "" for a headless fragment.
func (c ChildFragment) Title() string {
	if len(c.Headings) == 0 {
		return ""
	}
	return c.Headings[len(c.Headings)-1]
}

// WholeFragment builds the single fragment covering an entire document,
// used when a document has no heading structure or splitting failed.
func WholeFragment(doc *ParentDocument, id string) ChildFragment {
	return ChildFragment{
		ID:       id,
		ParentID: doc.ID,
		Position: 0,
		Size:     utf8.RuneCountInString(doc.Content),
		Content:  doc.Content,
		Metadata: doc.Metadata,
	}
}

// RankedParent is a resolved parent with the number of retrieved fragments
// that referenced it.
type RankedParent struct {
	Document  ParentDocument
	Relevance int
}
