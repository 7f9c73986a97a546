// Package markdown cleans medical Markdown documents before structural
// analysis. Two variants exist: one for flat case-report corpora and one
// for hierarchical guideline books.
package markdown

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	flatReferences = regexp.MustCompile(`(?im)^#+\s*(references|bibliography|literature cited|works cited)`)
	bookReferences = regexp.MustCompile(`(?im)^#+\s*(references|bibliography|literature cited)`)

	lineBreakTag = regexp.MustCompile(`(?i)<br\s*/?>`)
	markupTag    = regexp.MustCompile(`<[^>]+>`)

	// Images never span lines.
	image        = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	imageCaption = regexp.MustCompile(`!\[(.*?)\]\(.*?\)`)

	blankRun = regexp.MustCompile(`\n{3,}`)
)

// Normaliser strips reference sections, markup and images.
type Normaliser struct {
	kind       domain.CorpusKind
	references *regexp.Regexp
}

// New creates a normaliser for the given corpus kind.
// Unknown kinds get the flat behaviour.
func New(kind domain.CorpusKind) *Normaliser {
	if kind == domain.CorpusHierarchical {
		return &Normaliser{kind: kind, references: bookReferences}
	}
	return &Normaliser{kind: domain.CorpusFlat, references: flatReferences}
}

// Kind returns the corpus kind this normaliser is tuned for.
func (n *Normaliser) Kind() domain.CorpusKind {
	return n.kind
}

// Normalise returns the cleaned body text.
func (n *Normaliser) Normalise(content string) string {
	if content == "" {
		return ""
	}

	// Everything from the bibliography heading onward is dropped.
	if loc := n.references.FindStringIndex(content); loc != nil {
		content = content[:loc[0]]
	}

	if n.kind == domain.CorpusHierarchical {
		content = lineBreakTag.ReplaceAllString(content, "\n")
		content = markupTag.ReplaceAllString(content, "")
		content = imageCaption.ReplaceAllString(content, "$1")
	} else {
		content = markupTag.ReplaceAllString(content, "")
		content = image.ReplaceAllString(content, "")
	}

	content = blankRun.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
