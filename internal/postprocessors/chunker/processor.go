// Package chunker splits documents into heading-delimited fragments.
package chunker

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
	"github.com/custodia-labs/medrag/internal/logger"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultMaxLevel is the deepest heading level that starts a fragment.
const DefaultMaxLevel = 3

// Name is the registry name of the processor.
const Name = "chunker"

var (
	atxHeading = regexp.MustCompile(`^ {0,3}(#{1,6})[ \t]+(.*?)(?:[ \t]+#+)?[ \t]*$`)
	codeFence  = regexp.MustCompile("^ {0,3}(```|~~~)")
)

// Processor splits document content at Markdown headings.
// It implements the PostProcessor interface.
type Processor struct {
	maxLevel int
	ids      driven.IDGenerator
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxLevel sets the deepest heading level (1-6) that splits.
func WithMaxLevel(level int) Option {
	return func(p *Processor) {
		if level >= 1 && level <= 6 {
			p.maxLevel = level
		}
	}
}

// WithIDGenerator sets the fragment identifier source.
func WithIDGenerator(ids driven.IDGenerator) Option {
	return func(p *Processor) {
		if ids != nil {
			p.ids = ids
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxLevel: DefaultMaxLevel,
		ids:      UUIDGenerator{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// section is a run of lines opened by a heading (or the preamble).
type section struct {
	headings []string
	lines    []string
}

// Process splits the document content into fragments.
// Input fragments are ignored; this processor creates new ones from the document.
func (p *Processor) Process(ctx context.Context, doc *domain.ParentDocument, _ []domain.ChildFragment) ([]domain.ChildFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc.Content == "" {
		return nil, nil
	}

	sections, found := p.split(doc.Content)
	if !found {
		logger.Warn("no headings in %s; keeping whole document as one fragment", doc.RelPath)
		return []domain.ChildFragment{domain.WholeFragment(doc, p.ids.NewID())}, nil
	}

	fragments := make([]domain.ChildFragment, 0, len(sections))
	for _, s := range sections {
		content := strings.TrimSpace(strings.Join(s.lines, "\n"))
		if content == "" {
			continue
		}
		fragments = append(fragments, domain.ChildFragment{
			ID:       p.ids.NewID(),
			ParentID: doc.ID,
			Position: len(fragments),
			Size:     utf8.RuneCountInString(content),
			Content:  content,
			Metadata: doc.Metadata,
			Headings: s.headings,
		})
	}

	logger.Debug("chunker: %s -> %d fragments", doc.RelPath, len(fragments))
	return fragments, nil
}

// split groups lines into sections. found is false when no heading at or
// above maxLevel occurs outside a code fence.
func (p *Processor) split(content string) (sections []section, found bool) {
	stack := make([]string, p.maxLevel)
	current := section{}
	var fence string

	for _, line := range strings.Split(content, "\n") {
		if m := codeFence.FindStringSubmatch(line); m != nil {
			switch fence {
			case "":
				fence = m[1]
			case m[1]:
				fence = ""
			}
			current.lines = append(current.lines, line)
			continue
		}

		level, text := 0, ""
		if fence == "" {
			level, text = p.heading(line)
		}
		if level == 0 {
			current.lines = append(current.lines, line)
			continue
		}

		found = true
		sections = append(sections, current)

		stack[level-1] = text
		for i := level; i < len(stack); i++ {
			stack[i] = ""
		}
		current = section{headings: activeHeadings(stack), lines: []string{line}}
	}

	sections = append(sections, current)
	return sections, found
}

// heading returns the level and text of a splitting heading line, or 0.
func (p *Processor) heading(line string) (int, string) {
	m := atxHeading.FindStringSubmatch(line)
	if m == nil {
		return 0, ""
	}
	level := len(m[1])
	text := strings.TrimSpace(m[2])
	if level > p.maxLevel || text == "" {
		return 0, ""
	}
	return level, text
}

func activeHeadings(stack []string) []string {
	var out []string
	for _, h := range stack {
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}
