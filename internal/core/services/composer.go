package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

// DefaultContextMaxChars is the default context budget in characters.
const DefaultContextMaxChars = 2000

// NoContextMessage is the context used when no documents were resolved.
const NoContextMessage = "暂无相关疾病信息。"

// contextSeparator is prefixed to every non-empty context.
var contextSeparator = "\n" + strings.Repeat("=", 50)

// ContextComposer packs resolved documents into a bounded context string.
type ContextComposer struct {
	maxChars int
}

// NewContextComposer creates a composer; non-positive budgets use the default.
func NewContextComposer(maxChars int) *ContextComposer {
	if maxChars <= 0 {
		maxChars = DefaultContextMaxChars
	}
	return &ContextComposer{maxChars: maxChars}
}

// Compose greedily appends one block per document, in order, stopping at
// the first block that would exceed the budget. Blocks are never cut.
func (c *ContextComposer) Compose(parents []domain.RankedParent) string {
	if len(parents) == 0 {
		return NoContextMessage
	}

	blocks := make([]string, 0, len(parents))
	used := 0
	for i := range parents {
		block := Block(i+1, &parents[i].Document)
		n := utf8.RuneCountInString(block)
		if used+n > c.maxChars {
			break
		}
		blocks = append(blocks, block)
		used += n
	}

	return contextSeparator + strings.Join(blocks, "\n")
}

// Block formats one document as "【治疗方案 i】 topic | 分类: category\ncontent\n".
func Block(i int, doc *domain.ParentDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "【治疗方案 %d】", i)
	if label := doc.Metadata.Label(); label != "" {
		b.WriteString(" " + label)
	}
	if doc.Metadata.Category != "" {
		b.WriteString(" | 分类: " + doc.Metadata.Category)
	}
	b.WriteString("\n" + doc.Content + "\n")
	return b.String()
}
