package domain

// DefaultCategory is assigned to flat-corpus documents whose path matches
// no category keyword.
const DefaultCategory = "其他"

// CategoryEntry maps a path-segment keyword to a localised category label.
type CategoryEntry struct {
	Keyword string
	Label   string
}

// CategoryTable is the ordered keyword table used to classify flat-corpus
// documents and to extract category filters from questions. Order matters:
// the first matching entry wins. A CategoryTable is immutable once built.
type CategoryTable struct {
	entries []CategoryEntry
	labels  []string
}

// NewCategoryTable builds a table from entries in priority order.
// Entries with an empty keyword or label are ignored.
func NewCategoryTable(entries ...CategoryEntry) CategoryTable {
	t := CategoryTable{
		entries: make([]CategoryEntry, 0, len(entries)),
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Keyword == "" || e.Label == "" {
			continue
		}
		t.entries = append(t.entries, e)
		if !seen[e.Label] {
			seen[e.Label] = true
			t.labels = append(t.labels, e.Label)
		}
	}
	return t
}

// DefaultCategoryTable returns the spine-disease case-report table.
func DefaultCategoryTable() CategoryTable {
	return NewCategoryTable(
		CategoryEntry{Keyword: "fracture", Label: "骨折"},
		CategoryEntry{Keyword: "hemangioma", Label: "血管瘤"},
		CategoryEntry{Keyword: "infection", Label: "感染"},
		CategoryEntry{Keyword: "intervertebral", Label: "椎间盘问题"},
		CategoryEntry{Keyword: "malignant_tumor", Label: "恶性肿瘤"},
		CategoryEntry{Keyword: "others", Label: "其他类型疾病"},
	)
}

// Match returns the label of the first entry whose keyword equals one of
// the given path segments.
func (t CategoryTable) Match(segments []string) (string, bool) {
	for _, e := range t.entries {
		for _, seg := range segments {
			if seg == e.Keyword {
				return e.Label, true
			}
		}
	}
	return "", false
}

// Labels returns the distinct labels in table order.
func (t CategoryTable) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// Entries returns a copy of the table entries in priority order.
func (t CategoryTable) Entries() []CategoryEntry {
	out := make([]CategoryEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t CategoryTable) Len() int {
	return len(t.entries)
}
