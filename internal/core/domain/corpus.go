package domain

// CorpusConfig names a corpus and where it lives.
type CorpusConfig struct {
	// Name identifies the corpus, e.g. "case_reports".
	Name string

	// Kind selects normalisation and path resolution.
	Kind CorpusKind

	// Root is the directory to walk.
	Root string

	// Extensions limits which files are ingested (default ".md").
	Extensions []string
}

// Corpus is the in-memory output of ingesting one corpus tree.
type Corpus struct {
	Name      string
	Kind      CorpusKind
	Root      string
	Parents   []ParentDocument
	Fragments []ChildFragment
	Index     *ParentChildIndex
	Skipped   []SkippedFile
}

// Parent returns the parent document with the given ID.
func (c *Corpus) Parent(id string) (*ParentDocument, bool) {
	for i := range c.Parents {
		if c.Parents[i].ID == id {
			return &c.Parents[i], true
		}
	}
	return nil, false
}

// ParentMap indexes parents by ID.
func (c *Corpus) ParentMap() map[string]*ParentDocument {
	m := make(map[string]*ParentDocument, len(c.Parents))
	for i := range c.Parents {
		m[c.Parents[i].ID] = &c.Parents[i]
	}
	return m
}

// BuildReport describes a knowledge-base build.
type BuildReport struct {
	Corpus *Corpus

	// Loaded is true when the index came from a saved snapshot.
	Loaded bool

	// IndexedFragments is the number of fragments in the index.
	IndexedFragments int
}

// CorpusStats summarises an ingested corpus.
type CorpusStats struct {
	Name             string         `json:"name"`
	Kind             CorpusKind     `json:"kind"`
	TotalDocuments   int            `json:"total_documents"`
	TotalFragments   int            `json:"total_fragments"`
	Skipped          int            `json:"skipped"`
	Categories       map[string]int `json:"categories,omitempty"`
	AvgFragmentSize  float64        `json:"avg_fragment_size"`
	IndexedFragments int            `json:"indexed_fragments"`
}

// MetadataRecord is one row of a corpus metadata export.
type MetadataRecord struct {
	Source        string `json:"source"`
	Topic         string `json:"topic,omitempty"`
	Category      string `json:"category,omitempty"`
	Book          string `json:"book,omitempty"`
	Chapter       string `json:"chapter,omitempty"`
	File          string `json:"file,omitempty"`
	ContentLength int    `json:"content_length"`
	Fragments     int    `json:"fragments"`
}
