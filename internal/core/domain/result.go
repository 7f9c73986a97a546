package domain

// PathResult is the outcome of resolving a document's path into metadata.
// Exactly one of Metadata (Valid) or Reason is meaningful.
type PathResult struct {
	Metadata Metadata
	Valid    bool
	Reason   string
}

// ValidPath wraps resolved metadata.
func ValidPath(m Metadata) PathResult {
	return PathResult{Metadata: m, Valid: true}
}

// InvalidPath records why a path could not be resolved.
func InvalidPath(reason string) PathResult {
	return PathResult{Reason: reason}
}

// IngestResult is the per-file outcome of the ingestion pipeline: either a
// parent document with its fragments, or a skip with a reason.
type IngestResult struct {
	// RelPath identifies the file.
	RelPath string

	// Document is set on success.
	Document *ParentDocument

	// Fragments are the document's child fragments, in order.
	Fragments []ChildFragment

	// Skipped is set when the file was excluded from the corpus.
	Skipped bool

	// Reason explains a skip.
	Reason string

	// Degraded is true when chunking fell back to a whole-document fragment.
	Degraded bool
}

// SkipResult builds a skipped result.
func SkipResult(relPath, reason string) IngestResult {
	return IngestResult{RelPath: relPath, Skipped: true, Reason: reason}
}

// SkippedFile records a file excluded during ingestion.
type SkippedFile struct {
	RelPath string `json:"rel_path"`
	Reason  string `json:"reason"`
}
