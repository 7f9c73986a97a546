// Package keyword provides a lexical similarity index over child fragments.
//
// Fragments are scored with Okapi BM25. Text is folded before tokenising
// (NFKC, full-width to half-width, case folding) so that "ＣＴ", "ct" and
// "CT" are the same term. Latin and digit runs become whole-word terms;
// Han runs become single characters plus overlapping bigrams, which gives
// useful recall on unsegmented Chinese text without a dictionary.
//
// Snapshots are persisted through a driven.FragmentStore: the index keeps
// only fragments on disk and rebuilds its postings on Load.
package keyword
