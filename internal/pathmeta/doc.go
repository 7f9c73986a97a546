// Package pathmeta derives classification metadata from where a document
// sits in its corpus tree.
//
// Flat case-report corpora are classified by the first category keyword
// folder on the path. Hierarchical guideline corpora read book, chapter and
// part from a fixed Book/Index_Chapter/partN.md layout.
package pathmeta
