// Package normalisers holds the content normalisers applied to corpus
// files before they are split. Each normaliser is tuned for one corpus
// kind and is selected by the ingest service.
package normalisers
