// Package sqlite persists similarity index snapshots in SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Each corpus owns one snapshot: the ordered list of child
// fragments the index was built from. Saving a snapshot replaces the previous
// one in a single transaction.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.medrag/index/fragments.db
package sqlite
