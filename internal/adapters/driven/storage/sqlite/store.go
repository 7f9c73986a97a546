package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/medrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driven"
)

// dbFile is the database file name inside the data directory.
const dbFile = "fragments.db"

// Verify interface compliance.
var _ driven.FragmentStore = (*Store)(nil)

// Store is a SQLite-backed FragmentStore.
type Store struct {
	db   *sql.DB
	path string
}

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	Corpus    string
	Fragments int
	SavedAt   time.Time
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.medrag/index.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".medrag", "index")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending up migrations in version order.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveFragments replaces the stored snapshot for a corpus.
func (s *Store) SaveFragments(ctx context.Context, corpus string, fragments []domain.ChildFragment) error {
	if corpus == "" {
		return fmt.Errorf("%w: corpus name is required", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Cascades to the fragments table.
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE corpus = ?", corpus); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (corpus, fragment_count, saved_at) VALUES (?, ?, ?)
	`, corpus, len(fragments), time.Now().UTC()); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fragments (corpus, seq, id, parent_id, position, size, content,
			metadata, headings, semantic_context)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for seq, frag := range fragments {
		metadataJSON, err := json.Marshal(frag.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling fragment metadata: %w", err)
		}
		headingsJSON, err := marshalHeadings(frag.Headings)
		if err != nil {
			return err
		}

		if _, err := stmt.ExecContext(ctx, corpus, seq, frag.ID, frag.ParentID, frag.Position,
			frag.Size, frag.Content, string(metadataJSON), headingsJSON,
			nullString(frag.SemanticContext)); err != nil {
			return fmt.Errorf("saving fragment %s: %w", frag.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// LoadFragments returns the stored snapshot in the order it was saved.
// Returns domain.ErrNotFound when the corpus has no snapshot.
func (s *Store) LoadFragments(ctx context.Context, corpus string) ([]domain.ChildFragment, error) {
	info, err := s.Snapshot(ctx, corpus)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, parent_id, position, size, content, metadata, headings, semantic_context
		FROM fragments WHERE corpus = ?
		ORDER BY seq
	`, corpus)
	if err != nil {
		return nil, fmt.Errorf("querying fragments: %w", err)
	}
	defer rows.Close()

	fragments := make([]domain.ChildFragment, 0, info.Fragments)
	for rows.Next() {
		frag, err := scanFragment(rows)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, *frag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fragments: %w", err)
	}

	return fragments, nil
}

// Snapshot returns metadata about a corpus snapshot.
// Returns domain.ErrNotFound when the corpus has no snapshot.
func (s *Store) Snapshot(ctx context.Context, corpus string) (*SnapshotInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT corpus, fragment_count, saved_at FROM snapshots WHERE corpus = ?
	`, corpus)

	var info SnapshotInfo
	if err := row.Scan(&info.Corpus, &info.Fragments, &info.SavedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot %q: %w", corpus, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}
	return &info, nil
}

// DeleteFragments removes a corpus snapshot. Missing snapshots are not an error.
func (s *Store) DeleteFragments(ctx context.Context, corpus string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE corpus = ?", corpus); err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFragment(row scanner) (*domain.ChildFragment, error) {
	var (
		frag            domain.ChildFragment
		metadataJSON    string
		headingsJSON    sql.NullString
		semanticContext sql.NullString
	)

	if err := row.Scan(&frag.ID, &frag.ParentID, &frag.Position, &frag.Size, &frag.Content,
		&metadataJSON, &headingsJSON, &semanticContext); err != nil {
		return nil, fmt.Errorf("scanning fragment: %w", err)
	}

	if err := json.Unmarshal([]byte(metadataJSON), &frag.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling fragment metadata: %w", err)
	}
	if headingsJSON.Valid {
		if err := json.Unmarshal([]byte(headingsJSON.String), &frag.Headings); err != nil {
			return nil, fmt.Errorf("unmarshalling fragment headings: %w", err)
		}
	}
	frag.SemanticContext = semanticContext.String

	return &frag, nil
}

func marshalHeadings(headings []string) (sql.NullString, error) {
	if len(headings) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(headings)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshalling fragment headings: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
