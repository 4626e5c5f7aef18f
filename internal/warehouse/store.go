// Package warehouse is the persistence adapter around the DuckDB file.
//
// It owns every SQL statement in the repository: the transforms work on
// in-memory slices and this package moves those slices in and out of the
// database. Tables live in four schemas: raw (verbatim ingested rows),
// silver (cleaned loans), gold (star schema), and meta (run journal).
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// insertBatchSize is how many rows go into a single multi-row INSERT.
// DuckDB handles large statements fine; this bounds statement size and
// argument count.
const insertBatchSize = 500

// Store wraps the DuckDB database file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if absent) the DuckDB file and ensures all four
// schemas exist. The caller must Close the store when done.
func Open(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb at %s: %w", path, err)
	}

	// Single-process batch pipeline: one connection is all we want, and it
	// keeps multi-statement sequences on the same DuckDB session.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to duckdb at %s: %w", path, err)
	}

	for _, schema := range []string{"raw", "silver", "gold", "meta"} {
		if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// tableExists reports whether a table exists in the given schema.
func (s *Store) tableExists(ctx context.Context, schema, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?`,
		schema, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking table %s.%s: %w", schema, name, err)
	}
	return count > 0, nil
}

// insertRows writes rows through chunked multi-row INSERTs. toArgs must
// return one argument per column named in columns.
func (s *Store) insertRows(ctx context.Context, table string, columns []string, n int, toArgs func(i int) []any) error {
	for start := 0; start < n; start += insertBatchSize {
		end := start + insertBatchSize
		if end > n {
			end = n
		}

		placeholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"
		values := make([]string, 0, end-start)
		args := make([]any, 0, (end-start)*len(columns))
		for i := start; i < end; i++ {
			values = append(values, placeholder)
			args = append(args, toArgs(i)...)
		}

		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
			table, strings.Join(columns, ", "), strings.Join(values, ", "))
		if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
	}
	return nil
}

// joinColumns renders a column list for a SELECT or INSERT.
func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}

// count returns the row count of a table.
func (s *Store) count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}
