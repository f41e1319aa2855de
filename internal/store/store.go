package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"slices"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades a run history by one schema version. All statements of
// a migration and the user_version bump commit together.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations is the schema history of the run database, oldest first.
var migrations = []migration{
	{version: 1, name: "runs and events", stmts: []string{schemaSQL}},
	{version: 2, name: "history filter index", stmts: []string{
		`CREATE INDEX IF NOT EXISTS idx_runs_algorithm_outcome ON runs(algorithm, outcome)`,
	}},
}

// SchemaVersion is the newest schema this package reads and writes.
var SchemaVersion = migrations[len(migrations)-1].version

// requiredColumns are the columns the read and write paths rely on. Open
// rejects a database whose tables lack any of them.
var requiredColumns = map[string][]string{
	"runs": {
		"id", "algorithm", "size", "input", "input_hash", "output", "outcome",
		"comparisons", "swaps", "elapsed_ns", "events", "dropped", "trace_hash",
		"error", "engine_version",
	},
	"events": {"run_id", "seq", "kind", "i", "j", "comparisons", "swaps"},
}

// SchemaError reports a database this build cannot use: written by a newer
// sortviz, or not a run history at all.
type SchemaError struct {
	Path    string
	Version int
	Reason  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: schema v%d: %s", e.Path, e.Version, e.Reason)
}

// Store is the run history database.
type Store struct {
	db   *sql.DB
	path string
}

// Info summarizes a run history.
type Info struct {
	Path          string `json:"path"`
	SchemaVersion int    `json:"schema_version"`
	Runs          int    `json:"runs"`
	Events        int    `json:"events"`
}

// Open creates or opens the run history at path and brings its schema up to
// SchemaVersion.
//
// Every connection runs with WAL journaling, synchronous=NORMAL, a 5s busy
// timeout and foreign keys on, so deleting a run removes its trace. Writes
// go through a single connection; runs are small and written once.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(db, path); err != nil {
		db.Close()
		return nil, err
	}
	if err := checkTables(db, path); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// dsn attaches the connection pragmas as go-sqlite3 parameters, so every
// pooled connection gets them, not only the first.
func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", "5000")
	q.Set("_foreign_keys", "on")
	return path + "?" + q.Encode()
}

// Close closes the database. Closing a zero Store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Info counts the stored runs and trace events.
func (s *Store) Info(ctx context.Context) (Info, error) {
	info := Info{Path: s.path}
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&info.SchemaVersion); err != nil {
		return Info{}, fmt.Errorf("read schema version: %w", err)
	}
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM runs), (SELECT COUNT(*) FROM events)`,
	).Scan(&info.Runs, &info.Events)
	if err != nil {
		return Info{}, fmt.Errorf("count runs: %w", err)
	}
	return info, nil
}

func migrate(db *sql.DB, path string) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > SchemaVersion {
		return &SchemaError{
			Path:    path,
			Version: version,
			Reason:  fmt.Sprintf("newer than supported v%d", SchemaVersion),
		}
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return err
	}
	return tx.Commit()
}

// checkTables rejects a database that has tables named runs or events with
// some other shape, such as another tool's database at the same path.
func checkTables(db *sql.DB, path string) error {
	for _, table := range []string{"runs", "events"} {
		have, err := tableColumns(db, table)
		if err != nil {
			return err
		}
		for _, col := range requiredColumns[table] {
			if !slices.Contains(have, col) {
				return &SchemaError{
					Path:    path,
					Version: SchemaVersion,
					Reason:  fmt.Sprintf("table %s has no column %s; not a sortviz run history", table, col),
				}
			}
		}
	}
	return nil
}

func tableColumns(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("inspect table %s: %w", table, err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}
