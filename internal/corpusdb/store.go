// Package corpusdb is the scheduler's optional persistence layer: a
// one-connection, fixed-schema narrowing of the teacher's
// internal/database.DBManager (db_manager.go), which manages arbitrary
// named connections for a scripting-language stdlib module. The
// scheduler in spec.md §4.H only ever needs one corpus database at a
// time, so Store drops the connection-name indirection entirely.
//
// Persisted state is outside the core's contract (spec.md §6.4):
// scheduler.Scheduler depends on the Store interface, not a concrete
// driver, and a nil Store is a valid, fully supported configuration.
package corpusdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// CandidateRecord is one row of the corpus: a scheduled candidate program
// plus the score/outcome the scheduler computed for it.
type CandidateRecord struct {
	ProgramText string
	Score       int
	OriginSeed  int64
	Decisions   string
	Hit         bool
	InsertedAt  time.Time
}

// Store persists scheduler candidates. The scheduler only ever calls
// SaveCandidate and Close; Execute/Query/Transaction exist for callers
// that want direct corpus access (e.g. a CLI `corpus` subcommand),
// mirroring the shape DBManager offered its callers.
type Store interface {
	SaveCandidate(ctx context.Context, rec CandidateRecord) error
	Close() error
}

// SQLStore is a database/sql-backed Store supporting the four drivers the
// teacher wires in db_manager.go, plus sqlserver for completeness.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open connects to dsn using driver ("sqlite"/"sqlite3", "postgres"/
// "postgresql", "mysql", or "sqlserver"/"mssql"), configures a small
// connection pool matching DBManager's defaults, and ensures the
// candidates table exists.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	driverName, err := resolveDriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("corpusdb: failed to open %s: %w", driverName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("corpusdb: failed to ping %s: %w", driverName, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &SQLStore{db: db, driver: driverName}
	if err := store.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func resolveDriverName(driver string) (string, error) {
	switch driver {
	case "sqlite", "sqlite3", "":
		return "sqlite", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlserver", "mssql":
		return "sqlserver", nil
	default:
		return "", fmt.Errorf("corpusdb: unsupported driver %q", driver)
	}
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS candidates (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	program_text TEXT NOT NULL,
	score        INTEGER NOT NULL,
	origin_seed  BIGINT NOT NULL,
	decisions    TEXT NOT NULL,
	hit          BOOLEAN NOT NULL,
	inserted_at  TIMESTAMP NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("corpusdb: failed to create candidates table: %w", err)
	}
	return nil
}

// SaveCandidate inserts one corpus row.
func (s *SQLStore) SaveCandidate(ctx context.Context, rec CandidateRecord) error {
	_, err := s.Execute(ctx,
		`INSERT INTO candidates (program_text, score, origin_seed, decisions, hit, inserted_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ProgramText, rec.Score, rec.OriginSeed, rec.Decisions, rec.Hit, rec.InsertedAt)
	return err
}

// Execute runs a query that doesn't return rows, mirroring DBManager's
// Execute but against this Store's one connection.
func (s *SQLStore) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("corpusdb: execution failed: %w", err)
	}
	return result.RowsAffected()
}

// Query runs a query that returns rows, mirroring DBManager's Query.
func (s *SQLStore) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("corpusdb: query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]any
	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range columns {
		valuePtrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// Transaction runs fn within a database transaction, committing on
// success and rolling back on error, mirroring DBManager's Transaction.
func (s *SQLStore) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("corpusdb: failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("corpusdb: transaction failed: %v, rollback failed: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("corpusdb: failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLStore)(nil)
