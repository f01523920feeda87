package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-evolution/pkg/logging"
)

// TablePrefix is prepended to every table the Postgres sink creates
const TablePrefix = "evolution_"

// PostgresSink bulk-loads each table with COPY, tagging every row with the
// run id so that several runs can share one database.
type PostgresSink struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPostgresSink connects to databaseURL and verifies the connection
func NewPostgresSink(ctx context.Context, databaseURL string, logger logging.Logger) (*PostgresSink, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pooling configuration
	config.MaxConns = 4
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &PostgresSink{pool: pool, logger: logger.With(logging.Component("export.postgres"))}, nil
}

// Write implements Sink. All tables are loaded in one transaction.
func (s *PostgresSink) Write(ctx context.Context, r *Report) error {
	tables, err := Tables(r)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range tables {
		if _, err := tx.Exec(ctx, createTableSQL(t)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}

		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{TablePrefix + t.Name},
			copyColumns(t),
			pgx.CopyFromSlice(len(t.Rows), func(i int) ([]any, error) {
				return append([]any{r.RunID}, t.Rows[i]...), nil
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", t.Name, err)
		}
		s.logger.Debug("table copied", logging.String("table", t.Name), logging.Count(int(n)))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Info("report written", logging.RunID(r.RunID))
	return nil
}

// Close closes the database connection pool
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}

// createTableSQL renders the DDL for t with a leading run_id column
func createTableSQL(t Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(pgx.Identifier{TablePrefix + t.Name}.Sanitize())
	b.WriteString(" (\n\trun_id TEXT NOT NULL")
	for _, c := range t.Columns {
		b.WriteString(",\n\t")
		b.WriteString(pgx.Identifier{c.Name}.Sanitize())
		b.WriteString(" ")
		b.WriteString(c.SQLType)
	}
	b.WriteString("\n)")
	return b.String()
}

func copyColumns(t Table) []string {
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, "run_id")
	cols = append(cols, t.Header()...)
	return cols
}

// MultiSink writes to every sink in order, stopping at the first failure
type MultiSink []Sink

// Write implements Sink
func (m MultiSink) Write(ctx context.Context, r *Report) error {
	for _, s := range m {
		if err := s.Write(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Sink, closing every sink and returning the first error
func (m MultiSink) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
