// Package audit records tool invocations in a local sqlite database.
// The log is write-only on the request path; it is an operator's record,
// not a cache, and is never consulted when serving a call.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tool_calls (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	tool        TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_tool_calls_tool ON tool_calls(tool);
`

// Store is a sqlite-backed invocation log.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the audit database at dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping audit database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit database: %w", err)
	}

	return &Store{db: db, logger: slog.Default()}, nil
}

// Record appends one invocation row. Failures are logged, not returned:
// a broken audit disk must not fail the tool call itself.
func (s *Store) Record(ctx context.Context, tool, outcome string, duration time.Duration) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tool_calls (tool, outcome, duration_ms) VALUES (?, ?, ?)`,
		tool, outcome, duration.Milliseconds())
	if err != nil {
		s.logger.Error("audit write failed", "tool", tool, "error", err)
	}
}

// CountByTool returns the number of recorded calls per tool.
func (s *Store) CountByTool(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tool, COUNT(*) FROM tool_calls GROUP BY tool`)
	if err != nil {
		return nil, fmt.Errorf("query audit counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var tool string
		var n int
		if err := rows.Scan(&tool, &n); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		counts[tool] = n
	}
	return counts, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
