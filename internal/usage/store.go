// Package usage keeps per-day draft counts in a local SQLite database.
// Only counters are stored; instructions and drafts never touch disk.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Source identifies where a draft request came from.
type Source string

const (
	SourceSlack Source = "slack"
	SourceCLI   Source = "cli"
)

// Outcome is the result of a draft request.
type Outcome string

const (
	OutcomeOK    Outcome = "ok"
	OutcomeError Outcome = "error"
)

// Sources lists every known source
var Sources = []Source{SourceSlack, SourceCLI}

const dateLayout = "2006-01-02"

// Store manages SQLite persistence for draft counts.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultPath returns ~/.maildraft/stats.db
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".maildraft", "stats.db"), nil
}

// Open opens (and creates if needed) the database at dbPath.
// An empty path selects DefaultPath.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		var err error
		if dbPath, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serialises writers from concurrent mentions.
	db.SetMaxOpenConns(1)

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS draft_counts (
			source TEXT NOT NULL,
			outcome TEXT NOT NULL,
			date TEXT NOT NULL,
			count INTEGER DEFAULT 0,
			PRIMARY KEY (source, outcome, date)
		);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Record increments today's counter for source and outcome.
func (s *Store) Record(ctx context.Context, source Source, outcome Outcome) error {
	upsertSQL := `
		INSERT INTO draft_counts (source, outcome, date, count)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(source, outcome, date) DO UPDATE SET count = count + 1;
	`
	if _, err := s.db.ExecContext(ctx, upsertSQL, string(source), string(outcome), s.now().Format(dateLayout)); err != nil {
		return fmt.Errorf("failed to record draft: %w", err)
	}
	return nil
}

// Totals is a cumulative count split by outcome.
type Totals struct {
	OK     int64
	Errors int64
}

// AllTotals returns cumulative counts for every known source.
func (s *Store) AllTotals(ctx context.Context) (map[Source]Totals, error) {
	result := make(map[Source]Totals, len(Sources))
	for _, src := range Sources {
		result[src] = Totals{}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT source, outcome, COALESCE(SUM(count), 0) FROM draft_counts GROUP BY source, outcome",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var source, outcome string
		var total int64
		if err := rows.Scan(&source, &outcome, &total); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		t := result[Source(source)]
		if Outcome(outcome) == OutcomeError {
			t.Errors += total
		} else {
			t.OK += total
		}
		result[Source(source)] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

// CountByDate returns the count for one source, outcome and day (YYYY-MM-DD).
func (s *Store) CountByDate(ctx context.Context, source Source, outcome Outcome, date string) (int64, error) {
	var count int64
	row := s.db.QueryRowContext(ctx,
		"SELECT count FROM draft_counts WHERE source = ? AND outcome = ? AND date = ?",
		string(source), string(outcome), date,
	)
	if err := row.Scan(&count); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get count: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
