package tracestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ListRuns returns every run in the order it was written.
// Returns an empty slice (not nil) when there are no runs.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, program_hash, iteration_limit, iterations, finished
		FROM runs
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a single run or ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, program_hash, iteration_limit, iterations, finished
		FROM runs
		WHERE id = ?
	`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	return run, err
}

// ReadReplacements returns the replacements of a run ordered by seq.
// Returns an empty slice (not nil) when the run recorded none.
func (s *Store) ReadReplacements(ctx context.Context, runID string) ([]Replacement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, iteration, kind, original, original_digest, replacement, rule
		FROM replacements
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query replacements: %w", err)
	}
	defer rows.Close()

	out := []Replacement{}
	for rows.Next() {
		var (
			r           Replacement
			replacement sql.NullString
			rule        sql.NullString
		)
		if err := rows.Scan(&r.RunID, &r.Seq, &r.Iteration, &r.Kind, &r.Original, &r.OriginalDigest, &replacement, &rule); err != nil {
			return nil, fmt.Errorf("scan replacement: %w", err)
		}
		if replacement.Valid {
			r.Replacement = &replacement.String
		}
		if rule.Valid {
			r.Rule = &rule.String
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate replacements: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	if err := row.Scan(&run.ID, &run.Seq, &run.ProgramHash, &run.IterationLimit, &run.Iterations, &run.Finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}
