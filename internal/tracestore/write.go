package tracestore

import (
	"context"
	"fmt"
)

// WriteRun inserts a run. The run's Seq is assigned by the store; writing
// the same id twice is a no-op.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seq, program_hash, iteration_limit, iterations, finished)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ? FROM runs WHERE true
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.ProgramHash,
		run.IterationLimit,
		run.Iterations,
		run.Finished,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// FinishRun stores the iteration count of a completed run.
func (s *Store) FinishRun(ctx context.Context, runID string, iterations int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET iterations = ?, finished = 1 WHERE id = ?
	`, iterations, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// WriteReplacement inserts one replacement row. Duplicate (run_id, seq)
// pairs are silently ignored.
func (s *Store) WriteReplacement(ctx context.Context, r Replacement) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO replacements
		(run_id, seq, iteration, kind, original, original_digest, replacement, rule)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		r.RunID,
		r.Seq,
		r.Iteration,
		r.Kind,
		r.Original,
		r.OriginalDigest,
		r.Replacement,
		r.Rule,
	)
	if err != nil {
		return fmt.Errorf("write replacement: %w", err)
	}
	return nil
}
