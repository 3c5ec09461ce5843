package tracestore

import (
	"context"
	"fmt"

	"github.com/roach88/trl/internal/ir"
	"github.com/roach88/trl/internal/termdb"
)

// Recorder writes the replacement events of one rewrite run. Install
// Observe as the database's replacement observer.
//
// The observer callback has no context or error return, so the Recorder
// keeps the context it was started with and remembers the first write
// error; Finish reports it.
type Recorder struct {
	ctx   context.Context
	store *Store
	db    *termdb.Database
	runID string
	seq   int64
	err   error
}

// StartRun writes the run row for db's current frame and returns a
// Recorder for its events.
func (s *Store) StartRun(ctx context.Context, db *termdb.Database, runID string, limit int) (*Recorder, error) {
	hash, err := ir.ProgramHash(db.ReadCurrentFrame())
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	if err := s.WriteRun(ctx, Run{ID: runID, ProgramHash: hash, IterationLimit: limit}); err != nil {
		return nil, err
	}
	return &Recorder{ctx: ctx, store: s, db: db, runID: runID}, nil
}

// RunID returns the id of the run being recorded.
func (r *Recorder) RunID() string {
	return r.runID
}

// Observe records one replacement. After the first failed write it drops
// every later event.
func (r *Recorder) Observe(rep termdb.TermReplacement) {
	if r.err != nil {
		return
	}

	digest, err := ir.TermDigest(r.db.ReadTerm(rep.Original))
	if err != nil {
		r.err = fmt.Errorf("record replacement: %w", err)
		return
	}

	r.seq++
	row := Replacement{
		RunID:          r.runID,
		Seq:            r.seq,
		Iteration:      rep.Iteration,
		Kind:           rep.Type().String(),
		Original:       r.db.TermString(rep.Original),
		OriginalDigest: digest,
	}
	if !rep.IsDelete() {
		s := r.db.TermString(rep.Replacement)
		row.Replacement = &s
	}
	if rep.Rule != nil {
		s := r.db.RuleString(*rep.Rule)
		row.Rule = &s
	}
	r.err = r.store.WriteReplacement(r.ctx, row)
}

// Recorded returns how many events were written.
func (r *Recorder) Recorded() int64 {
	return r.seq
}

// Finish marks the run complete. It returns the first recording error, if any.
func (r *Recorder) Finish(iterations int) error {
	if r.err != nil {
		return r.err
	}
	return r.store.FinishRun(r.ctx, r.runID, iterations)
}
