package harness

import (
	"context"
	"fmt"

	"github.com/roach88/trl/internal/ir"
	"github.com/roach88/trl/internal/loader"
	"github.com/roach88/trl/internal/mutation"
	"github.com/roach88/trl/internal/render"
	"github.com/roach88/trl/internal/termdb"
	"github.com/roach88/trl/internal/testutil"
	"github.com/roach88/trl/internal/tracestore"
)

// Run executes a scenario and returns its result. Assertion failures are
// reported in the result; an error means the scenario could not run.
//
// Each scenario gets a fresh term database and a fresh in-memory trace
// store, and records under a fixed run id, so two runs of the same scenario
// produce identical results.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	list, err := loadProgram(scenario)
	if err != nil {
		return nil, err
	}

	db := termdb.New(termdb.WithLogger(testutil.DiscardLogger()))
	if err := db.StoreStatements(list); err != nil {
		return nil, fmt.Errorf("failed to store program: %w", err)
	}
	for _, m := range scenario.Mutations {
		if m == MutationCommonSubterms {
			db.Mutate(mutation.NewCommonSubterms())
		}
	}
	if err := registerEvaluators(db, scenario.Evaluators); err != nil {
		return nil, err
	}

	st, err := tracestore.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory trace store: %w", err)
	}
	defer st.Close()

	var gen tracestore.RunIDGenerator = testutil.NewFixedRunIDGenerator(scenario.RunID)
	rec, err := st.StartRun(ctx, db, gen.Generate(), db.IterationLimit(scenario.Iterations))
	if err != nil {
		return nil, err
	}
	db.SetReplacementObserver(rec.Observe)

	n, err := db.Rewrite(ctx, scenario.Iterations)
	if err != nil {
		return nil, fmt.Errorf("failed to rewrite: %w", err)
	}
	if err := rec.Finish(n); err != nil {
		return nil, fmt.Errorf("failed to record trace: %w", err)
	}

	rows, err := st.ReadReplacements(ctx, rec.RunID())
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.RunID = rec.RunID()
	result.Iterations = n
	result.Frame = render.Program(db.ReadCurrentFrame())
	for _, row := range rows {
		result.Trace = append(result.Trace, traceEvent(row))
	}

	actx := &AssertionContext{DB: db}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func loadProgram(s *Scenario) (ir.StatementList, error) {
	var (
		list ir.StatementList
		errs []error
	)
	if s.Program != nil {
		list, errs = loader.Convert(*s.Program, loader.LoadModeFailFast)
	} else {
		list, errs = loader.LoadFile(s.ProgramFile, loader.LoadModeFailFast)
	}
	if len(errs) > 0 {
		return ir.StatementList{}, fmt.Errorf("failed to load program: %w", errs[0])
	}
	return list, nil
}
