package tracestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "open %d", i)

		version, err := s.SchemaVersion(t.Context())
		require.NoError(t, err)
		assert.Equal(t, currentSchemaVersion, version)
		require.NoError(t, s.Close())
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	assert.ErrorContains(t, err, "newer than supported")
}

func TestOpen_Pragmas(t *testing.T) {
	s := openTestStore(t)

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestRuns_OrderedBySeq(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	for _, id := range []string{"zz", "aa", "mm"} {
		require.NoError(t, s.WriteRun(ctx, Run{ID: id, ProgramHash: "h-" + id, IterationLimit: 10}))
	}
	// Same id again is ignored.
	require.NoError(t, s.WriteRun(ctx, Run{ID: "zz", ProgramHash: "other"}))

	runs, err = s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"zz", "aa", "mm"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
	assert.Equal(t, []int64{1, 2, 3}, []int64{runs[0].Seq, runs[1].Seq, runs[2].Seq})
	assert.Equal(t, "h-zz", runs[0].ProgramHash)
	assert.False(t, runs[0].Finished)
}

func TestFinishRun(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()
	require.NoError(t, s.WriteRun(ctx, Run{ID: "r1", ProgramHash: "h", IterationLimit: 5}))

	require.NoError(t, s.FinishRun(ctx, "r1", 3))
	run, err := s.ReadRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, Run{ID: "r1", Seq: 1, ProgramHash: "h", IterationLimit: 5, Iterations: 3, Finished: true}, run)

	assert.ErrorIs(t, s.FinishRun(ctx, "missing", 1), ErrRunNotFound)
	_, err = s.ReadRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReplacements_OrderedBySeq(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()
	require.NoError(t, s.WriteRun(ctx, Run{ID: "r1", ProgramHash: "h"}))

	b := "b"
	rule := "a => b;"
	rows := []Replacement{
		{RunID: "r1", Seq: 2, Iteration: 1, Kind: "evaluator", Original: "b", OriginalDigest: "d2"},
		{RunID: "r1", Seq: 1, Iteration: 0, Kind: "rule", Original: "a", OriginalDigest: "d1", Replacement: &b, Rule: &rule},
	}
	for _, r := range rows {
		require.NoError(t, s.WriteReplacement(ctx, r))
	}
	require.NoError(t, s.WriteReplacement(ctx, rows[0]), "duplicate is ignored")

	got, err := s.ReadReplacements(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []Replacement{rows[1], rows[0]}, got)

	got, err = s.ReadReplacements(ctx, "other")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestWriteReplacement_RequiresRun(t *testing.T) {
	s := openTestStore(t)
	err := s.WriteReplacement(t.Context(), Replacement{RunID: "nope", Seq: 1, Kind: "rule", Original: "a", OriginalDigest: "d"})
	assert.Error(t, err)
}

func TestWriteReplacement_RejectsUnknownKind(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.WriteRun(t.Context(), Run{ID: "r1", ProgramHash: "h"}))
	err := s.WriteReplacement(t.Context(), Replacement{RunID: "r1", Seq: 1, Kind: "magic", Original: "a", OriginalDigest: "d"})
	assert.Error(t, err)
}
