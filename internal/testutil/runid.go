package testutil

// FixedRunIDGenerator returns the same run id every time, so a scenario
// replayed twice produces byte-identical traces.
//
// It satisfies tracestore.RunIDGenerator and is safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// DefaultRunID is used when no run id is configured.
const DefaultRunID = "test-run-default"

// NewFixedRunIDGenerator creates a generator for id. An empty id falls back
// to DefaultRunID.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run id.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
