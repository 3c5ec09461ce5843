package ir

// Version constants for the term representation and engine.
const (
	// FormatVersion is the version of the canonical term encoding.
	FormatVersion = "1"

	// EngineVersion is the rewrite engine version recorded with traces.
	EngineVersion = "0.1.0"
)
