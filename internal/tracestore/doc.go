// Package tracestore records rewrite runs and their replacement events in
// SQLite so a rewrite can be inspected after the fact.
//
// A run is one call to Database.Rewrite. Each replacement the frame reports
// to its observer becomes one row, numbered by seq within the run. Terms are
// stored in their rendered text form along with the digest of the original
// term, so rows stay readable without the term store that produced them.
package tracestore
