// Package termdb implements the hash-consed term store and the rewrite engine
// built on top of it.
//
// Terms are canonicalized on insertion: structurally equal terms share one
// *Term and one Handle, so term equality is pointer (or handle) equality.
// A term is only ever built from arguments that are already canonical.
//
// ARCHITECTURE:
//
// Database owns two intern tables (strings and terms), the label index and
// the active Frame. A Frame holds the live root terms, the rewrite rules,
// the native evaluator registry and an optional replacement observer.
//
// Rewrite drives the frame to a fixpoint:
//  1. every rule is applied to every root of the iteration-start snapshot
//  2. every evaluator is applied to every subterm of the same snapshot
//  3. superseded roots are replaced in place by their successors
//
// The loop stops when an iteration produces no new root, when the iteration
// limit is reached, or when the context is cancelled. Reaching the limit is
// not an error.
//
// A Database is not safe for concurrent use. Callers that need concurrency
// use one Database per goroutine.
package termdb
