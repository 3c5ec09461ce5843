package termdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-set/v3"

	"github.com/roach88/trl/internal/intern"
)

// DefaultIterationLimit bounds Rewrite when no explicit limit is given.
const DefaultIterationLimit = 100000

// Database is the term store.
//
// It owns the string and term intern tables, the label index and the
// active Frame. Terms are never removed; the store only grows.
type Database struct {
	strings *intern.Strings
	terms   *intern.Mapper[string, *Term]
	labels  map[StringID]*set.Set[Handle]
	frame   *Frame

	logger         *slog.Logger
	iterationLimit int
}

// Option configures a Database.
type Option func(*Database)

// WithLogger sets the logger used by Rewrite and Mutate.
//
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(db *Database) {
		if l != nil {
			db.logger = l
		}
	}
}

// WithIterationLimit sets the limit Rewrite uses when called with limit <= 0.
//
// Default: DefaultIterationLimit
func WithIterationLimit(n int) Option {
	return func(db *Database) {
		if n > 0 {
			db.iterationLimit = n
		}
	}
}

// New creates an empty Database.
//
// The empty string is interned first: it names every term list.
func New(opts ...Option) *Database {
	db := &Database{
		strings:        intern.NewStrings(),
		terms:          intern.New[string, *Term](256),
		labels:         make(map[StringID]*set.Set[Handle]),
		logger:         slog.Default(),
		iterationLimit: DefaultIterationLimit,
	}
	db.strings.Intern("")
	db.frame = NewFrame(db)

	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Logger returns the database logger.
func (db *Database) Logger() *slog.Logger {
	return db.logger
}

// Frame returns the active frame.
func (db *Database) Frame() *Frame {
	return db.frame
}

// Rewrite runs the active frame to a fixpoint and returns the number of
// iterations performed. limit <= 0 selects the configured default.
func (db *Database) Rewrite(ctx context.Context, limit int) (int, error) {
	return db.frame.Rewrite(ctx, db.IterationLimit(limit))
}

// IterationLimit returns the limit Rewrite applies when called with limit.
func (db *Database) IterationLimit(limit int) int {
	if limit <= 0 {
		return db.iterationLimit
	}
	return limit
}

// Mutation transforms a frame into a new frame over the same database.
type Mutation interface {
	MutateFrame(in *Frame) *Frame
}

// Mutate replaces the active frame with the one m produces. Evaluators and
// the replacement observer carry over to the new frame.
func (db *Database) Mutate(m Mutation) {
	out := m.MutateFrame(db.frame)
	if out == nil || out.db != db {
		panic(invalidState("Mutate", "mutation returned a frame for another database"))
	}
	out.evaluators = db.frame.evaluators
	out.observer = db.frame.observer
	db.frame = out
	db.logger.Debug("frame mutated",
		"mutation", fmt.Sprintf("%T", m),
		"roots", len(out.roots),
		"rules", len(out.rules))
}

// intern returns the canonical instance for t, assigning a handle if t is new.
func (db *Database) intern(t *Term) (*Term, bool) {
	h, stored, added := db.terms.Map(t.key(), t)
	if added {
		stored.Name.TermID = Handle(h)
	}
	return stored, added
}

// Term returns the canonical term for h, or nil if h was never assigned.
func (db *Database) Term(h Handle) *Term {
	t, _ := db.terms.ReverseMap(uint64(h))
	return t
}

// String returns the interned string for id, or "" if unknown.
func (db *Database) String(id StringID) string {
	return db.strings.String(uint64(id))
}

// InternString interns s and returns its id.
func (db *Database) InternString(s string) StringID {
	return StringID(db.strings.Intern(s))
}

// LookupString returns the id of s if it has been interned.
func (db *Database) LookupString(s string) (StringID, bool) {
	id, ok := db.strings.Lookup(s)
	return StringID(id), ok
}

// NameOf returns the name string of t.
func (db *Database) NameOf(t *Term) string {
	return db.String(t.Name.StringID)
}

// Metrics counts the store's contents.
type Metrics struct {
	TermCount   int `json:"term_count"`
	StringCount int `json:"string_count"`
	RuleCount   int `json:"rule_count"`
	LabelCount  int `json:"label_count"`
}

// Metrics returns the current counts. Loading the same program twice
// leaves every count unchanged.
func (db *Database) Metrics() Metrics {
	return Metrics{
		TermCount:   db.terms.Count(),
		StringCount: db.strings.Count(),
		RuleCount:   len(db.frame.rules),
		LabelCount:  len(db.labels),
	}
}
