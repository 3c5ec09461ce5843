package termdb

// iterationBudget counts rewrite iterations against a hard limit.
//
// Running out is not an error: many rewrite systems never terminate and
// the limit is the only thing that stops them.
type iterationBudget struct {
	limit   int
	current int
}

func newIterationBudget(limit int) *iterationBudget {
	return &iterationBudget{limit: limit}
}

// Take consumes one iteration. It returns false once the limit is spent.
func (b *iterationBudget) Take() bool {
	if b.current >= b.limit {
		return false
	}
	b.current++
	return true
}

// Used returns the number of iterations taken.
func (b *iterationBudget) Used() int {
	return b.current
}

// Exhausted reports whether every iteration has been taken.
func (b *iterationBudget) Exhausted() bool {
	return b.current >= b.limit
}
