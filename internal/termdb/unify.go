package termdb

// equation is a pending unification problem lhs =? rhs.
type equation struct {
	lhs, rhs *Term
}

// Unify computes a syntactic unifier of lhs and rhs.
//
// On success the bindings map variables (Match) to terms (Substitute), are
// fully solved, contain no self-binding and bind each variable once. On
// failure it returns (nil, false); failure is a normal result.
//
// Equations are processed from a FIFO work queue with the classical rules,
// in this order: trivial, clash, orient, occurs-check, eliminate, decompose.
func (db *Database) Unify(lhs, rhs *Term) ([]Substitution, bool) {
	if lhs == rhs {
		return nil, true
	}

	var bindings []Substitution
	queue := newFIFO[equation](8)
	queue.Enqueue(equation{lhs: lhs, rhs: rhs})

	for {
		eq, ok := queue.TryDequeue()
		if !ok {
			break
		}
		l, r := eq.lhs, eq.rhs

		// Trivial
		if l == r {
			continue
		}

		// Clash
		if !l.IsVariable() && !r.IsVariable() && !sameHead(l, r) {
			return nil, false
		}

		// Orient
		if !l.IsVariable() && r.IsVariable() {
			l, r = r, l
		}

		if l.IsVariable() {
			// Occurs check
			if r.HasVariable(l.Handle()) {
				return nil, false
			}

			// Eliminate
			var solved bool
			bindings, solved = db.eliminate(l, r, bindings, queue)
			if !solved {
				return nil, false
			}
			continue
		}

		// Decompose
		for i := range l.Arguments {
			queue.Enqueue(equation{lhs: l.Arguments[i], rhs: r.Arguments[i]})
		}
	}

	return bindings, true
}

// sameHead reports whether two non-variable terms agree on kind, name,
// class member mapping and arity.
func sameHead(l, r *Term) bool {
	return l.Name.Kind == r.Name.Kind &&
		l.Name.StringID == r.Name.StringID &&
		l.ClassMembers() == r.ClassMembers() &&
		len(l.Arguments) == len(r.Arguments)
}

// eliminate records v -> t and applies it to every earlier binding and every
// pending equation, so bindings never refer to solved variables.
func (db *Database) eliminate(v, t *Term, bindings []Substitution, queue *fifo[equation]) ([]Substitution, bool) {
	for _, b := range bindings {
		if b.Match != v {
			continue
		}
		if b.Substitute != t {
			return nil, false
		}
		return bindings, true
	}

	m := map[Handle]*Term{v.Handle(): t}
	out := bindings[:0]
	for _, b := range bindings {
		b.Substitute = db.Substitute(b.Substitute, m)
		if b.Match != b.Substitute {
			out = append(out, b)
		}
	}
	out = append(out, Substitution{Match: v, Substitute: t})

	queue.Each(func(eq equation) equation {
		return equation{lhs: db.Substitute(eq.lhs, m), rhs: db.Substitute(eq.rhs, m)}
	})
	return out, true
}
