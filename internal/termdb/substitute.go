package termdb

// Substitute returns t with every subterm whose handle is a key of m
// replaced by the mapped term.
//
// Matching is top-down and replacements are not searched again. Untouched
// subtrees keep their handles, so only the paths from replaced nodes to the
// root are rebuilt. Returns t itself when nothing matched.
func (db *Database) Substitute(t *Term, m map[Handle]*Term) *Term {
	if len(m) == 0 {
		return t
	}
	memo := make(map[Handle]*Term)
	return db.substitute(t, m, memo)
}

func (db *Database) substitute(t *Term, m map[Handle]*Term, memo map[Handle]*Term) *Term {
	if rep, ok := m[t.Handle()]; ok {
		return rep
	}
	if len(t.Arguments) == 0 {
		return t
	}
	if done, ok := memo[t.Handle()]; ok {
		return done
	}

	var args []*Term
	for i, a := range t.Arguments {
		na := db.substitute(a, m, memo)
		if na == a {
			continue
		}
		if args == nil {
			args = make([]*Term, len(t.Arguments))
			copy(args, t.Arguments)
		}
		args[i] = na
	}

	out := t
	if args != nil {
		out = db.StoreCopy(t, args)
	}
	memo[t.Handle()] = out
	return out
}

// Instantiate applies variable bindings to t.
func (db *Database) Instantiate(t *Term, bindings []Substitution) *Term {
	if len(bindings) == 0 || t.IsGround() {
		return t
	}
	m := make(map[Handle]*Term, len(bindings))
	for _, b := range bindings {
		m[b.Match.Handle()] = b.Substitute
	}
	return db.Substitute(t, m)
}
