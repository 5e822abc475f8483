// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

// Filter returns a copy of e in which every qualifier for
// which keep returns false is replaced by the empty qualifier.
// A conjunction or disjunction with an empty side is replaced
// by its other side, and a negation of an empty expression is
// itself empty, so the result is empty only if nothing was kept.
// Filter of a nil Expr is nil.
func Filter(e Expr, keep func(*Qualifier) bool) Expr {
	return Map(e, func(q *Qualifier) Expr {
		if keep(q) {
			return q
		}
		return EmptyQualifier()
	})
}

// Map returns a copy of e in which every qualifier q is replaced
// by f(q), which may be any expression.
// Empty results collapse as described for [Filter].
// Map of a nil Expr is nil.
func Map(e Expr, f func(*Qualifier) Expr) Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *Qualifier:
		return f(e)
	case *Conjunction:
		l, r := Map(e.Left, f), Map(e.Right, f)
		switch {
		case IsEmpty(l):
			return r
		case IsEmpty(r):
			return l
		}
		return &Conjunction{Left: l, Right: r}
	case *Disjunction:
		l, r := Map(e.Left, f), Map(e.Right, f)
		switch {
		case IsEmpty(l):
			return r
		case IsEmpty(r):
			return l
		}
		return &Disjunction{Left: l, Right: r}
	case *Negation:
		x := Map(e.Expr, f)
		if IsEmpty(x) {
			return x
		}
		return &Negation{Expr: x}
	}
	panic("can't happen")
}

// Find returns the qualifiers of e for which match returns true,
// in pre-order.
func Find(e Expr, match func(*Qualifier) bool) []*Qualifier {
	var list []*Qualifier
	var walk func(Expr)
	walk = func(e Expr) {
		switch e := e.(type) {
		case nil:
		case *Qualifier:
			if match(e) {
				list = append(list, e)
			}
		case *Conjunction:
			walk(e.Left)
			walk(e.Right)
		case *Disjunction:
			walk(e.Left)
			walk(e.Right)
		case *Negation:
			walk(e.Expr)
		default:
			panic("can't happen")
		}
	}
	walk(e)
	return list
}

// Kinds returns the kinds of all the qualifiers of e, in pre-order.
func Kinds(e Expr) []Kind {
	var kinds []Kind
	for _, q := range Find(e, func(*Qualifier) bool { return true }) {
		kinds = append(kinds, q.Kind)
	}
	return kinds
}

// HasKind reports whether e contains a qualifier of kind k.
func HasKind(e Expr, k Kind) bool {
	return len(Find(e, func(q *Qualifier) bool { return q.Kind == k })) > 0
}
