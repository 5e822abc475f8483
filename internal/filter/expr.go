// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import "slices"

// Expr is the parsed AST of a filter expression.
// An Expr is one of [*Qualifier], [*Conjunction], [*Disjunction]
// or [*Negation]. Expressions are never modified after they are
// built, so they may be shared freely, including between goroutines.
// A nil Expr means there is no expression at all.
type Expr interface {
	filterExpr() // restricts Expr to types defined here

	// String returns the expression in a form accepted by [Parse].
	String() string
}

// A Qualifier is a leaf of a filter expression,
// written kind:content or kind(content).
type Qualifier struct {
	Kind    Kind
	Content Content // nil only for the empty and false qualifiers
}

// A Conjunction matches when both sides match.
type Conjunction struct {
	Left, Right Expr
}

// A Disjunction matches when either side matches.
type Disjunction struct {
	Left, Right Expr
}

// A Negation matches when Expr does not.
type Negation struct {
	Expr Expr
}

func (*Qualifier) filterExpr()   {}
func (*Conjunction) filterExpr() {}
func (*Disjunction) filterExpr() {}
func (*Negation) filterExpr()    {}

var (
	emptyQualifier = &Qualifier{Kind: KindEmpty}
	falseQualifier = &Qualifier{Kind: KindFalse}
)

// EmptyQualifier returns the qualifier that matches everything.
// It is the result of parsing the empty string.
func EmptyQualifier() *Qualifier { return emptyQualifier }

// FalseQualifier returns the qualifier that matches nothing.
func FalseQualifier() *Qualifier { return falseQualifier }

// IsEmpty reports whether e is the empty qualifier.
func IsEmpty(e Expr) bool {
	q, ok := e.(*Qualifier)
	return ok && q.Kind == KindEmpty
}

// Equal reports whether x and y are structurally equal.
func Equal(x, y Expr) bool {
	switch x := x.(type) {
	case nil:
		return y == nil
	case *Qualifier:
		y, ok := y.(*Qualifier)
		return ok && x.Kind == y.Kind && contentEqual(x.Content, y.Content)
	case *Conjunction:
		y, ok := y.(*Conjunction)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Disjunction:
		y, ok := y.(*Disjunction)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Negation:
		y, ok := y.(*Negation)
		return ok && Equal(x.Expr, y.Expr)
	}
	panic("can't happen")
}

func contentEqual(x, y Content) bool {
	if xk, ok := x.(SortKeys); ok {
		yk, ok := y.(SortKeys)
		return ok && slices.Equal(xk, yk)
	}
	if _, ok := y.(SortKeys); ok {
		return false
	}
	return x == y
}
