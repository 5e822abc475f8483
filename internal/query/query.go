// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"iter"
	"slices"

	"github.com/hubturbo/filterql/internal/filter"
	"github.com/hubturbo/filterql/internal/model"
	"rsc.io/top"
)

// A Query is a compiled filter, ready to select issues.
// A Query is safe for concurrent use as long as its
// environment's store is.
type Query struct {
	// Expr is the filter as evaluated: without meta-qualifiers
	// other than repo and updated, with milestone aliases
	// replaced, and scoped to the default repository.
	// An alias naming no milestone is replaced by
	// [filter.FalseQualifier], which prints as false()
	// and cannot be parsed back.
	Expr filter.Expr

	// Meta holds the meta-qualifiers of the original filter.
	Meta *Meta

	match func(*model.Issue) bool
	cmp   Compare
}

// Compile compiles the filter e for evaluation in env.
// A nil e selects every issue in the default repository.
func Compile(env *Env, e filter.Expr) (*Query, error) {
	if err := filter.Validate(e); err != nil {
		return nil, err
	}
	meta := ExtractMeta(e)
	x := ReplaceMilestoneAliases(env, e)
	x = StripMeta(x)
	x = Scope(env, x)
	match, err := Evaluator(env, x, meta)
	if err != nil {
		return nil, err
	}
	return &Query{
		Expr:  x,
		Meta:  meta,
		match: match,
		cmp:   Comparator(env, meta.Sort),
	}, nil
}

// Matches reports whether issue satisfies e in env,
// compiling e the same way as [Compile].
func Matches(env *Env, e filter.Expr, issue *model.Issue) (bool, error) {
	q, err := Compile(env, e)
	if err != nil {
		return false, err
	}
	return q.Match(issue), nil
}

// Match reports whether the query selects issue.
func (q *Query) Match(issue *model.Issue) bool {
	return q.match(issue)
}

// Compare orders two issues by the query's sort keys.
func (q *Query) Compare(a, b *model.Issue) int {
	return q.cmp(a, b)
}

// Select returns the issues in seq that the query selects,
// ordered by its sort keys. Issues that compare equal keep
// the order in which seq yields them. If the query has a
// count, at most that many issues are returned.
func (q *Query) Select(seq iter.Seq[*model.Issue]) []*model.Issue {
	type item struct {
		issue *model.Issue
		n     int
	}
	order := func(x, y item) int {
		if c := q.cmp(x.issue, y.issue); c != 0 {
			return c
		}
		return x.n - y.n
	}

	var items []item
	if q.Meta.HasCount {
		if q.Meta.Count <= 0 {
			return nil
		}
		// top keeps the largest items, so reverse the order.
		t := top.New(q.Meta.Count, func(x, y item) int { return order(y, x) })
		n := 0
		for issue := range seq {
			if q.match(issue) {
				t.Add(item{issue, n})
				n++
			}
		}
		items = t.Take()
	} else {
		n := 0
		for issue := range seq {
			if q.match(issue) {
				items = append(items, item{issue, n})
				n++
			}
		}
	}

	slices.SortFunc(items, order)
	list := make([]*model.Issue, len(items))
	for i, it := range items {
		list[i] = it.issue
	}
	return list
}
