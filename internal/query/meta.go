// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"strings"

	"github.com/hubturbo/filterql/internal/filter"
)

// Meta holds the meta-qualifiers of a filter: those that configure
// how a filter is evaluated rather than selecting issues themselves.
type Meta struct {
	// In is the lowercased content of the first in qualifier,
	// which limits keyword search to the title or the description.
	In string

	// Repos lists the contents of the repo qualifiers, in order.
	Repos []string

	// Sort is the concatenation of the keys of all sort qualifiers.
	Sort filter.SortKeys

	// Count limits the number of selected issues, if HasCount is set.
	Count    int
	HasCount bool

	// Updated lists the updated qualifiers.
	Updated []*filter.Qualifier
}

// isMeta reports whether q is a meta-qualifier.
func isMeta(q *filter.Qualifier) bool {
	switch q.Kind {
	case filter.KindSort, filter.KindCount, filter.KindIn, filter.KindRepo, filter.KindUpdated:
		return true
	}
	return false
}

// isStripped reports whether q is removed by [StripMeta]:
// a meta-qualifier that does not select issues at all.
func isStripped(q *filter.Qualifier) bool {
	switch q.Kind {
	case filter.KindSort, filter.KindCount, filter.KindIn:
		return true
	}
	return false
}

// ExtractMeta collects the meta-qualifiers of e.
// It does not change e.
func ExtractMeta(e filter.Expr) *Meta {
	m := new(Meta)
	hasIn := false
	for _, q := range filter.Find(e, isMeta) {
		switch q.Kind {
		case filter.KindIn:
			if s, ok := contentText(q.Content); ok && !hasIn {
				m.In = strings.ToLower(s)
				hasIn = true
			}
		case filter.KindRepo:
			if s, ok := contentText(q.Content); ok {
				m.Repos = append(m.Repos, s)
			}
		case filter.KindSort:
			if keys, ok := q.Content.(filter.SortKeys); ok {
				m.Sort = append(m.Sort, keys...)
			}
		case filter.KindCount:
			if n, ok := q.Content.(filter.Number); ok && !m.HasCount {
				m.Count = int(n)
				m.HasCount = true
			}
		case filter.KindUpdated:
			m.Updated = append(m.Updated, q)
		}
	}
	return m
}

// StripMeta returns e without its sort, count and in qualifiers.
// The repo and updated meta-qualifiers stay, since they also
// select issues.
func StripMeta(e filter.Expr) filter.Expr {
	if e == nil {
		return nil
	}
	return filter.Filter(e, func(q *filter.Qualifier) bool { return !isStripped(q) })
}

// Scope returns e limited to env.DefaultRepo,
// unless e already has a repo qualifier
// or there is no default repository.
func Scope(env *Env, e filter.Expr) filter.Expr {
	if env.DefaultRepo == "" || filter.HasKind(e, filter.KindRepo) {
		return e
	}
	repo := &filter.Qualifier{Kind: filter.KindRepo, Content: filter.Text(env.DefaultRepo)}
	if e == nil || filter.IsEmpty(e) {
		return repo
	}
	return &filter.Conjunction{Left: repo, Right: e}
}

// contentText returns the text form of single-valued content.
// Numbers and dates count as text, since "milestone:1" and
// "title:2015-06-01" are searches for text.
func contentText(c filter.Content) (string, bool) {
	switch c := c.(type) {
	case filter.Text:
		return string(c), true
	case filter.Number:
		return c.String(), true
	case filter.Date:
		return c.String(), true
	}
	return "", false
}
