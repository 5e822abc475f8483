// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hubturbo/filterql/internal/filter"
	"github.com/hubturbo/filterql/internal/model"
)

// A Compare function orders two issues, returning a negative
// number, zero or a positive number as a sorts before, with
// or after b.
type Compare = func(a, b *model.Issue) int

// sortFields maps the names of the standard sort fields,
// including their aliases, to a canonical name.
var sortFields = map[string]string{
	"comments":      "comments",
	"repo":          "repo",
	"updated":       "updated",
	"date":          "updated",
	"nonselfupdate": "nonselfupdate",
	"id":            "id",
	"assignee":      "assignee",
	"as":            "assignee",
	"milestone":     "milestone",
	"m":             "milestone",
	"state":         "state",
	"status":        "state",
	"s":             "state",
}

// Comparator returns a comparison function that orders issues
// by each of keys in turn. With no keys, all issues compare equal.
func Comparator(env *Env, keys filter.SortKeys) Compare {
	cmps := make([]Compare, len(keys))
	for i, k := range keys {
		cmps[i] = KeyComparator(env, k.Field, k.Inverted)
	}
	return func(a, b *model.Issue) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// KeyComparator returns the comparison function for a single sort key.
// Field names are case-insensitive. A name that is not one of the
// standard fields (comments, repo, updated, nonSelfUpdate, id,
// assignee, milestone, state and their aliases) names a label group;
// see [LabelGroupComparator].
//
// For the standard fields, inverted reverses the entire order.
func KeyComparator(env *Env, field string, inverted bool) Compare {
	var c Compare
	switch sortFields[strings.ToLower(field)] {
	default:
		return LabelGroupComparator(field, inverted)
	case "comments":
		c = func(a, b *model.Issue) int { return cmp.Compare(a.CommentCount, b.CommentCount) }
	case "repo":
		c = func(a, b *model.Issue) int { return strings.Compare(a.Repo, b.Repo) }
	case "updated":
		c = func(a, b *model.Issue) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case "nonselfupdate":
		c = func(a, b *model.Issue) int { return env.updatedAt(a).Compare(env.updatedAt(b)) }
	case "id":
		c = func(a, b *model.Issue) int { return cmp.Compare(a.ID, b.ID) }
	case "assignee":
		c = func(a, b *model.Issue) int { return compareAssignee(env, a, b) }
	case "milestone":
		c = func(a, b *model.Issue) int { return compareMilestone(env, a, b) }
	case "state":
		c = func(a, b *model.Issue) int { return compareOpen(a.Open, b.Open) }
	}
	if inverted {
		return func(a, b *model.Issue) int { return -c(a, b) }
	}
	return c
}

// compareAssignee orders issues by assignee login,
// with unassigned issues last.
func compareAssignee(env *Env, a, b *model.Issue) int {
	ua, ub := env.assignee(a), env.assignee(b)
	switch {
	case ua == nil && ub == nil:
		return 0
	case ua == nil:
		return +1
	case ub == nil:
		return -1
	}
	return strings.Compare(ua.Login, ub.Login)
}

// compareMilestone orders issues by milestone, latest due date first,
// then milestones without a due date, then issues without a milestone.
func compareMilestone(env *Env, a, b *model.Issue) int {
	ma, mb := env.milestone(a), env.milestone(b)
	switch {
	case ma == nil && mb == nil:
		return 0
	case ma == nil:
		return +1
	case mb == nil:
		return -1
	}
	switch {
	case !ma.HasDue() && !mb.HasDue():
		return 0
	case !ma.HasDue():
		return +1
	case !mb.HasDue():
		return -1
	}
	switch {
	case ma.Due.After(mb.Due):
		return -1
	case ma.Due.Before(mb.Due):
		return +1
	}
	return 0
}

// compareOpen puts open issues first.
func compareOpen(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	}
	return +1
}

// LabelGroupComparator returns a comparison function that orders
// issues by their labels in the named group. A trailing "." on
// group is ignored.
//
// Issues with no label in the group sort last. Other issues sort
// by the number of labels they have in the group, fewest first,
// and then by the sorted label names, compared element by element.
// When inverted, both comparisons are reversed, but issues with
// no label in the group still sort last.
func LabelGroupComparator(group string, inverted bool) Compare {
	group = strings.TrimSuffix(group, ".")
	return func(a, b *model.Issue) int {
		la := model.LabelsInGroup(a.Labels, group)
		lb := model.LabelsInGroup(b.Labels, group)
		switch {
		case len(la) == 0 && len(lb) == 0:
			return 0
		case len(la) == 0:
			return +1
		case len(lb) == 0:
			return -1
		}
		c := cmp.Compare(len(la), len(lb))
		if c == 0 {
			c = slices.Compare(la, lb)
		}
		if inverted {
			c = -c
		}
		return c
	}
}
