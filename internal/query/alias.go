// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"regexp"
	"slices"
	"strconv"

	"github.com/hubturbo/filterql/internal/filter"
	"github.com/hubturbo/filterql/internal/model"
)

// aliasRE matches a milestone alias: curr, current, curr+N or curr-N.
var aliasRE = regexp.MustCompile(`(?i)^(?:curr|current)(?:([+-])(\d+))?$`)

// parseAlias returns the offset named by a milestone alias.
func parseAlias(text string) (offset int, ok bool) {
	m := aliasRE.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	if m[1] == "" {
		return 0, true
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		// Too many digits; no list of milestones is that long.
		return 0, false
	}
	if m[1] == "-" {
		n = -n
	}
	return n, true
}

// ReplaceMilestoneAliases returns e with every milestone alias
// replaced by the title of the milestone it refers to.
//
// The aliasable milestones of the repositories named by e's repo
// qualifiers (or env.DefaultRepo if there are none) are those with
// a due date, plus the only open milestone if there is exactly one.
// In due date order, the current milestone is that only open
// milestone if there is one, or else the first ongoing milestone.
// When no milestone is ongoing, the current milestone is taken to
// be just past the last one, so that curr-1 names the last one.
// curr+N and curr-N count forward and back from the current
// milestone. An alias past either end of the list becomes
// a qualifier that matches nothing.
//
// Without a Store there are no milestones to resolve against,
// and e is returned unchanged.
func ReplaceMilestoneAliases(env *Env, e filter.Expr) filter.Expr {
	if env == nil || env.Store == nil || !hasAlias(e) {
		return e
	}
	list, cur := aliasable(env, ExtractMeta(e).Repos)
	return filter.Map(e, func(q *filter.Qualifier) filter.Expr {
		if q.Kind != filter.KindMilestone {
			return q
		}
		text, ok := q.Content.(filter.Text)
		if !ok {
			return q
		}
		off, ok := parseAlias(string(text))
		if !ok {
			return q
		}
		i := cur + off
		if i < 0 || i >= len(list) {
			return filter.FalseQualifier()
		}
		return &filter.Qualifier{Kind: filter.KindMilestone, Content: filter.Text(list[i].Title)}
	})
}

func hasAlias(e filter.Expr) bool {
	qs := filter.Find(e, func(q *filter.Qualifier) bool {
		if q.Kind != filter.KindMilestone {
			return false
		}
		text, ok := q.Content.(filter.Text)
		if !ok {
			return false
		}
		_, ok = parseAlias(string(text))
		return ok
	})
	return len(qs) > 0
}

// aliasable returns the aliasable milestones of repos in due order,
// along with the index of the current one.
func aliasable(env *Env, repos []string) (list []*model.Milestone, cur int) {
	if len(repos) == 0 {
		repos = []string{env.DefaultRepo}
	}
	var all []*model.Milestone
	for _, repo := range repos {
		all = append(all, env.Store.Milestones(repo)...)
	}

	var soleOpen *model.Milestone
	open := 0
	for _, m := range all {
		if m.Open {
			open++
			soleOpen = m
		}
	}
	if open != 1 {
		soleOpen = nil
	}

	for _, m := range all {
		if m.HasDue() || m == soleOpen {
			list = append(list, m)
		}
	}
	slices.SortStableFunc(list, model.CompareDue)

	if soleOpen != nil {
		return list, slices.Index(list, soleOpen)
	}
	today := env.today()
	for i, m := range list {
		if m.Ongoing(today) {
			return list, i
		}
	}
	return list, len(list)
}
