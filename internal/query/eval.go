// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/hubturbo/filterql/internal/filter"
	"github.com/hubturbo/filterql/internal/model"
)

// A matcher reports whether an issue satisfies a compiled filter.
type matcher = func(*model.Issue) bool

// An evaluator compiles a qualifier of a particular kind.
type evaluator func(env *Env, q *filter.Qualifier, meta *Meta) matcher

// evaluators maps each known kind to its evaluator.
// Kinds missing from the table never match.
var evaluators map[filter.Kind]evaluator

func init() {
	evaluators = map[filter.Kind]evaluator{
		filter.KindEmpty:       constant(true),
		filter.KindFalse:       constant(false),
		filter.KindKeyword:     evalKeyword,
		filter.KindID:          evalID,
		filter.KindTitle:       textEval(func(_ *Env, i *model.Issue) []string { return []string{i.Title} }),
		filter.KindDescription: textEval(func(_ *Env, i *model.Issue) []string { return []string{i.Description} }),
		filter.KindMilestone:   textEval(milestoneTitle),
		filter.KindLabel:       evalLabel,
		filter.KindAuthor:      textEval(func(_ *Env, i *model.Issue) []string { return []string{i.Creator} }),
		filter.KindAssignee:    textEval(assigneeNames),
		filter.KindInvolves:    evalInvolves,
		filter.KindType:        wordEval(typeMatcher),
		filter.KindState:       wordEval(stateMatcher),
		filter.KindHas:         wordEval(hasMatcher),
		filter.KindNo:          wordEval(noMatcher),
		filter.KindIs:          wordEval(isMatcher),
		filter.KindCreated:     evalCreated,
		filter.KindUpdated:     evalUpdated,
		filter.KindRepo:        evalRepo,

		// Meta-qualifiers that do not select issues.
		filter.KindIn:    constant(true),
		filter.KindSort:  constant(true),
		filter.KindCount: constant(true),
	}
}

// Evaluator returns a function that reports whether an issue
// satisfies e, using meta for the meta-qualifiers that affect
// other qualifiers. A nil e is satisfied by every issue.
//
// Evaluator does not strip meta-qualifiers or scope e to the
// default repository; see [Compile] and [Matches] for that.
// It returns a [*SemanticError] if a qualifier in e has
// content that no issue could be compared with.
func Evaluator(env *Env, e filter.Expr, meta *Meta) (func(*model.Issue) bool, error) {
	if meta == nil {
		meta = new(Meta)
	}
	return compile(env, e, meta)
}

func compile(env *Env, e filter.Expr, meta *Meta) (matcher, error) {
	switch e := e.(type) {
	case nil:
		return func(*model.Issue) bool { return true }, nil

	case *filter.Qualifier:
		if err := checkContent(e); err != nil {
			return nil, err
		}
		ev, ok := evaluators[e.Kind]
		if !ok {
			return func(*model.Issue) bool { return false }, nil
		}
		return ev(env, e, meta), nil

	case *filter.Conjunction:
		l, r, err := compile2(env, e.Left, e.Right, meta)
		if err != nil {
			return nil, err
		}
		return func(i *model.Issue) bool { return l(i) && r(i) }, nil

	case *filter.Disjunction:
		l, r, err := compile2(env, e.Left, e.Right, meta)
		if err != nil {
			return nil, err
		}
		return func(i *model.Issue) bool { return l(i) || r(i) }, nil

	case *filter.Negation:
		x, err := compile(env, e.Expr, meta)
		if err != nil {
			return nil, err
		}
		return func(i *model.Issue) bool { return !x(i) }, nil
	}
	panic("can't happen")
}

func compile2(env *Env, left, right filter.Expr, meta *Meta) (l, r matcher, err error) {
	if l, err = compile(env, left, meta); err != nil {
		return nil, nil, err
	}
	if r, err = compile(env, right, meta); err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

// checkContent reports a qualifier whose content is
// inconsistent with its kind.
func checkContent(q *filter.Qualifier) error {
	switch q.Kind {
	case filter.KindEmpty, filter.KindFalse:
		return nil
	}
	if q.Content == nil {
		return &SemanticError{q, "missing content"}
	}
	if _, ok := q.Content.(filter.SortKeys); ok && q.Kind != filter.KindSort {
		return &SemanticError{q, "unexpected sort keys"}
	}
	return nil
}

func constant(b bool) evaluator {
	return func(*Env, *filter.Qualifier, *Meta) matcher {
		return func(*model.Issue) bool { return b }
	}
}

func never(*model.Issue) bool { return false }

// textEval returns an evaluator that matches when the qualifier's
// text is a case-insensitive substring of any of the strings
// that fields returns for the issue.
func textEval(fields func(*Env, *model.Issue) []string) evaluator {
	return func(env *Env, q *filter.Qualifier, _ *Meta) matcher {
		text, ok := contentText(q.Content)
		if !ok {
			return never
		}
		text = strings.ToLower(text)
		return func(i *model.Issue) bool {
			for _, f := range fields(env, i) {
				if strings.Contains(strings.ToLower(f), text) {
					return true
				}
			}
			return false
		}
	}
}

func milestoneTitle(env *Env, i *model.Issue) []string {
	if m := env.milestone(i); m != nil {
		return []string{m.Title}
	}
	return nil
}

func assigneeNames(env *Env, i *model.Issue) []string {
	if u := env.assignee(i); u != nil {
		return []string{u.Login, u.Name}
	}
	return nil
}

// wordEval returns an evaluator for qualifiers whose
// lowercased text selects one of a fixed set of tests.
func wordEval(lookup func(word string) matcher) evaluator {
	return func(_ *Env, q *filter.Qualifier, _ *Meta) matcher {
		text, ok := contentText(q.Content)
		if !ok {
			return never
		}
		if m := lookup(strings.ToLower(text)); m != nil {
			return m
		}
		return never
	}
}

func typeMatcher(word string) matcher {
	switch word {
	case "issue":
		return func(i *model.Issue) bool { return !i.PullRequest }
	case "pr", "pullrequest":
		return func(i *model.Issue) bool { return i.PullRequest }
	}
	return nil
}

func stateMatcher(word string) matcher {
	switch {
	case strings.Contains(word, "open"):
		return func(i *model.Issue) bool { return i.Open }
	case strings.Contains(word, "closed"):
		return func(i *model.Issue) bool { return !i.Open }
	}
	return nil
}

func hasMatcher(word string) matcher {
	switch word {
	case "label", "labels":
		return func(i *model.Issue) bool { return len(i.Labels) > 0 }
	case "milestone", "milestones":
		return func(i *model.Issue) bool { return i.Milestone != 0 }
	case "assignee", "assignees":
		return func(i *model.Issue) bool { return i.Assignee != "" }
	}
	return nil
}

// noMatcher negates hasMatcher.
// Words that has does not know are satisfied by every issue.
func noMatcher(word string) matcher {
	has := hasMatcher(word)
	if has == nil {
		return func(*model.Issue) bool { return true }
	}
	return func(i *model.Issue) bool { return !has(i) }
}

func isMatcher(word string) matcher {
	switch word {
	case "open", "closed":
		return stateMatcher(word)
	case "pr", "issue":
		return typeMatcher(word)
	case "merged":
		return func(i *model.Issue) bool { return i.PullRequest && !i.Open }
	case "unmerged":
		return func(i *model.Issue) bool { return i.PullRequest && i.Open }
	case "read":
		return (*model.Issue).IsRead
	case "unread":
		return func(i *model.Issue) bool { return !i.IsRead() }
	}
	return nil
}

func evalKeyword(env *Env, q *filter.Qualifier, meta *Meta) matcher {
	title := evaluators[filter.KindTitle](env, q, meta)
	desc := evaluators[filter.KindDescription](env, q, meta)
	switch meta.In {
	case "":
		return func(i *model.Issue) bool { return title(i) || desc(i) }
	case "title":
		return title
	case "body", "desc", "description":
		return desc
	}
	return never
}

func evalLabel(_ *Env, q *filter.Qualifier, _ *Meta) matcher {
	text, ok := contentText(q.Content)
	if !ok {
		return never
	}
	return func(i *model.Issue) bool {
		for _, name := range i.Labels {
			if model.LabelMatches(text, name) {
				return true
			}
		}
		return false
	}
}

func evalInvolves(env *Env, q *filter.Qualifier, meta *Meta) matcher {
	author := evaluators[filter.KindAuthor](env, q, meta)
	assignee := evaluators[filter.KindAssignee](env, q, meta)
	return func(i *model.Issue) bool { return author(i) || assignee(i) }
}

func evalID(_ *Env, q *filter.Qualifier, _ *Meta) matcher {
	switch c := q.Content.(type) {
	case filter.Number:
		return func(i *model.Issue) bool { return i.ID == int(c) }
	case filter.NumberRange:
		return func(i *model.Issue) bool { return c.Encloses(i.ID) }
	}
	return never
}

// evalCreated compares the date an issue was created,
// in the time zone of its creation time.
func evalCreated(_ *Env, q *filter.Qualifier, _ *Meta) matcher {
	switch c := q.Content.(type) {
	case filter.Date:
		return func(i *model.Issue) bool { return civil.DateOf(i.CreatedAt) == c.Date }
	case filter.DateRange:
		return func(i *model.Issue) bool { return c.Encloses(civil.DateOf(i.CreatedAt)) }
	}
	return never
}

// evalUpdated compares the number of whole hours since an issue
// was last updated. A single number N means fewer than N hours.
func evalUpdated(env *Env, q *filter.Qualifier, _ *Meta) matcher {
	var r filter.NumberRange
	switch c := q.Content.(type) {
	case filter.Number:
		n := int(c)
		r, _ = filter.NewNumberRange(nil, &n, true)
	case filter.NumberRange:
		r = c
	default:
		return never
	}
	return func(i *model.Issue) bool {
		hours := int(env.now().Sub(env.updatedAt(i)) / time.Hour)
		return r.Encloses(hours)
	}
}

func evalRepo(_ *Env, q *filter.Qualifier, _ *Meta) matcher {
	text, ok := contentText(q.Content)
	if !ok {
		return never
	}
	return func(i *model.Issue) bool { return strings.EqualFold(i.Repo, text) }
}
