// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hubturbo/filterql/internal/filter"
	"github.com/hubturbo/filterql/internal/model"
)

// An applier changes an issue to satisfy a qualifier.
type applier func(q *filter.Qualifier, i *model.Issue, store model.Store) error

// appliers maps each kind to how it is applied.
// Kinds missing from the table are left alone by [Apply].
var appliers = map[filter.Kind]applier{
	filter.KindTitle:       refuse("unnecessary filter: issue text cannot be changed"),
	filter.KindDescription: refuse("unnecessary filter: issue text cannot be changed"),
	filter.KindKeyword:     refuse("unnecessary filter: issue text cannot be changed"),
	filter.KindID:          refuse("unnecessary filter: id is immutable"),
	filter.KindCreated:     refuse("unnecessary filter: cannot change issue creation date"),
	filter.KindAuthor:      refuse("unnecessary filter: cannot change author of issue"),
	filter.KindInvolves:    refuse("ambiguous filter: cannot change users involved with issue"),
	filter.KindHas:         refuse("ambiguous filter: has"),
	filter.KindNo:          refuse("ambiguous filter: no"),
	filter.KindIs:          refuse("ambiguous filter: is"),
	filter.KindMilestone:   applyMilestone,
	filter.KindLabel:       applyLabel,
	filter.KindAssignee:    applyAssignee,
	filter.KindState:       applyState,
}

// appliable lists the kinds that [CanApply] accepts.
var appliable = map[filter.Kind]bool{
	filter.KindMilestone: true,
	filter.KindLabel:     true,
	filter.KindAssignee:  true,
	filter.KindState:     true,
}

// CanApply reports whether e can be applied to an issue: whether
// it is made of milestone, label, assignee and state qualifiers
// joined by AND, with at most one qualifier of each kind other
// than label.
func CanApply(e filter.Expr) bool {
	seen := make(map[filter.Kind]bool)
	var walk func(filter.Expr) bool
	walk = func(e filter.Expr) bool {
		switch e := e.(type) {
		case *filter.Qualifier:
			if !appliable[e.Kind] {
				return false
			}
			if seen[e.Kind] && e.Kind != filter.KindLabel {
				return false
			}
			seen[e.Kind] = true
			return true
		case *filter.Conjunction:
			return walk(e.Left) && walk(e.Right)
		}
		return false
	}
	return e != nil && walk(e)
}

// Apply changes issue so that it satisfies e, resolving
// milestones, labels and users through store.
//
// The qualifiers of a conjunction are applied in order, and
// Apply stops at the first one that fails, leaving the changes
// made by the earlier ones in place. Callers wanting all or
// nothing should apply to a [model.Issue.Clone].
//
// Apply panics if e contains OR or NOT;
// callers must check [CanApply] first.
func Apply(e filter.Expr, issue *model.Issue, store model.Store) error {
	switch e := e.(type) {
	case nil:
		return nil
	case *filter.Qualifier:
		if ap, ok := appliers[e.Kind]; ok {
			return ap(e, issue, store)
		}
		return nil
	case *filter.Conjunction:
		if err := Apply(e.Left, issue, store); err != nil {
			return err
		}
		return Apply(e.Right, issue, store)
	case *filter.Disjunction:
		panic("query.Apply: cannot apply OR")
	case *filter.Negation:
		panic("query.Apply: cannot apply NOT")
	}
	panic("can't happen")
}

func refuse(msg string) applier {
	return func(*filter.Qualifier, *model.Issue, model.Store) error {
		return &ApplicationError{Msg: msg}
	}
}

// resolve picks the one item that text names.
// If exactly one item contains text, ignoring case, that is the one.
// Otherwise, if exactly one item is named text, ignoring case, that is the one.
// what names the kind of item in error messages.
func resolve[T any](what, text string, items []T, names func(T) []string) (T, error) {
	var zero T
	lower := strings.ToLower(text)
	var partial, exact []T
	for _, it := range items {
		p, x := false, false
		for _, n := range names(it) {
			n = strings.ToLower(n)
			p = p || strings.Contains(n, lower)
			x = x || n == lower
		}
		if p {
			partial = append(partial, it)
		}
		if x {
			exact = append(exact, it)
		}
	}
	switch {
	case len(partial) == 1:
		return partial[0], nil
	case len(exact) == 1:
		return exact[0], nil
	case len(partial) == 0:
		return zero, applyErrorf("invalid %s %s", what, text)
	}
	var list []string
	for _, it := range partial {
		list = append(list, names(it)[0])
	}
	return zero, applyErrorf("ambiguous filter: can apply any of the following %ss: [%s]", what, strings.Join(list, ", "))
}

// applyText returns the text of q, or an error naming what is missing.
func applyText(q *filter.Qualifier, what string) (string, error) {
	text, ok := contentText(q.Content)
	if !ok || text == "" {
		return "", applyErrorf("name of %s to apply required", what)
	}
	return text, nil
}

func applyMilestone(q *filter.Qualifier, i *model.Issue, store model.Store) error {
	text, err := applyText(q, "milestone")
	if err != nil {
		return err
	}
	var list []*model.Milestone
	if store != nil {
		list = store.Milestones(i.Repo)
	}
	m, err := resolve("milestone", text, list, func(m *model.Milestone) []string { return []string{m.Title} })
	if err != nil {
		return err
	}
	i.Milestone = m.ID
	return nil
}

// applyLabel adds a label to the issue.
// A label in an exclusive group replaces the issue's
// other labels in that group.
func applyLabel(q *filter.Qualifier, i *model.Issue, store model.Store) error {
	text, err := applyText(q, "label")
	if err != nil {
		return err
	}
	var list []*model.Label
	if store != nil {
		list = store.Labels(i.Repo)
	}
	l, err := resolve("label", text, list, func(l *model.Label) []string { return []string{l.Name} })
	if err != nil {
		return err
	}
	if i.HasLabel(l.Name) {
		return nil
	}
	if group, _, exclusive, ok := model.ParseLabel(l.Name); ok && exclusive {
		i.Labels = slices.DeleteFunc(i.Labels, func(name string) bool {
			g, _, x, ok := model.ParseLabel(name)
			return ok && x && strings.EqualFold(g, group)
		})
	}
	i.Labels = append(i.Labels, l.Name)
	return nil
}

func applyAssignee(q *filter.Qualifier, i *model.Issue, store model.Store) error {
	text, err := applyText(q, "user")
	if err != nil {
		return err
	}
	var list []*model.User
	if store != nil {
		list = store.Users(i.Repo)
	}
	u, err := resolve("user", text, list, func(u *model.User) []string {
		if u.Name == "" {
			return []string{u.Login}
		}
		return []string{u.Login, u.Name}
	})
	if err != nil {
		return err
	}
	i.Assignee = u.Login
	return nil
}

func applyState(q *filter.Qualifier, i *model.Issue, _ model.Store) error {
	text, err := applyText(q, "state")
	if err != nil {
		return err
	}
	switch lower := strings.ToLower(text); {
	case strings.Contains(lower, "open"):
		i.Open = true
	case strings.Contains(lower, "closed"):
		i.Open = false
	default:
		return &ApplicationError{Msg: fmt.Sprintf("invalid state %s", text)}
	}
	return nil
}
