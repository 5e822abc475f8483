// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"cloud.google.com/go/civil"
)

// A Milestone is a milestone defined in a repository.
type Milestone struct {
	Repo       string     `json:"repo" yaml:"repo"`
	ID         int        `json:"id" yaml:"id"`
	Title      string     `json:"title" yaml:"title"`
	Open       bool       `json:"open" yaml:"open"`
	Due        civil.Date `json:"due,omitzero" yaml:"due"` // zero if there is no due date
	OpenIssues int        `json:"openIssues,omitempty" yaml:"openIssues"`
}

// HasDue reports whether the milestone has a due date.
func (m *Milestone) HasDue() bool {
	return m.Due != civil.Date{}
}

// Overdue reports whether the milestone's due date is before today.
func (m *Milestone) Overdue(today civil.Date) bool {
	return m.HasDue() && m.Due.Before(today)
}

// Ongoing reports whether work on the milestone is still going on:
// it is open, and either not overdue or still has open issues.
func (m *Milestone) Ongoing(today civil.Date) bool {
	return m.Open && (!m.Overdue(today) || m.OpenIssues > 0)
}

// CompareDue orders milestones by due date, earliest first.
// A milestone without a due date sorts after all dated ones
// if it is open and before all dated ones if it is closed.
func CompareDue(a, b *Milestone) int {
	ka, kb := dueKey(a), dueKey(b)
	if ka.rank != kb.rank {
		return ka.rank - kb.rank
	}
	switch {
	case ka.due.Before(kb.due):
		return -1
	case ka.due.After(kb.due):
		return +1
	}
	return 0
}

type dueOrder struct {
	rank int // 0 for undated closed, 1 for dated, 2 for undated open
	due  civil.Date
}

func dueKey(m *Milestone) dueOrder {
	switch {
	case m.HasDue():
		return dueOrder{1, m.Due}
	case m.Open:
		return dueOrder{2, civil.Date{}}
	}
	return dueOrder{0, civil.Date{}}
}
