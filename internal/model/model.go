// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model defines the issue tracker records that filters
// select from: issues and pull requests ([Issue]), and the labels,
// milestones and users of a repository.
package model

import (
	"fmt"
	"time"
)

// An Issue is an issue or pull request in a repository.
type Issue struct {
	Repo        string    `json:"repo" yaml:"repo"` // owner/name
	ID          int       `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description"`
	Creator     string    `json:"creator,omitempty" yaml:"creator"`   // login
	Assignee    string    `json:"assignee,omitempty" yaml:"assignee"` // login, empty if none
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`

	// NonSelfUpdatedAt is the last time someone other than
	// the current user updated the issue; zero if unknown.
	NonSelfUpdatedAt time.Time `json:"nonSelfUpdatedAt,omitzero" yaml:"nonSelfUpdatedAt"`
	// MarkedReadAt is when the issue was last marked read; zero if never.
	MarkedReadAt time.Time `json:"markedReadAt,omitzero" yaml:"markedReadAt"`

	Open         bool     `json:"open" yaml:"open"`
	PullRequest  bool     `json:"pullRequest,omitempty" yaml:"pullRequest"`
	CommentCount int      `json:"commentCount,omitempty" yaml:"commentCount"`
	Labels       []string `json:"labels,omitempty" yaml:"labels"`
	Milestone    int      `json:"milestone,omitempty" yaml:"milestone"` // milestone ID, 0 if none
}

// Ref returns the owner/repo#id form of the issue's name.
func (i *Issue) Ref() string {
	return fmt.Sprintf("%s#%d", i.Repo, i.ID)
}

// IsRead reports whether the issue was marked read
// after its last update.
func (i *Issue) IsRead() bool {
	return !i.MarkedReadAt.IsZero() && i.MarkedReadAt.After(i.UpdatedAt)
}

// HasLabel reports whether the issue has the label with the given name.
func (i *Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// Clone returns a copy of i that shares no memory with i.
func (i *Issue) Clone() *Issue {
	c := *i
	c.Labels = append([]string(nil), i.Labels...)
	return &c
}

// A User is a person who can author or be assigned issues in a repository.
type User struct {
	Repo  string `json:"repo" yaml:"repo"`
	Login string `json:"login" yaml:"login"`
	Name  string `json:"name,omitempty" yaml:"name"` // display name, if known
}

// A Store answers questions about the repositories that
// issues belong to. Implementations must be safe to call
// concurrently while no writes are in progress.
type Store interface {
	Labels(repo string) []*Label
	Milestones(repo string) []*Milestone
	Users(repo string) []*User

	// Milestone returns the milestone with the given ID, or nil.
	Milestone(repo string, id int) *Milestone
	// User returns the user with the given login, or nil.
	User(repo, login string) *User
}
