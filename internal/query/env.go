// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package query evaluates filter expressions against issues.
//
// A filter is first compiled with [Compile], which extracts its
// meta-qualifiers (sort, count, in, repo, updated), replaces
// milestone aliases such as "curr+1" with milestone titles,
// and scopes it to the default repository when it names none.
// The resulting [Query] matches, orders and selects issues.
// [Apply] changes an issue so that it satisfies a filter,
// for the small set of filters where that has a single meaning.
package query

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/hubturbo/filterql/internal/model"
)

// An Env is the environment a filter is evaluated in.
type Env struct {
	// Store resolves the milestones, labels and users
	// that issues refer to. It may be nil, in which case
	// no issue has a milestone and assignees have no names.
	Store model.Store

	// DefaultRepo is the repository that filters without a
	// repo qualifier are limited to. If empty, such filters
	// select from every repository.
	DefaultRepo string

	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time

	// NonSelfUpdates reports whether issues carry
	// NonSelfUpdatedAt times, which then take the place of
	// UpdatedAt for the updated qualifier and nonSelfUpdate sort key.
	NonSelfUpdates bool
}

func (env *Env) now() time.Time {
	if env.Now != nil {
		return env.Now()
	}
	return time.Now()
}

func (env *Env) today() civil.Date {
	return civil.DateOf(env.now())
}

// milestone returns the milestone of the issue, or nil.
func (env *Env) milestone(i *model.Issue) *model.Milestone {
	if i.Milestone == 0 || env.Store == nil {
		return nil
	}
	return env.Store.Milestone(i.Repo, i.Milestone)
}

// assignee returns the assignee of the issue, or nil.
// An assignee unknown to the store is returned with only a login.
func (env *Env) assignee(i *model.Issue) *model.User {
	if i.Assignee == "" {
		return nil
	}
	if env.Store != nil {
		if u := env.Store.User(i.Repo, i.Assignee); u != nil {
			return u
		}
	}
	return &model.User{Repo: i.Repo, Login: i.Assignee}
}

// updatedAt returns the time the issue was last updated,
// preferring the last update by someone else when known.
func (env *Env) updatedAt(i *model.Issue) time.Time {
	if env.NonSelfUpdates && !i.NonSelfUpdatedAt.IsZero() {
		return i.NonSelfUpdatedAt
	}
	return i.UpdatedAt
}
