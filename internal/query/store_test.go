// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"strings"

	"github.com/hubturbo/filterql/internal/model"
)

// A testStore is a model.Store holding records in slices.
// Records are returned in the order they were added.
type testStore struct {
	labels     []*model.Label
	milestones []*model.Milestone
	users      []*model.User
}

var _ model.Store = (*testStore)(nil)

func inRepo[T any](list []*T, repo string, repoOf func(*T) string) []*T {
	var out []*T
	for _, x := range list {
		if repo == "" || repoOf(x) == repo {
			out = append(out, x)
		}
	}
	return out
}

func (s *testStore) Labels(repo string) []*model.Label {
	return inRepo(s.labels, repo, func(l *model.Label) string { return l.Repo })
}

func (s *testStore) Milestones(repo string) []*model.Milestone {
	return inRepo(s.milestones, repo, func(m *model.Milestone) string { return m.Repo })
}

func (s *testStore) Users(repo string) []*model.User {
	return inRepo(s.users, repo, func(u *model.User) string { return u.Repo })
}

func (s *testStore) Milestone(repo string, id int) *model.Milestone {
	for _, m := range s.milestones {
		if m.Repo == repo && m.ID == id {
			return m
		}
	}
	return nil
}

func (s *testStore) User(repo, login string) *model.User {
	for _, u := range s.users {
		if u.Repo == repo && strings.EqualFold(u.Login, login) {
			return u
		}
	}
	return nil
}
