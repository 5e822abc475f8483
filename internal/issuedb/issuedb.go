// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package issuedb stores issues and the labels, milestones and users
// of their repositories in a [storage.DB], and implements
// [model.Store] on top of it.
//
// Records are stored as JSON under [rsc.io/ordered] keys
// of the form (kind, repo, id), so the records of one repository
// are contiguous and ordered by id.
package issuedb

import (
	"encoding/json"
	"iter"
	"log/slog"
	"strings"

	"github.com/hubturbo/filterql/internal/model"
	"github.com/hubturbo/filterql/internal/storage"
	"rsc.io/ordered"
)

// Record kinds, the first element of every key.
const (
	issueKind     = "issue"
	labelKind     = "label"
	milestoneKind = "milestone"
	userKind      = "user"
)

// A DB is an issue database.
type DB struct {
	slog *slog.Logger
	db   storage.DB
}

var _ model.Store = (*DB)(nil)

// New returns a DB backed by db.
func New(lg *slog.Logger, db storage.DB) *DB {
	return &DB{slog: lg, db: db}
}

// Flush flushes the underlying database.
func (d *DB) Flush() { d.db.Flush() }

func o(list ...any) []byte { return ordered.Encode(list...) }

func (d *DB) put(b storage.Batch, key []byte, v any) {
	js, err := json.Marshal(v)
	if err != nil {
		// unreachable: records have only marshalable fields
		d.db.Panic("issuedb json marshal", "key", storage.Fmt(key), "err", err)
	}
	if b != nil {
		b.Set(key, js)
		return
	}
	d.db.Set(key, js)
}

func decode[T any](db storage.DB, key, val []byte) *T {
	v := new(T)
	if err := json.Unmarshal(val, v); err != nil {
		db.Panic("issuedb json unmarshal", "key", storage.Fmt(key), "val", string(val), "err", err)
	}
	return v
}

func get[T any](db storage.DB, key []byte) *T {
	val, ok := db.Get(key)
	if !ok {
		return nil
	}
	return decode[T](db, key, val)
}

// scan returns the records of the given kind in repo,
// or in all repositories if repo is empty.
func scan[T any](db storage.DB, kind, repo string) iter.Seq[*T] {
	start, end := o(kind), o(kind, ordered.Inf)
	if repo != "" {
		start, end = o(kind, repo), o(kind, repo, ordered.Inf)
	}
	return func(yield func(*T) bool) {
		for key, val := range db.Scan(start, end) {
			if !yield(decode[T](db, key, val())) {
				return
			}
		}
	}
}

// PutIssue stores the issue, replacing any previous version.
func (d *DB) PutIssue(issue *model.Issue) {
	d.put(nil, o(issueKind, issue.Repo, issue.ID), issue)
}

// Issue returns the issue with the given repo and id, or nil.
func (d *DB) Issue(repo string, id int) *model.Issue {
	return get[model.Issue](d.db, o(issueKind, repo, id))
}

// Issues returns the issues in repo in increasing id order.
// If repo is empty, Issues returns the issues of all
// repositories, ordered by repo and then id.
func (d *DB) Issues(repo string) iter.Seq[*model.Issue] {
	return scan[model.Issue](d.db, issueKind, repo)
}

// DeleteIssue deletes the issue with the given repo and id.
func (d *DB) DeleteIssue(repo string, id int) {
	d.db.Delete(o(issueKind, repo, id))
}

// PutLabel stores the label.
func (d *DB) PutLabel(l *model.Label) {
	d.put(nil, o(labelKind, l.Repo, l.Name), l)
}

// PutMilestone stores the milestone.
func (d *DB) PutMilestone(m *model.Milestone) {
	d.put(nil, o(milestoneKind, m.Repo, m.ID), m)
}

// PutUser stores the user.
func (d *DB) PutUser(u *model.User) {
	d.put(nil, o(userKind, u.Repo, u.Login), u)
}

// Labels returns the labels of repo, sorted by name.
func (d *DB) Labels(repo string) []*model.Label {
	return collect(scan[model.Label](d.db, labelKind, repo))
}

// Milestones returns the milestones of repo, sorted by ID.
func (d *DB) Milestones(repo string) []*model.Milestone {
	return collect(scan[model.Milestone](d.db, milestoneKind, repo))
}

// Users returns the users of repo, sorted by login.
func (d *DB) Users(repo string) []*model.User {
	return collect(scan[model.User](d.db, userKind, repo))
}

// Milestone returns the milestone of repo with the given ID, or nil.
func (d *DB) Milestone(repo string, id int) *model.Milestone {
	return get[model.Milestone](d.db, o(milestoneKind, repo, id))
}

// User returns the user of repo with the given login, or nil.
// Logins are compared without regard to case.
func (d *DB) User(repo, login string) *model.User {
	if u := get[model.User](d.db, o(userKind, repo, login)); u != nil {
		return u
	}
	for u := range scan[model.User](d.db, userKind, repo) {
		if strings.EqualFold(u.Login, login) {
			return u
		}
	}
	return nil
}

// Repos returns the names of the repositories that have issues, in order.
func (d *DB) Repos() []string {
	var repos []string
	for key := range d.db.Scan(o(issueKind), o(issueKind, ordered.Inf)) {
		var repo string
		if _, err := ordered.DecodePrefix(key, new(string), &repo); err != nil {
			d.db.Panic("issuedb repo decode", "key", storage.Fmt(key), "err", err)
		}
		if len(repos) == 0 || repos[len(repos)-1] != repo {
			repos = append(repos, repo)
		}
	}
	return repos
}

func collect[T any](seq iter.Seq[*T]) []*T {
	var list []*T
	for v := range seq {
		list = append(list, v)
	}
	return list
}
