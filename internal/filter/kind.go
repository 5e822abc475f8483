// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"slices"
	"strings"
)

// A Kind names the kind of a [Qualifier].
// Kinds parsed from unknown names keep the name as written;
// [Kind.Known] reports whether a kind is one of the constants below.
type Kind string

const (
	KindEmpty       Kind = "empty"   // matches everything; never written by users
	KindFalse       Kind = "false"   // matches nothing; never written by users
	KindKeyword     Kind = "keyword" // quoted free text; never written by users
	KindID          Kind = "id"
	KindTitle       Kind = "title"
	KindDescription Kind = "description"
	KindMilestone   Kind = "milestone"
	KindLabel       Kind = "label"
	KindAuthor      Kind = "author"
	KindAssignee    Kind = "assignee"
	KindInvolves    Kind = "involves"
	KindType        Kind = "type"
	KindState       Kind = "state"
	KindHas         Kind = "has"
	KindNo          Kind = "no"
	KindIs          Kind = "is"
	KindCreated     Kind = "created"
	KindUpdated     Kind = "updated"
	KindRepo        Kind = "repo"
	KindIn          Kind = "in"
	KindSort        Kind = "sort"
	KindCount       Kind = "count"
)

// kindInfo describes a user-writable kind.
type kindInfo struct {
	aliases []string
	inputs  string // description of valid inputs
}

var kinds = map[Kind]kindInfo{
	KindID:          {inputs: "a number, a number range, or owner/repo#number"},
	KindTitle:       {inputs: "text"},
	KindDescription: {aliases: []string{"body", "desc"}, inputs: "text"},
	KindMilestone:   {aliases: []string{"m"}, inputs: "a milestone title, or curr, curr+N, curr-N"},
	KindLabel:       {inputs: "a label name, group. or group.name"},
	KindAuthor:      {aliases: []string{"au", "creator"}, inputs: "a user login"},
	KindAssignee:    {aliases: []string{"as"}, inputs: "a user login or name"},
	KindInvolves:    {aliases: []string{"user"}, inputs: "a user login or name"},
	KindType:        {inputs: "issue or pr"},
	KindState:       {aliases: []string{"s", "status"}, inputs: "open or closed"},
	KindHas:         {inputs: "label, milestone, or assignee"},
	KindNo:          {inputs: "label, milestone, or assignee"},
	KindIs:          {inputs: "open, closed, pr, issue, merged, unmerged, read, or unread"},
	KindCreated:     {inputs: "a date or a date range"},
	KindUpdated:     {inputs: "a number of hours or a range of hours"},
	KindRepo:        {inputs: "owner/repo"},
	KindIn:          {inputs: "title or body"},
	KindSort:        {inputs: "a comma-separated list of sort keys, each optionally preceded by ~"},
	KindCount:       {inputs: "a number"},
}

// names maps every user-writable name, including aliases, to its kind.
var names = func() map[string]Kind {
	m := make(map[string]Kind)
	for k, info := range kinds {
		m[string(k)] = k
		for _, a := range info.aliases {
			m[a] = k
		}
	}
	return m
}()

// LookupKind returns the kind named by name or one of its aliases.
// Names are case-insensitive. The names of [KindEmpty], [KindFalse]
// and [KindKeyword] are not recognized.
func LookupKind(name string) (Kind, bool) {
	k, ok := names[strings.ToLower(name)]
	return k, ok
}

// Known reports whether k is one of the kinds defined by this package.
func (k Kind) Known() bool {
	switch k {
	case KindEmpty, KindFalse, KindKeyword:
		return true
	}
	_, ok := kinds[k]
	return ok
}

// ValidInputs describes the inputs accepted by a qualifier of kind k.
// It returns "" for kinds that users cannot write.
func (k Kind) ValidInputs() string {
	return kinds[k].inputs
}

// UserKinds returns the sorted user-writable kinds.
func UserKinds() []Kind {
	var list []Kind
	for k := range kinds {
		list = append(list, k)
	}
	slices.Sort(list)
	return list
}

// extraCompletions are input values offered for completion
// alongside qualifier names.
var extraCompletions = []string{
	"closed", "open", "issue", "pr", "pullrequest", "read", "unread",
	"merged", "unmerged", "comments", "nonSelfUpdate",
}

// CompletionKeywords returns the sorted words offered when completing
// a filter: qualifier names and long aliases, and common input values.
// Aliases of one or two letters are left out.
func CompletionKeywords() []string {
	var list []string
	for name := range names {
		if _, ok := kinds[Kind(name)]; ok || len(name) > 2 {
			list = append(list, name)
		}
	}
	list = append(list, extraCompletions...)
	slices.Sort(list)
	return slices.Compact(list)
}
