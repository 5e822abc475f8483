// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hubturbo/filterql/internal/filter"
	"github.com/hubturbo/filterql/internal/model"
	"github.com/hubturbo/filterql/internal/testutil"
)

// sortIDs selects all of issues using the filter text
// and returns the IDs of the result.
func sortIDs(t *testing.T, env *Env, text string, issues []*model.Issue) []int {
	t.Helper()
	e, err := filter.Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	q, err := Compile(env, e)
	if err != nil {
		t.Fatal(err)
	}
	var ids []int
	for _, i := range q.Select(slices.Values(issues)) {
		ids = append(ids, i.ID)
	}
	return ids
}

func TestSortAssignee(t *testing.T) {
	issues := []*model.Issue{
		{Repo: "c/c", ID: 1, Assignee: "java"},
		{Repo: "a/a", ID: 2, Assignee: "ada"},
		{Repo: "b/b", ID: 3, Assignee: "c++"},
		{Repo: "e/e", ID: 4, Assignee: "python"},
		{Repo: "d/d", ID: 5, Assignee: "javascript"},
		{Repo: "f/f", ID: 6},
	}
	env := &Env{}
	for _, tt := range []struct {
		sort string
		want []int
	}{
		{"sort:assignee", []int{2, 3, 1, 5, 4, 6}},
		{"sort:~assignee", []int{6, 4, 5, 1, 3, 2}},
		{"sort:as", []int{2, 3, 1, 5, 4, 6}},
	} {
		if diff := cmp.Diff(tt.want, sortIDs(t, env, tt.sort, issues)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tt.sort, diff)
		}
	}
}

func TestSortRepoIDAssignee(t *testing.T) {
	issues := []*model.Issue{
		{Repo: "d/d", ID: 3, Assignee: "zed"},
		{Repo: "c/c", ID: 1, Assignee: "java"},
		{Repo: "a/a", ID: 2, Assignee: "ada"},
		{Repo: "d/d", ID: 5, Assignee: "javascript"},
		{Repo: "b/b", ID: 3, Assignee: "c++"},
		{Repo: "e/e", ID: 4, Assignee: "python"},
		{Repo: "d/d", ID: 3, Assignee: "bob"},
	}
	e, err := filter.Parse("sort:repo,id,assignee")
	if err != nil {
		t.Fatal(err)
	}
	q, err := Compile(&Env{}, e)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, i := range q.Select(slices.Values(issues)) {
		got = append(got, i.Ref()+" "+i.Assignee)
	}
	want := []string{
		"a/a#2 ada",
		"b/b#3 c++",
		"c/c#1 java",
		"d/d#3 bob",
		"d/d#3 zed",
		"d/d#5 javascript",
		"e/e#4 python",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sort:repo,id,assignee (-want +got):\n%s", diff)
	}
}

func TestSortMilestone(t *testing.T) {
	const repo = "test/test"
	store := &testStore{
		milestones: []*model.Milestone{
			{Repo: repo, ID: 1, Title: "V1", Due: testutil.Date(t, "2015-01-10")},
			{Repo: repo, ID: 2, Title: "V2", Due: testutil.Date(t, "2015-01-30")},
			{Repo: repo, ID: 3, Title: "V3", Due: testutil.Date(t, "2015-02-14")},
			{Repo: repo, ID: 4, Title: "V4"},
		},
	}
	issues := []*model.Issue{
		{Repo: repo, ID: 1, Milestone: 1},
		{Repo: repo, ID: 2, Milestone: 2},
		{Repo: repo, ID: 3, Milestone: 3},
		{Repo: repo, ID: 4, Milestone: 4},
		{Repo: repo, ID: 5},
		{Repo: repo, ID: 6},
		{Repo: repo, ID: 7, Milestone: 4},
	}
	env := &Env{Store: store}
	for _, tt := range []struct {
		sort string
		want []int
	}{
		{"sort:milestone,id", []int{3, 2, 1, 4, 7, 5, 6}},
		{"sort:~milestone,id", []int{5, 6, 4, 7, 1, 2, 3}},
		{"sort:m,~id", []int{3, 2, 1, 7, 4, 6, 5}},
	} {
		if diff := cmp.Diff(tt.want, sortIDs(t, env, tt.sort, issues)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tt.sort, diff)
		}
	}
}

func TestSortLabelGroup(t *testing.T) {
	labels := [][]string{
		0: {"test.1"},
		1: {"test.2"},
		2: {"test.a"},
		3: {"test.1", "test.2"},
		4: {"test.a", "test.2"},
		5: {"test.2", "test.a", "test.1"},
		6: {"something"},
		7: nil,
	}
	var issues []*model.Issue
	for i := len(labels) - 1; i >= 0; i-- {
		issues = append(issues, &model.Issue{ID: i, Labels: labels[i]})
	}
	env := &Env{}
	for _, tt := range []struct {
		sort string
		want []int
	}{
		{"sort:test,id", []int{0, 1, 2, 3, 4, 5, 6, 7}},
		{"sort:test.,id", []int{0, 1, 2, 3, 4, 5, 6, 7}},
		{"sort:~test,id", []int{5, 4, 3, 2, 1, 0, 6, 7}},
		{"sort:~test,~id", []int{5, 4, 3, 2, 1, 0, 7, 6}},
	} {
		if diff := cmp.Diff(tt.want, sortIDs(t, env, tt.sort, issues)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tt.sort, diff)
		}
	}
}

func TestSortStatus(t *testing.T) {
	issues := []*model.Issue{
		{ID: 1, Open: false},
		{ID: 2, Open: true},
		{ID: 3, Open: false},
		{ID: 4, Open: true},
	}
	env := &Env{}
	for _, tt := range []struct {
		sort string
		want []int
	}{
		{"sort:status,id", []int{2, 4, 1, 3}},
		{"sort:~state,id", []int{1, 3, 2, 4}},
		{"sort:s,~id", []int{4, 2, 3, 1}},
	} {
		if diff := cmp.Diff(tt.want, sortIDs(t, env, tt.sort, issues)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tt.sort, diff)
		}
	}
}

func TestSortTimes(t *testing.T) {
	issues := []*model.Issue{
		{ID: 1, UpdatedAt: testutil.Time(t, "2015-06-03"), NonSelfUpdatedAt: testutil.Time(t, "2015-06-01")},
		{ID: 2, UpdatedAt: testutil.Time(t, "2015-06-01"), NonSelfUpdatedAt: testutil.Time(t, "2015-06-02")},
		{ID: 3, UpdatedAt: testutil.Time(t, "2015-06-02")},
	}
	for _, tt := range []struct {
		nonSelf bool
		sort    string
		want    []int
	}{
		{false, "sort:updated", []int{2, 3, 1}},
		{false, "sort:~date", []int{1, 3, 2}},
		{false, "sort:nonSelfUpdate", []int{2, 3, 1}},
		{true, "sort:nonSelfUpdate", []int{1, 2, 3}},
		{true, "sort:updated", []int{2, 3, 1}},
	} {
		env := &Env{NonSelfUpdates: tt.nonSelf}
		if diff := cmp.Diff(tt.want, sortIDs(t, env, tt.sort, issues)); diff != "" {
			t.Errorf("%s nonSelf=%v (-want +got):\n%s", tt.sort, tt.nonSelf, diff)
		}
	}
}

func TestComparatorEmpty(t *testing.T) {
	c := Comparator(&Env{}, nil)
	a := &model.Issue{ID: 1, Open: true}
	b := &model.Issue{ID: 2}
	if c(a, b) != 0 || c(b, a) != 0 {
		t.Errorf("empty comparator distinguishes issues")
	}
}

func TestLabelGroupComparator(t *testing.T) {
	none := &model.Issue{Labels: []string{"docs"}}
	one := &model.Issue{Labels: []string{"type.bug"}}
	two := &model.Issue{Labels: []string{"type.bug", "type.feature"}}
	for _, inverted := range []bool{false, true} {
		c := LabelGroupComparator("type", inverted)
		if c(none, one) <= 0 || c(one, none) >= 0 {
			t.Errorf("inverted=%v: issue without group label does not sort last", inverted)
		}
		want := -1
		if inverted {
			want = +1
		}
		if got := c(one, two); got != want {
			t.Errorf("inverted=%v: c(one, two) = %d, want %d", inverted, got, want)
		}
	}
}
