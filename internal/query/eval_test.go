// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/hubturbo/filterql/internal/filter"
	"github.com/hubturbo/filterql/internal/issuedb"
	"github.com/hubturbo/filterql/internal/model"
	"github.com/hubturbo/filterql/internal/storage"
	"github.com/hubturbo/filterql/internal/testutil"
	"gopkg.in/yaml.v3"
)

// yamlTests holds the contents of a testdata/*_test.yaml file.
type yamlTests struct {
	Tests []yamlTest `yaml:"tests"`
}

// yamlTest holds the contents of a single test.
type yamlTest struct {
	Description string `yaml:"description"`
	Filter      string `yaml:"filter"`
	Error       string `yaml:"error"`
	Matches     []int  `yaml:"matches"`
	Skip        bool   `yaml:"skip"`
}

// testNow is the current time for the issues in testdata/issues.yaml.
var testNow = time.Date(2015, 6, 15, 12, 0, 0, 0, time.UTC)

// loadIssues returns an issue DB holding testdata/issues.yaml
// and an environment using it.
func loadIssues(t *testing.T) (*issuedb.DB, *Env) {
	t.Helper()
	db := issuedb.New(testutil.Slogger(t), storage.MemDB())
	if err := db.LoadFile(filepath.Join("testdata", "issues.yaml")); err != nil {
		t.Fatal(err)
	}
	env := &Env{
		Store:       db,
		DefaultRepo: "acme/widgets",
		Now:         func() time.Time { return testNow },
	}
	return db, env
}

func TestEvalYAML(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "eval_test.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var tests yamlTests
	if err := yaml.Unmarshal(data, &tests); err != nil {
		t.Fatal(err)
	}
	db, env := loadIssues(t)

	var desc string
	var idx int
	for _, test := range tests.Tests {
		if test.Description != "" {
			desc = test.Description
			idx = 1
			if test.Filter == "" && test.Matches == nil && test.Error == "" {
				continue
			}
		}
		if test.Skip {
			idx++
			continue
		}
		t.Run(fmt.Sprintf("%s %d", desc, idx), func(t *testing.T) {
			runOneTest(t, &test, db, env)
		})
		idx++
	}
}

// runOneTest runs one YAML test.
func runOneTest(t *testing.T, test *yamlTest, db *issuedb.DB, env *Env) {
	e, err := filter.Parse(test.Filter)
	var q *Query
	if err == nil {
		q, err = Compile(env, e)
	}
	if err != nil {
		if test.Error == "" {
			t.Fatalf("%q: %v", test.Filter, err)
		}
		if !strings.Contains(err.Error(), test.Error) {
			t.Fatalf("%q: error %q, want %q", test.Filter, err, test.Error)
		}
		return
	}
	if test.Error != "" {
		t.Fatalf("%q: succeeded, want error %q", test.Filter, test.Error)
	}

	var got []int
	for _, i := range q.Select(db.Issues("")) {
		got = append(got, i.ID)
	}
	if diff := cmp.Diff(test.Matches, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("%q (evaluated as %s): matches (-want +got):\n%s", test.Filter, q.Expr, diff)
	}
}

func TestEvaluatorNil(t *testing.T) {
	match, err := Evaluator(&Env{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !match(&model.Issue{}) {
		t.Errorf("nil expression did not match")
	}
}

func TestEvaluatorSemanticError(t *testing.T) {
	for _, e := range []filter.Expr{
		&filter.Qualifier{Kind: filter.KindID},
		&filter.Qualifier{Kind: filter.KindTitle, Content: filter.SortKeys{{Field: "id"}}},
		&filter.Negation{Expr: &filter.Qualifier{Kind: filter.KindLabel}},
		&filter.Conjunction{
			Left:  filter.EmptyQualifier(),
			Right: &filter.Qualifier{Kind: filter.KindCreated},
		},
	} {
		_, err := Evaluator(&Env{}, e, nil)
		var serr *SemanticError
		if !errors.As(err, &serr) {
			t.Errorf("Evaluator(%s) = %v, want SemanticError", filter.Dump(e), err)
		}
	}
}

func TestEvaluatorUnknownKind(t *testing.T) {
	match, err := Evaluator(&Env{}, &filter.Qualifier{Kind: "bogus", Content: filter.Text("x")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if match(&model.Issue{}) {
		t.Errorf("unknown kind matched")
	}
}

func TestUpdatedTruncatesHours(t *testing.T) {
	now := testutil.Time(t, "2015-06-15T12:00:00Z")
	env := &Env{Now: func() time.Time { return now }}
	issue := &model.Issue{UpdatedAt: now.Add(-(23*time.Hour + 59*time.Minute))}
	for _, tt := range []struct {
		in   string
		want bool
	}{
		{"updated:24", true},
		{"updated:23", false},
		{"updated:<=23", true},
		{"updated:>=24", false},
		{"updated:23 .. 23", true},
	} {
		e, err := filter.Parse(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		match, err := Evaluator(env, e, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got := match(issue); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNonSelfUpdates(t *testing.T) {
	now := testutil.Time(t, "2015-06-15T12:00:00Z")
	issue := &model.Issue{
		UpdatedAt:        now.Add(-1 * time.Hour),
		NonSelfUpdatedAt: now.Add(-48 * time.Hour),
	}
	e, err := filter.Parse("updated:24")
	if err != nil {
		t.Fatal(err)
	}
	for _, nonSelf := range []bool{false, true} {
		env := &Env{Now: func() time.Time { return now }, NonSelfUpdates: nonSelf}
		match, err := Evaluator(env, e, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := match(issue), !nonSelf; got != want {
			t.Errorf("NonSelfUpdates=%v: match = %v, want %v", nonSelf, got, want)
		}
	}
}

func TestCreatedIgnoresTimeOfDay(t *testing.T) {
	issue := &model.Issue{CreatedAt: testutil.Time(t, "2014-12-02T23:59:59Z")}
	for _, tt := range []struct {
		in   string
		want bool
	}{
		{"created:2014-12-2", true},
		{"created:<2014-12-1", false},
		{"created:>2014-12-1", true},
		{"created:<2014-12-3", true},
		{"created:2014-12-1..2014-12-2", true},
		{"created:2014-12-3..*", false},
	} {
		e, err := filter.Parse(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		match, err := Evaluator(&Env{}, e, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got := match(issue); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMatches(t *testing.T) {
	db, env := loadIssues(t)
	issue := db.Issue("acme/gadgets", 7)
	for _, tt := range []struct {
		in   string
		want bool
	}{
		{"", false}, // scoped to acme/widgets
		{"repo:acme/gadgets", true},
		{"repo:acme/gadgets label:bug sort:id", true},
		{"id:acme/gadgets#7", true},
		{"id:acme/gadgets#8", false},
	} {
		e, err := filter.Parse(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Matches(env, e, issue)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
