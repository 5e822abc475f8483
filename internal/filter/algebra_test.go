// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, s string) Expr {
	t.Helper()
	e, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return e
}

var algebraInputs = []string{
	"",
	"label:bug",
	"label:bug state:open",
	"sort:updated label:bug OR count:5",
	"NOT sort:id",
	"NOT (sort:id count:3) label:x",
	"(label:a OR label:b) ~(in:title sort:id) repo:x/y",
	"sort:id count:5 in:title",
}

func isMeta(q *Qualifier) bool {
	switch q.Kind {
	case KindSort, KindCount, KindIn:
		return true
	}
	return false
}

func TestFilter(t *testing.T) {
	keep := func(q *Qualifier) bool { return !isMeta(q) }
	for _, tt := range []struct {
		in, want string
	}{
		{"", ""},
		{"label:bug", "label:bug"},
		{"sort:id", ""},
		{"sort:updated label:bug", "label:bug"},
		{"label:bug sort:updated", "label:bug"},
		{"label:bug OR count:5", "label:bug"},
		{"NOT sort:id", ""},
		{"NOT (sort:id count:3) label:x", "label:x"},
		{"(label:a OR label:b) ~(in:title sort:id) repo:x/y", "(label:a OR label:b) repo:x/y"},
		{"NOT (label:a sort:id)", "NOT label:a"},
	} {
		got := Filter(mustParse(t, tt.in), keep)
		if !Equal(got, mustParse(t, tt.want)) {
			t.Errorf("Filter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := Filter(nil, keep); got != nil {
		t.Errorf("Filter(nil) = %v, want nil", got)
	}
}

func TestFilterIdempotent(t *testing.T) {
	preds := map[string]func(*Qualifier) bool{
		"meta":   isMeta,
		"nometa": func(q *Qualifier) bool { return !isMeta(q) },
		"none":   func(*Qualifier) bool { return false },
		"all":    func(*Qualifier) bool { return true },
	}
	for _, in := range algebraInputs {
		for name, p := range preds {
			once := Filter(mustParse(t, in), p)
			twice := Filter(once, p)
			if !Equal(once, twice) {
				t.Errorf("%s: Filter(Filter(%q)) = %q, want %q", name, in, twice, once)
			}
		}
	}
}

func TestMap(t *testing.T) {
	upper := func(q *Qualifier) Expr {
		if q.Kind != KindLabel {
			return q
		}
		return &Disjunction{
			Left:  q,
			Right: &Qualifier{Kind: KindLabel, Content: Text("x." + q.Content.String())},
		}
	}
	got := Map(mustParse(t, "label:a state:open"), upper)
	want := mustParse(t, "(label:a OR label:x.a) state:open")
	if !Equal(got, want) {
		t.Errorf("Map = %q, want %q", got, want)
	}

	drop := func(q *Qualifier) Expr {
		if q.Kind == KindState {
			return EmptyQualifier()
		}
		return q
	}
	got = Map(mustParse(t, "NOT state:open label:a"), drop)
	want = mustParse(t, "label:a")
	if !Equal(got, want) {
		t.Errorf("Map = %q, want %q", got, want)
	}
}

func TestFindKinds(t *testing.T) {
	e := mustParse(t, `label:a (NOT state:open OR "x") m:v1 label:b`)

	labels := Find(e, func(q *Qualifier) bool { return q.Kind == KindLabel })
	var texts []string
	for _, q := range labels {
		texts = append(texts, q.Content.String())
	}
	if diff := cmp.Diff([]string{"a", "b"}, texts); diff != "" {
		t.Errorf("Find mismatch (-want +got):\n%s", diff)
	}

	want := []Kind{KindLabel, KindState, KindKeyword, KindMilestone, KindLabel}
	if diff := cmp.Diff(want, Kinds(e)); diff != "" {
		t.Errorf("Kinds mismatch (-want +got):\n%s", diff)
	}

	if !HasKind(e, KindMilestone) || HasKind(e, KindRepo) {
		t.Errorf("HasKind wrong for %q", e)
	}
	if got := Find(nil, func(*Qualifier) bool { return true }); got != nil {
		t.Errorf("Find(nil) = %v, want nil", got)
	}
}

func TestEqual(t *testing.T) {
	if !Equal(EmptyQualifier(), mustParse(t, "")) {
		t.Errorf("empty qualifiers differ")
	}
	if Equal(EmptyQualifier(), FalseQualifier()) {
		t.Errorf("empty equals false")
	}
	if Equal(FalseQualifier(), &Qualifier{Kind: KindFalse, Content: Text("")}) {
		t.Errorf("false equals qualifier with content")
	}
	if Equal(mustParse(t, "id:5"), mustParse(t, `id:"5"`)) {
		t.Errorf("number equals text")
	}
	if !Equal(mustParse(t, "sort:a,~b"), mustParse(t, "sort(a, ~b)")) {
		t.Errorf("equal sort keys differ")
	}
	if Equal(mustParse(t, "sort:a,~b"), mustParse(t, "sort:a,b")) {
		t.Errorf("different sort keys equal")
	}
	if Equal(mustParse(t, "a:b c:d"), mustParse(t, "a:b OR c:d")) {
		t.Errorf("conjunction equals disjunction")
	}
	if Equal(mustParse(t, "a:b"), nil) || !Equal(nil, nil) {
		t.Errorf("nil handling wrong")
	}
}
