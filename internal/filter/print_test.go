// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"testing"

	"cloud.google.com/go/civil"
)

func TestString(t *testing.T) {
	for _, tt := range []struct {
		in, want string
	}{
		{"", ""},
		{"label:bug", "label:bug"},
		{"LABEL(bug)", "label:bug"},
		{"as:dar", "assignee:dar"},
		{`"crash"`, `"crash"`},
		{`title(a b)`, `title:"a b"`},
		{`title:"and"`, `title:"and"`},
		{`title:"12"`, `title:"12"`},
		{`title:"2014-1-1"`, `title:"2014-1-1"`},
		{"title:12", "title:12"},
		{"created:2014-1-1", "created:2014-01-01"},
		{"created:2014-1-1 .. 2014-2-01", "created:2014-01-01 .. 2014-02-01"},
		{"updated:<24", "updated:<24"},
		{"sort:~a,b", "sort:~a,b"},
		{"a:b AND c:d", "a:b c:d"},
		{"a:b (c:d e:f)", "a:b (c:d e:f)"},
		{"a:b OR c:d OR e:f", "((a:b OR c:d) OR e:f)"},
		{"NOT a:b c:d", "NOT a:b c:d"},
		{"NOT (a:b c:d)", "NOT (a:b c:d)"},
		{"label:a;b", "(label:a OR label:b)"},
		{"id:o/r#5", "repo:o/r id:5"},
		{"label:not", "label:not"},
		{`title:"NOT"`, `title:"NOT"`},
		{"title(not working)", `title:"not working"`},
		{`created:" > 2014-5-1 "`, "created:>2014-05-01"},
		{`id:"3 .. 5"`, "id:3 .. 5"},
		{`title(" > 5 ")`, `title(" > 5 ")`},
		{`title:"5 apples"`, `title:"5 apples"`},
	} {
		if got := mustParse(t, tt.in).String(); got != tt.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, in := range []string{
		`milestone:curr-1 state(open) OR label(urgent) sort:status`,
		`label:bug;feature NOT (title:"a b" OR desc:c) created:>=2014-3-1 count:10`,
		`~~label:x is:pr (as:a | au:b) & involves:c`,
		`id:1 .. 9 updated:>5 created:2014-1-1 .. *`,
		`repo:a/b id:#3 "free text" no:milestone has:label type:issue in:title`,
		`sort:~milestone,type.,id`,
		`label:"x y" title("12") title(2014-2-3)`,
		`created:" 2014-5-1 .. 2014-5-2 " title("<= 3") label:"3 .. x"`,
	} {
		e := mustParse(t, in)
		again := mustParse(t, e.String())
		if !Equal(e, again) {
			t.Errorf("round trip of %q via %q:\ngot:\n%swant:\n%s", in, e.String(), Dump(again), Dump(e))
		}
	}
}

func TestStringProgrammatic(t *testing.T) {
	d := civil.Date{Year: 2020, Month: 1, Day: 31}
	r, err := NewDateRange(nil, &d, true)
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range []struct {
		e    Expr
		want string
	}{
		{FalseQualifier(), "false()"},
		{EmptyQualifier(), ""},
		{&Qualifier{Kind: KindCreated, Content: r}, "created:<2020-01-31"},
		{&Qualifier{Kind: KindCreated, Content: Date{d}}, "created:2020-01-31"},
		{&Qualifier{Kind: KindTitle, Content: Text("")}, `title:""`},
		{&Qualifier{Kind: KindTitle, Content: Text("NOT")}, `title:"NOT"`},
		{&Negation{Expr: &Negation{Expr: &Qualifier{Kind: KindLabel, Content: Text("a")}}}, "NOT NOT label:a"},
	} {
		if got := tt.e.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
