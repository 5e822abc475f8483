// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"fmt"
	"io"
	"strings"
)

func (q *Qualifier) String() string {
	switch q.Kind {
	case KindEmpty:
		return ""
	case KindFalse:
		return "false()"
	case KindKeyword:
		if t, ok := q.Content.(Text); ok {
			return `"` + string(t) + `"`
		}
	}
	if q.Content == nil {
		return string(q.Kind) + "()"
	}
	if t, ok := q.Content.(Text); ok {
		if _, ok := quotedRange(q.Kind, string(t)); ok {
			// Quoted after a colon this would read as a range.
			return string(q.Kind) + `("` + string(t) + `")`
		}
	}
	return string(q.Kind) + ":" + q.Content.String()
}

func (c *Conjunction) String() string {
	right := c.Right.String()
	if _, ok := c.Right.(*Conjunction); ok {
		right = "(" + right + ")"
	}
	return c.Left.String() + " " + right
}

func (d *Disjunction) String() string {
	return "(" + d.Left.String() + " OR " + d.Right.String() + ")"
}

func (n *Negation) String() string {
	if _, ok := n.Expr.(*Conjunction); ok {
		return "NOT (" + n.Expr.String() + ")"
	}
	return "NOT " + n.Expr.String()
}

// Dump returns a multi-line description of the tree e,
// one node per line, indented by depth.
func Dump(e Expr) string {
	var sb strings.Builder
	dump(&sb, e, 0)
	return sb.String()
}

func dump(w io.Writer, e Expr, indent int) {
	fmt.Fprintf(w, "%*s", indent, "")
	switch e := e.(type) {
	case nil:
		io.WriteString(w, "nil\n")
	case *Qualifier:
		switch c := e.Content.(type) {
		case nil:
			fmt.Fprintf(w, "%s\n", e.Kind)
		case Text:
			fmt.Fprintf(w, "%s text %q\n", e.Kind, string(c))
		case Number:
			fmt.Fprintf(w, "%s number %d\n", e.Kind, int(c))
		case Date:
			fmt.Fprintf(w, "%s date %s\n", e.Kind, c)
		case NumberRange:
			fmt.Fprintf(w, "%s number range %s\n", e.Kind, c)
		case DateRange:
			fmt.Fprintf(w, "%s date range %s\n", e.Kind, c)
		case SortKeys:
			fmt.Fprintf(w, "%s keys %s\n", e.Kind, c)
		default:
			panic("can't happen")
		}
	case *Conjunction:
		io.WriteString(w, "conjunction\n")
		dump(w, e.Left, indent+2)
		dump(w, e.Right, indent+2)
	case *Disjunction:
		io.WriteString(w, "disjunction\n")
		dump(w, e.Left, indent+2)
		dump(w, e.Right, indent+2)
	case *Negation:
		io.WriteString(w, "not\n")
		dump(w, e.Expr, indent+2)
	default:
		panic("can't happen")
	}
}
