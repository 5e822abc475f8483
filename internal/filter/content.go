// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"errors"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
)

// Content is the content of a [Qualifier].
// It is one of [Text], [Number], [Date], [NumberRange],
// [DateRange] or [SortKeys].
type Content interface {
	content() // restricts Content to types defined here

	// String returns the content as it is written in a filter.
	String() string
}

// Text is free text content.
type Text string

// Number is integer content.
type Number int

// Date is calendar date content.
type Date struct {
	civil.Date
}

// SortKeys is the content of a sort qualifier.
type SortKeys []SortKey

// A SortKey names a field to sort on.
type SortKey struct {
	Field    string
	Inverted bool
}

func (Text) content()        {}
func (Number) content()      {}
func (Date) content()        {}
func (NumberRange) content() {}
func (DateRange) content()   {}
func (SortKeys) content()    {}

// ErrUnbounded is returned when constructing a range with neither bound.
var ErrUnbounded = errors.New("range must have at least one bound")

// NumberRange is an interval of integers with at least one bound.
// NumberRange values are comparable with ==.
type NumberRange struct {
	start, end       int
	hasStart, hasEnd bool
	strict           bool
}

// NewNumberRange returns the range from start to end; a nil
// bound leaves that side open. When strict is set the bounds
// themselves are excluded from the range.
func NewNumberRange(start, end *int, strict bool) (NumberRange, error) {
	if start == nil && end == nil {
		return NumberRange{}, ErrUnbounded
	}
	r := NumberRange{strict: strict}
	if start != nil {
		r.start, r.hasStart = *start, true
	}
	if end != nil {
		r.end, r.hasEnd = *end, true
	}
	return r, nil
}

// Start returns the lower bound and whether there is one.
func (r NumberRange) Start() (int, bool) { return r.start, r.hasStart }

// End returns the upper bound and whether there is one.
func (r NumberRange) End() (int, bool) { return r.end, r.hasEnd }

// Strict reports whether the bounds are excluded.
func (r NumberRange) Strict() bool { return r.strict }

// Encloses reports whether n lies within r.
func (r NumberRange) Encloses(n int) bool {
	return encloses(r.hasStart, r.hasEnd, r.strict,
		func() int { return compareInt(n, r.start) },
		func() int { return compareInt(n, r.end) })
}

func (r NumberRange) String() string {
	return rangeString(r.hasStart, r.hasEnd, r.strict,
		strconv.Itoa(r.start), strconv.Itoa(r.end))
}

// DateRange is an interval of dates with at least one bound.
// DateRange values are comparable with ==.
type DateRange struct {
	start, end       civil.Date
	hasStart, hasEnd bool
	strict           bool
}

// NewDateRange returns the range from start to end; a nil
// bound leaves that side open. When strict is set the bounds
// themselves are excluded from the range.
func NewDateRange(start, end *civil.Date, strict bool) (DateRange, error) {
	if start == nil && end == nil {
		return DateRange{}, ErrUnbounded
	}
	r := DateRange{strict: strict}
	if start != nil {
		r.start, r.hasStart = *start, true
	}
	if end != nil {
		r.end, r.hasEnd = *end, true
	}
	return r, nil
}

// Start returns the lower bound and whether there is one.
func (r DateRange) Start() (civil.Date, bool) { return r.start, r.hasStart }

// End returns the upper bound and whether there is one.
func (r DateRange) End() (civil.Date, bool) { return r.end, r.hasEnd }

// Strict reports whether the bounds are excluded.
func (r DateRange) Strict() bool { return r.strict }

// Encloses reports whether d lies within r.
func (r DateRange) Encloses(d civil.Date) bool {
	return encloses(r.hasStart, r.hasEnd, r.strict,
		func() int { return compareDate(d, r.start) },
		func() int { return compareDate(d, r.end) })
}

func (r DateRange) String() string {
	return rangeString(r.hasStart, r.hasEnd, r.strict,
		r.start.String(), r.end.String())
}

// encloses implements Encloses for both range types.
// cmpStart and cmpEnd compare the value against the bounds.
func encloses(hasStart, hasEnd, strict bool, cmpStart, cmpEnd func() int) bool {
	if hasStart {
		c := cmpStart()
		if c < 0 || strict && c == 0 {
			return false
		}
	}
	if hasEnd {
		c := cmpEnd()
		if c > 0 || strict && c == 0 {
			return false
		}
	}
	return true
}

func rangeString(hasStart, hasEnd, strict bool, start, end string) string {
	switch {
	case hasStart && hasEnd:
		return start + " .. " + end
	case hasStart && strict:
		return ">" + start
	case hasStart:
		return ">=" + start
	case strict:
		return "<" + end
	default:
		return "<=" + end
	}
}

func compareInt(x, y int) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return +1
	}
	return 0
}

func compareDate(x, y civil.Date) int {
	switch {
	case x.Before(y):
		return -1
	case x.After(y):
		return +1
	}
	return 0
}

func (t Text) String() string {
	if isBareText(string(t)) {
		return string(t)
	}
	return `"` + string(t) + `"`
}

// isBareText reports whether s can be written without quotes
// and read back as the same text.
func isBareText(s string) bool {
	toks, err := Tokenize(s)
	if err != nil || len(toks) != 2 || toks[0].Kind != TokenSymbol || toks[0].Text != s {
		return false
	}
	if _, err := strconv.Atoi(s); err == nil {
		return false
	}
	return true
}

func (n Number) String() string {
	return strconv.Itoa(int(n))
}

func (d Date) String() string {
	return d.Date.String()
}

func (keys SortKeys) String() string {
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(k.String())
	}
	return b.String()
}

func (k SortKey) String() string {
	if k.Inverted {
		return "~" + k.Field
	}
	return k.Field
}
