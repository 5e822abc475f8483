// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"regexp"
	"slices"
	"strings"
)

// A Label is a label defined in a repository.
type Label struct {
	Repo  string `json:"repo" yaml:"repo"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color"`
}

// labelGroupRE matches the group part of a label name
// and the delimiter that ends it.
var labelGroupRE = regexp.MustCompile(`^[^.-]+([.-])`)

// ParseLabel splits a label name such as "type.bug" or "priority-high"
// into its group and base name. A "." delimiter marks an exclusive group,
// in which an issue should have at most one label; "-" marks a
// non-exclusive group. A name with no delimiter after a non-empty
// prefix has no group and base is the whole name.
func ParseLabel(name string) (group, base string, exclusive, grouped bool) {
	m := labelGroupRE.FindStringSubmatchIndex(name)
	if m == nil {
		return "", name, false, false
	}
	delim := name[m[2]:m[3]]
	return name[:m[2]], name[m[3]:], delim == ".", true
}

// Group returns the group of the label, or "" if it has none.
func (l *Label) Group() string {
	g, _, _, _ := ParseLabel(l.Name)
	return g
}

// Base returns the label name without its group.
func (l *Label) Base() string {
	_, b, _, _ := ParseLabel(l.Name)
	return b
}

// LabelMatches reports whether the label name satisfies the query
// text q, which may name a group ("type."), a base name ("bug")
// or both ("type.bug"). Each part of q that is present must be
// a case-insensitive substring of the same part of the label.
// A query with a group never matches a label without one.
func LabelMatches(q, name string) bool {
	qgroup, qbase, _, qgrouped := ParseLabel(strings.ToLower(q))
	group, base, _, grouped := ParseLabel(strings.ToLower(name))
	if !grouped {
		return !qgrouped && qbase != "" && strings.Contains(base, qbase)
	}
	if qbase == "" {
		return strings.Contains(group, qgroup)
	}
	return strings.Contains(group, qgroup) && strings.Contains(base, qbase)
}

// LabelsInGroup returns the sorted names of the labels in names
// whose group is group, compared without regard to case.
func LabelsInGroup(names []string, group string) []string {
	var list []string
	for _, name := range names {
		if g, _, _, ok := ParseLabel(name); ok && strings.EqualFold(g, group) {
			list = append(list, name)
		}
	}
	slices.Sort(list)
	return list
}
