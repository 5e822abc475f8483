// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/hubturbo/filterql/internal/filter"
	"github.com/hubturbo/filterql/internal/issuedb"
	"github.com/hubturbo/filterql/internal/model"
	"github.com/hubturbo/filterql/internal/query"
	"golang.org/x/term"
)

// An app runs filters against an issue database.
type app struct {
	slog *slog.Logger
	db   *issuedb.DB
	eng  *query.Engine
	out  io.Writer
}

// run prints the issues selected by the filter text.
func (a *app) run(ctx context.Context, text string) error {
	q, err := a.eng.Compile(ctx, text)
	if err != nil {
		return err
	}
	for _, i := range a.eng.Select(ctx, q, a.db.Issues("")) {
		printIssue(a.out, i)
	}
	return nil
}

// apply applies the filter text to the issue named by ref
// and prints the result. If store is set, the changed issue
// is written back to the database.
func (a *app) apply(ctx context.Context, text, ref string, store bool) error {
	repo, id, err := parseRef(ref)
	if err != nil {
		return err
	}
	issue := a.db.Issue(repo, id)
	if issue == nil {
		return fmt.Errorf("no issue %s", ref)
	}
	changed, err := a.eng.Apply(ctx, text, issue)
	if err != nil {
		return err
	}
	if store {
		a.db.PutIssue(changed)
	}
	printIssue(a.out, changed)
	return nil
}

// parseRef parses an owner/repo#N issue reference.
func parseRef(ref string) (repo string, id int, err error) {
	repo, num, ok := strings.Cut(ref, "#")
	if ok {
		id, err = strconv.Atoi(num)
	}
	if !ok || err != nil || id <= 0 || !strings.Contains(repo, "/") {
		return "", 0, fmt.Errorf("invalid issue %q: want owner/repo#N", ref)
	}
	return repo, id, nil
}

// printIssue prints a one-line summary of the issue.
func printIssue(w io.Writer, i *model.Issue) {
	state := "open"
	if !i.Open {
		state = "closed"
	}
	var extra []string
	if i.Assignee != "" {
		extra = append(extra, "@"+i.Assignee)
	}
	extra = append(extra, i.Labels...)
	fmt.Fprintf(w, "%s\t%s\t%s", i.Ref(), state, i.Title)
	if len(extra) > 0 {
		fmt.Fprintf(w, "\t[%s]", strings.Join(extra, " "))
	}
	fmt.Fprintf(w, "\n")
}

// check reports on the filter text and returns an exit status.
func check(w io.Writer, text string) int {
	e, err := filter.Parse(text)
	if err != nil {
		if filter.Check(text) {
			fmt.Fprintf(w, "incomplete: %v\n", err)
		} else {
			fmt.Fprintf(w, "invalid: %v\n", err)
		}
		return 1
	}
	if err := filter.Validate(e); err != nil {
		fmt.Fprintf(w, "invalid: %v\n", err)
		var pe *filter.ParseError
		if errors.As(err, &pe) {
			printInputs(w, pe.Kind)
		}
		return 1
	}
	fmt.Fprintf(w, "ok: %s\n", e)
	return 0
}

// printInputs prints the inputs that kind accepts,
// or the known qualifiers if kind is unknown.
func printInputs(w io.Writer, kind filter.Kind) {
	if in := kind.ValidInputs(); in != "" {
		fmt.Fprintf(w, "%s takes %s\n", kind, in)
		return
	}
	var list []string
	for _, k := range filter.UserKinds() {
		list = append(list, string(k))
	}
	fmt.Fprintf(w, "qualifiers: %s\n", strings.Join(list, " "))
}

// interactive reads filters from the terminal and runs each one.
func (a *app) interactive(ctx context.Context) error {
	t := term.NewTerminal(os.Stdin, "filter> ")
	t.AutoCompleteCallback = complete
	a.out = t
	for {
		line, err := readLine(t)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := a.run(ctx, line); err != nil {
			fmt.Fprintf(t, "?%v\n", err)
		}
	}
}

func readLine(t *term.Terminal) (string, error) {
	old, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	defer term.Restore(int(os.Stdin.Fd()), old)
	return t.ReadLine()
}

// complete completes the qualifier name before the cursor
// when Tab is pressed and exactly one name fits.
func complete(line string, pos int, key rune) (newLine string, newPos int, ok bool) {
	if key != '\t' {
		return "", 0, false
	}
	start := pos
	for start > 0 && isNameByte(line[start-1]) {
		start--
	}
	prefix := strings.ToLower(line[start:pos])
	if prefix == "" {
		return "", 0, false
	}
	var match string
	for _, kw := range filter.CompletionKeywords() {
		if strings.HasPrefix(strings.ToLower(kw), prefix) {
			if match != "" {
				return "", 0, false
			}
			match = kw
		}
	}
	if match == "" {
		return "", 0, false
	}
	newLine = line[:start] + match + line[pos:]
	return newLine, start + len(match), true
}

func isNameByte(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
