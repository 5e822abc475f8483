// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"fmt"

	"github.com/hubturbo/filterql/internal/filter"
)

// A SemanticError reports a qualifier whose content cannot be
// evaluated, such as an ordinary qualifier with no content.
// The parser never produces such qualifiers; they can only
// come from expressions built by hand.
type SemanticError struct {
	Qualifier *filter.Qualifier
	Msg       string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("%s qualifier: %s", e.Qualifier.Kind, e.Msg)
}

// An ApplicationError reports why a filter could not be
// applied to an issue.
type ApplicationError struct {
	Msg string
}

func (e *ApplicationError) Error() string {
	return e.Msg
}

func applyErrorf(format string, args ...any) error {
	return &ApplicationError{Msg: fmt.Sprintf(format, args...)}
}
