// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package filter implements the issue filter language.
// A filter such as
//
//	milestone:curr-1 state(open) OR label(urgent) sort:status
//
// is tokenized by [Tokenize], parsed by [Parse] into an [Expr],
// and can be rewritten with [Filter] and [Map] and printed
// back with [Expr.String], which [Parse] accepts again.
//
// Package filter only deals with syntax. Evaluating an [Expr]
// against issues is the job of package query.
package filter
