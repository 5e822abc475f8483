// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package storage defines the ordered key-value database
// that issue records are kept in, along with an in-memory
// implementation and a write-absorbing overlay.
package storage

import (
	"bytes"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"rsc.io/ordered"
)

// A DB is a key-value database.
// Keys are compared as byte strings; callers typically
// encode them with [rsc.io/ordered] so that the byte order
// matches the logical order.
// A DB must be safe for concurrent use by multiple goroutines.
//
// A DB has no error results: a failure to read or write the
// underlying storage is a fatal condition, reported by calling
// [DB.Panic].
type DB interface {
	// Get looks up the value associated with key.
	// If there is no entry for key in the database, Get returns nil, false.
	// Otherwise it returns val, true.
	Get(key []byte) (val []byte, ok bool)

	// Scan returns an iterator over all key-value pairs with start ≤ key ≤ end.
	// The second value in each iteration pair is a function returning the value,
	// not the value itself, so that scans that only need the keys can skip
	// loading values.
	//
	// Scan does not guarantee a consistent view of the database:
	// keys and values may change during the iteration.
	Scan(start, end []byte) iter.Seq2[[]byte, func() []byte]

	// Set sets the value associated with key to val.
	Set(key, val []byte)

	// Delete deletes any value associated with key.
	// Delete of an unset key is a no-op.
	Delete(key []byte)

	// DeleteRange deletes all key-value pairs with start ≤ key ≤ end.
	DeleteRange(start, end []byte)

	// Batch returns a new [Batch] that accumulates database mutations
	// to apply in an atomic operation.
	Batch() Batch

	// Flush flushes DB changes to permanent storage.
	// Flush must be called before the process crashes or exits,
	// or else any changes since the previous Flush may be lost.
	Flush()

	// Close flushes and then closes the database.
	Close()

	// Panic logs the error message and args using the database's logger
	// and then panics with the text formatting of its arguments.
	Panic(msg string, args ...any)
}

// A Batch accumulates database mutations that are applied to a [DB]
// as a single atomic operation. Applying bulk operations in a batch
// is also more efficient than making individual [DB] method calls.
// The batched operations apply in the order they are made.
type Batch interface {
	// Set sets the value associated with key to val.
	Set(key, val []byte)

	// Delete deletes any value associated with key.
	Delete(key []byte)

	// DeleteRange deletes all key-value pairs with start ≤ key ≤ end.
	DeleteRange(start, end []byte)

	// MaybeApply calls Apply if the batch is getting close to full.
	// It reports whether it called Apply.
	MaybeApply() bool

	// Apply applies all the batched operations to the underlying DB
	// as a single atomic unit. When Apply returns, the Batch is empty.
	Apply()
}

// Panic panics with the text formatting of its arguments.
// It is meant to be called for database errors or corruption,
// which have been defined to be impossible.
// (See the [DB] documentation.)
func Panic(msg string, args ...any) {
	var b bytes.Buffer
	slog.New(slog.NewTextHandler(&b, nil)).Error(msg, args...)
	s := b.String()
	if _, rest, ok := strings.Cut(s, " level=ERROR msg="); ok {
		s = rest
	}
	panic(strings.TrimSpace(s))
}

// Fmt formats data for printing,
// first trying [ordered.DecodeFmt] in case data is an [ordered encoding],
// then trying a backquoted string if possible,
// and then falling back to a hex dump.
//
// [ordered encoding]: https://pkg.go.dev/rsc.io/ordered
func Fmt(data []byte) string {
	if s, err := ordered.DecodeFmt(data); err == nil {
		return s
	}
	b := data
	for len(b) > 0 && b[0] >= 0x20 && b[0] < 0x7f && b[0] != '`' {
		b = b[1:]
	}
	if len(b) == 0 {
		return "`" + string(data) + "`"
	}
	return fmt.Sprintf("%x", data)
}
