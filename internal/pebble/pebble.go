// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pebble implements a [storage.DB] using Pebble,
// a production-quality key-value database from CockroachDB.
//
// A Pebble database can only be opened by one process at a time.
package pebble

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/cockroachdb/pebble"
	"github.com/hubturbo/filterql/internal/storage"
)

// Open opens an existing Pebble database in the named directory.
// The database must already exist.
func Open(lg *slog.Logger, dir string) (storage.DB, error) {
	return open(lg, dir, &pebble.Options{ErrorIfNotExists: true})
}

// Create creates a new Pebble database in the named directory.
// The database (and directory) must not already exist.
func Create(lg *slog.Logger, dir string) (storage.DB, error) {
	return open(lg, dir, &pebble.Options{ErrorIfExists: true})
}

func open(lg *slog.Logger, dir string, opts *pebble.Options) (storage.DB, error) {
	opts.Logger = pebbleLogger{lg}
	p, err := pebble.Open(dir, opts)
	if err != nil {
		lg.Error("pebble open", "dir", dir, "create", opts.ErrorIfExists, "err", err)
		return nil, err
	}
	return &db{p: p, slog: lg}, nil
}

// A pebbleLogger forwards Pebble's own log messages to slog.
type pebbleLogger struct {
	slog *slog.Logger
}

func (l pebbleLogger) Infof(format string, args ...any) {
	l.slog.Info("pebble", "msg", fmt.Sprintf(format, args...))
}

func (l pebbleLogger) Errorf(format string, args ...any) {
	l.slog.Error("pebble", "msg", fmt.Sprintf(format, args...))
}

func (l pebbleLogger) Fatalf(format string, args ...any) {
	storage.Panic("pebble fatal", "msg", fmt.Sprintf(format, args...))
}

type db struct {
	p    *pebble.DB
	slog *slog.Logger
}

func (d *db) Panic(msg string, args ...any) {
	d.slog.Error(msg, args...)
	storage.Panic(msg, args...)
}

func (d *db) Get(key []byte) (val []byte, ok bool) {
	v, c, err := d.p.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		// unreachable except db error
		d.Panic("pebble get", "key", storage.Fmt(key), "err", err)
	}
	val = bytes.Clone(v)
	c.Close()
	return val, true
}

func (d *db) Set(key, val []byte) {
	if len(key) == 0 {
		d.Panic("pebble set: empty key")
	}
	if err := d.p.Set(key, val, noSync); err != nil {
		// unreachable except db error
		d.Panic("pebble set", "key", storage.Fmt(key), "err", err)
	}
}

func (d *db) Delete(key []byte) {
	if err := d.p.Delete(key, noSync); err != nil {
		// unreachable except db error
		d.Panic("pebble delete", "key", storage.Fmt(key), "err", err)
	}
}

// DeleteRange deletes start ≤ key ≤ end.
// Pebble's range deletion excludes its end,
// so the end key is deleted separately in the same batch.
func (d *db) DeleteRange(start, end []byte) {
	b := d.p.NewBatch()
	defer b.Close()
	deleteRange(d, b, start, end)
	if err := b.Commit(noSync); err != nil {
		// unreachable except db error
		d.Panic("pebble delete range", "start", storage.Fmt(start), "end", storage.Fmt(end), "err", err)
	}
}

func deleteRange(d *db, b *pebble.Batch, start, end []byte) {
	if cmp.Compare(string(start), string(end)) > 0 {
		return
	}
	if err := b.DeleteRange(start, end, nil); err != nil {
		// unreachable except db error
		d.Panic("pebble batch delete range", "start", storage.Fmt(start), "end", storage.Fmt(end), "err", err)
	}
	if err := b.Delete(end, nil); err != nil {
		// unreachable except db error
		d.Panic("pebble batch delete", "key", storage.Fmt(end), "err", err)
	}
}

func (d *db) Scan(start, end []byte) iter.Seq2[[]byte, func() []byte] {
	// Pebble's upper bound is exclusive;
	// end+"\x00" is the smallest key after end.
	upper := append(bytes.Clone(end), 0)
	return func(yield func(key []byte, val func() []byte) bool) {
		it, err := d.p.NewIter(&pebble.IterOptions{LowerBound: start, UpperBound: upper})
		if err != nil {
			// unreachable except db error
			d.Panic("pebble new iterator", "start", storage.Fmt(start), "err", err)
		}
		defer it.Close()
		for it.First(); it.Valid(); it.Next() {
			key := bytes.Clone(it.Key())
			val := func() []byte {
				v, err := it.ValueAndErr()
				if err != nil {
					// unreachable except db error
					d.Panic("pebble iterator value", "key", storage.Fmt(key), "err", err)
				}
				return bytes.Clone(v)
			}
			if !yield(key, val) {
				return
			}
		}
	}
}

func (d *db) Flush() {
	if err := d.p.Flush(); err != nil {
		// unreachable except db error
		d.Panic("pebble flush", "err", err)
	}
}

func (d *db) Close() {
	if err := d.p.Close(); err != nil {
		// unreachable except db error
		d.Panic("pebble close", "err", err)
	}
}

var noSync = pebble.NoSync

func (d *db) Batch() storage.Batch {
	return &batch{d, d.p.NewBatch()}
}

type batch struct {
	d *db
	b *pebble.Batch
}

func (b *batch) Set(key, val []byte) {
	if len(key) == 0 {
		b.d.Panic("pebble batch set: empty key")
	}
	if err := b.b.Set(key, val, nil); err != nil {
		// unreachable except db error
		b.d.Panic("pebble batch set", "key", storage.Fmt(key), "err", err)
	}
}

func (b *batch) Delete(key []byte) {
	if err := b.b.Delete(key, nil); err != nil {
		// unreachable except db error
		b.d.Panic("pebble batch delete", "key", storage.Fmt(key), "err", err)
	}
}

func (b *batch) DeleteRange(start, end []byte) {
	deleteRange(b.d, b.b, start, end)
}

// maxBatch is the size in bytes at which MaybeApply commits a batch.
// Pebble refuses batches of 4GB or more.
const maxBatch = 100 << 20

func (b *batch) MaybeApply() bool {
	if b.b.Len() < maxBatch {
		return false
	}
	b.Apply()
	return true
}

func (b *batch) Apply() {
	if err := b.b.Commit(noSync); err != nil {
		// unreachable except db error
		b.d.Panic("pebble batch commit", "err", err)
	}
	b.b.Reset()
}
