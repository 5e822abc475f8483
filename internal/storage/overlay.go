// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"iter"
	"sync"

	"rsc.io/omap"
)

// An overlayDB keeps every write in memory on top of a read-only base.
// Deleting a key stores a tombstone for it, so the base is never changed.
type overlayDB struct {
	mu      sync.RWMutex
	base    DB
	changes omap.Map[string, change]
}

// A change is a pending write of one key.
type change struct {
	val  []byte
	dead bool // tombstone hiding the base value
}

func (c change) get() func() []byte {
	return func() []byte { return bytes.Clone(c.val) }
}

// NewOverlayDB returns a DB that reads through to base
// and keeps all of its own writes, including deletions, in memory.
// Flush does nothing; Close closes base.
//
// The overlay is meant for dry runs: it lets a command apply
// filters to stored issues and print the results
// without changing the database.
//
// DeleteRange hides only the base keys present when it is called.
func NewOverlayDB(base DB) DB {
	return &overlayDB{base: base}
}

// Get returns the value associated with the key.
func (db *overlayDB) Get(key []byte) (val []byte, ok bool) {
	if c, ok := db.change(key); ok {
		if c.dead {
			return nil, false
		}
		return bytes.Clone(c.val), true
	}
	return db.base.Get(key)
}

func (db *overlayDB) change(key []byte) (change, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.changes.Get(string(key))
}

// Set sets the value associated with key to val.
func (db *overlayDB) Set(key, val []byte) {
	if len(key) == 0 {
		db.Panic("overlaydb set: empty key")
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.changes.Set(string(key), change{val: bytes.Clone(val)})
}

// Delete deletes any entry with the given key.
func (db *overlayDB) Delete(key []byte) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.changes.Set(string(key), change{dead: true})
}

// DeleteRange deletes all entries with start ≤ key ≤ end.
func (db *overlayDB) DeleteRange(start, end []byte) {
	hide := db.baseKeys(start, end)
	db.mu.Lock()
	defer db.mu.Unlock()
	db.deleteRangeLocked(start, end, hide)
}

// baseKeys returns the keys of base in the range start ≤ key ≤ end.
func (db *overlayDB) baseKeys(start, end []byte) []string {
	var keys []string
	for k := range db.base.Scan(start, end) {
		keys = append(keys, string(k))
	}
	return keys
}

func (db *overlayDB) deleteRangeLocked(start, end []byte, hide []string) {
	db.changes.DeleteRange(string(start), string(end))
	for _, k := range hide {
		db.changes.Set(k, change{dead: true})
	}
}

// Scan returns an iterator over all key-value pairs
// in the range start ≤ key ≤ end, merging the overlay's
// changes into the base keys.
func (db *overlayDB) Scan(start, end []byte) iter.Seq2[[]byte, func() []byte] {
	return func(yield func([]byte, func() []byte) bool) {
		// Overlay keys in range; base values are read through as the scan goes.
		db.mu.RLock()
		var keys []string
		for k := range db.changes.Scan(string(start), string(end)) {
			keys = append(keys, k)
		}
		db.mu.RUnlock()

		// visit yields key using the overlay's current change for it, if any,
		// so that writes made by yield during the scan are observed.
		visit := func(key []byte, base func() []byte) bool {
			if c, ok := db.change(key); ok {
				if c.dead {
					return true
				}
				return yield(key, c.get())
			}
			if base == nil {
				return true // deleted by a range during the scan
			}
			return yield(key, base)
		}
		for k, vf := range db.base.Scan(start, end) {
			for len(keys) > 0 && keys[0] < string(k) {
				if !visit([]byte(keys[0]), nil) {
					return
				}
				keys = keys[1:]
			}
			if len(keys) > 0 && keys[0] == string(k) {
				keys = keys[1:]
			}
			if !visit(k, vf) {
				return
			}
		}
		for _, k := range keys {
			if !visit([]byte(k), nil) {
				return
			}
		}
	}
}

// Batch returns a new batch.
func (db *overlayDB) Batch() Batch {
	return &overlayBatch{db: db}
}

// Flush does nothing: the overlay never reaches permanent storage.
func (db *overlayDB) Flush() {}

func (db *overlayDB) Close() {
	db.base.Close()
}

func (db *overlayDB) Panic(msg string, args ...any) {
	db.base.Panic(msg, args...)
}

// An overlayBatch is a Batch for an overlayDB.
type overlayBatch struct {
	db  *overlayDB
	ops []batchOp
}

// A batchOp is one recorded batch mutation:
// a Set of key, or a deletion of the range [key, end].
type batchOp struct {
	key, val, end []byte
	del           bool
}

func (b *overlayBatch) Set(key, val []byte) {
	if len(key) == 0 {
		b.db.Panic("overlaydb batch set: empty key")
	}
	b.ops = append(b.ops, batchOp{key: bytes.Clone(key), val: bytes.Clone(val)})
}

func (b *overlayBatch) Delete(key []byte) {
	k := bytes.Clone(key)
	b.ops = append(b.ops, batchOp{key: k, end: k, del: true})
}

func (b *overlayBatch) DeleteRange(start, end []byte) {
	b.ops = append(b.ops, batchOp{key: bytes.Clone(start), end: bytes.Clone(end), del: true})
}

func (b *overlayBatch) MaybeApply() bool {
	return false
}

func (b *overlayBatch) Apply() {
	// Collect the hidden base keys before taking db.mu.
	hides := make([][]string, len(b.ops))
	for i, op := range b.ops {
		if op.del {
			hides[i] = b.db.baseKeys(op.key, op.end)
		}
	}

	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	for i, op := range b.ops {
		if !op.del {
			b.db.changes.Set(string(op.key), change{val: op.val})
			continue
		}
		b.db.deleteRangeLocked(op.key, op.end, hides[i])
	}
	b.ops = nil
}
