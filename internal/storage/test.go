// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"fmt"
	"slices"
	"testing"

	"rsc.io/ordered"
)

// TestDB runs the conformance tests for a [DB] implementation.
// The db must be empty when TestDB is called,
// and TestDB leaves it empty when it returns.
// The pebble package calls it from its own tests.
func TestDB(t *testing.T, db DB) {
	const repo = "test/repo"
	key := func(n int) []byte { return ordered.Encode("issue", repo, n) }
	val := func(n int) []byte { return []byte(fmt.Sprintf("#%d", n)) }

	// ids returns the issue numbers in [lo, hi],
	// stopping after stop if it is found.
	ids := func(t *testing.T, lo, hi, stop int) []int {
		t.Helper()
		var list []int
		for k, vf := range db.Scan(key(lo), key(hi)) {
			var n int
			if err := ordered.Decode(k, nil, nil, &n); err != nil {
				t.Fatalf("Scan: malformed key %s", Fmt(k))
			}
			if got := string(vf()); got != string(val(n)) {
				t.Fatalf("Scan: key %d has value %q, want %q", n, got, val(n))
			}
			list = append(list, n)
			if n == stop {
				break
			}
		}
		return list
	}
	expect := func(t *testing.T, lo, hi int, want ...int) {
		t.Helper()
		if got := ids(t, lo, hi, -1); !slices.Equal(got, want) {
			t.Fatalf("Scan(%d, %d) = %v, want %v", lo, hi, got, want)
		}
	}

	t.Run("get", func(t *testing.T) {
		if v, ok := db.Get(key(1)); v != nil || ok {
			t.Fatalf("Get(missing) = %q, %v, want nil, false", v, ok)
		}
		buf := val(1)
		db.Set(key(1), buf)
		buf[0] = 'X'
		v, ok := db.Get(key(1))
		if !ok || string(v) != "#1" {
			t.Fatalf("Get(1) = %q, %v, want %q, true", v, ok, "#1")
		}
		db.Delete(key(1))
		db.Delete(key(2)) // not present
		if v, ok := db.Get(key(1)); v != nil || ok {
			t.Fatalf("Get(1) after Delete = %q, %v, want nil, false", v, ok)
		}
	})

	t.Run("scan", func(t *testing.T) {
		b := db.Batch()
		for n := range 10 {
			b.Set(key(n), val(n))
			b.MaybeApply()
		}
		b.Apply()

		expect(t, 3, 6, 3, 4, 5, 6)
		expect(t, -5, 0, 0)
		expect(t, 10, 20)
		if got, want := ids(t, 3, 6, 5), []int{3, 4, 5}; !slices.Equal(got, want) {
			t.Fatalf("Scan(3, 6) stopping at 5 = %v, want %v", got, want)
		}
		// Other repos are outside the scan.
		db.Set(ordered.Encode("issue", repo+"x", 5), val(5))
		db.Set(ordered.Encode("label", repo, "bug"), val(5))
		expect(t, -1, 11, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
		db.Delete(ordered.Encode("issue", repo+"x", 5))
		db.Delete(ordered.Encode("label", repo, "bug"))
	})

	t.Run("deleterange", func(t *testing.T) {
		db.DeleteRange(key(4), key(7))
		expect(t, -1, 11, 0, 1, 2, 3, 8, 9)

		b := db.Batch()
		for n := range 5 {
			b.Delete(key(n))
			b.Set(key(2*n), val(2*n))
		}
		b.DeleteRange(key(0), key(0))
		b.Apply()
		expect(t, -1, 11, 6, 8, 9)
	})

	t.Run("batch", func(t *testing.T) {
		b := db.Batch()
		b.Set(key(20), val(20))
		if _, ok := db.Get(key(20)); ok {
			t.Fatalf("Get(20) succeeded before Apply")
		}
		b.Apply()
		db.Delete(key(20))
		b.Apply() // batch is empty now
		if _, ok := db.Get(key(20)); ok {
			t.Fatalf("second Apply of the same batch set 20 again")
		}
	})

	t.Run("writescan", func(t *testing.T) {
		var moved []int
		for k := range db.Scan(key(0), key(49)) {
			var n int
			if err := ordered.Decode(k, nil, nil, &n); err != nil {
				t.Fatalf("Scan: malformed key %s", Fmt(k))
			}
			db.Set(key(n+50), val(n+50))
			db.Delete(k)
			moved = append(moved, n)
		}
		if len(moved) == 0 {
			t.Fatalf("Scan(0, 49) found nothing to move")
		}
		for _, n := range moved {
			if _, ok := db.Get(key(n)); ok {
				t.Errorf("Get(%d) after delete during scan succeeded", n)
			}
			if v, ok := db.Get(key(n + 50)); !ok || string(v) != string(val(n+50)) {
				t.Errorf("Get(%d) after set during scan = %q, %v", n+50, v, ok)
			}
		}
	})

	db.DeleteRange(ordered.Encode("issue", repo), ordered.Encode("issue", repo, ordered.Inf))
	expect(t, -1, 1000)
	db.Flush()
}
