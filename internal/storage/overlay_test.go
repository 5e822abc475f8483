// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"rsc.io/ordered"
)

// issueKey returns the key of issue n in a test repo.
func issueKey(n int) []byte {
	return ordered.Encode("issue", "acme/widgets", n)
}

// seed returns a MemDB holding issues 0, 4 and 9.
func seed() DB {
	db := MemDB()
	for _, n := range []int{0, 4, 9} {
		db.Set(issueKey(n), []byte("base"+strconv.Itoa(n)))
	}
	return db
}

// runScript runs the semicolon-separated operations in script on db.
// Operations are
//
//	set N [VAL]   del N   range N M   scandel N M   batch ... apply
//
// Between batch and apply, set, del and range are batched.
// scandel scans [N, M], moving each issue K it finds to K+100.
func runScript(t *testing.T, db DB, script string) {
	t.Helper()
	var b Batch
	for _, op := range strings.Split(script, ";") {
		f := strings.Fields(op)
		if len(f) == 0 {
			continue
		}
		arg := func(i int) int {
			n, err := strconv.Atoi(f[i])
			if err != nil {
				t.Fatalf("bad op %q", op)
			}
			return n
		}
		type writer interface {
			Set(key, val []byte)
			Delete(key []byte)
			DeleteRange(start, end []byte)
		}
		var w writer = db
		if b != nil {
			w = b
		}
		switch f[0] {
		default:
			t.Fatalf("unknown op %q", op)
		case "set":
			val := "v" + f[1]
			if len(f) > 2 {
				val = f[2]
			}
			w.Set(issueKey(arg(1)), []byte(val))
		case "del":
			w.Delete(issueKey(arg(1)))
		case "range":
			w.DeleteRange(issueKey(arg(1)), issueKey(arg(2)))
		case "batch":
			b = db.Batch()
		case "apply":
			b.Apply()
			b = nil
		case "scandel":
			for k, vf := range db.Scan(issueKey(arg(1)), issueKey(arg(2))) {
				var n int
				if err := ordered.Decode(k, nil, nil, &n); err != nil {
					t.Fatalf("scan: bad key %s", Fmt(k))
				}
				v := vf()
				db.Delete(k)
				db.Set(issueKey(n+100), v)
			}
		}
	}
}

// dump returns the contents of db as "key=val" strings.
// It also checks that Get agrees with Scan.
func dump(t *testing.T, db DB) []string {
	t.Helper()
	var out []string
	seen := make(map[string]bool)
	for k, vf := range db.Scan(nil, ordered.Encode(ordered.Inf)) {
		v := vf()
		out = append(out, Fmt(k)+"="+string(v))
		seen[string(k)] = true
		if got, ok := db.Get(k); !ok || string(got) != string(v) {
			t.Errorf("Get(%s) = %q, %v, want %q from Scan", Fmt(k), got, ok, v)
		}
	}
	for n := range 25 {
		k := issueKey(n)
		if _, ok := db.Get(k); ok != seen[string(k)] {
			t.Errorf("Get(%s) ok=%v, but Scan found=%v", Fmt(k), ok, seen[string(k)])
		}
	}
	return out
}

var overlayScripts = []string{
	"set 3",
	"set 4 changed",
	"del 9",
	"del 9; set 9 again",
	"del 5; set 3",
	"del 0; set 0 seven; range 8 9",
	"range 1 9",
	"range 1 9; set 4",
	"set 12; set 13; range 10 20",
	"set 1; set 2; set 3; range 2 5; del 1; set 5",
	"batch; set 1; set 2; del 9; set 9; range 2 6; apply",
	"batch; del 0; del 4; apply; set 4 back",
	"batch; set 7; apply; batch; range 0 24; apply",
	"scandel 0 9",
	"set 2; set 5; scandel 3 9; set 4 last",
	"range 0 24; set 11; set 0",
}

func TestOverlayDB(t *testing.T) {
	want0 := dump(t, seed())
	for _, script := range overlayScripts {
		t.Run(script, func(t *testing.T) {
			base := seed()
			overlay := NewOverlayDB(base)
			runScript(t, overlay, script)

			direct := seed()
			runScript(t, direct, script)

			if diff := cmp.Diff(dump(t, direct), dump(t, overlay)); diff != "" {
				t.Errorf("overlay differs from direct writes (-direct +overlay):\n%s", diff)
			}
			if diff := cmp.Diff(want0, dump(t, base)); diff != "" {
				t.Errorf("overlay changed base (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOverlayScanBreak(t *testing.T) {
	db := NewOverlayDB(seed())
	db.Set(issueKey(2), []byte("two"))
	var keys []string
	for k := range db.Scan(issueKey(0), issueKey(9)) {
		keys = append(keys, Fmt(k))
		if len(keys) == 2 {
			break
		}
	}
	want := []string{Fmt(issueKey(0)), Fmt(issueKey(2))}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("Scan with break (-want +got):\n%s", diff)
	}
}

func TestOverlayConformance(t *testing.T) {
	TestDB(t, NewOverlayDB(MemDB()))
}

func TestOverlayClose(t *testing.T) {
	base := &closeDB{DB: MemDB()}
	db := NewOverlayDB(base)
	db.Set(issueKey(1), []byte("v"))
	db.Flush()
	if _, ok := base.Get(issueKey(1)); ok {
		t.Fatalf("Flush wrote through to base")
	}
	db.Close()
	if !base.closed {
		t.Fatalf("Close did not close base")
	}
}

type closeDB struct {
	DB
	closed bool
}

func (db *closeDB) Close() { db.closed = true }
