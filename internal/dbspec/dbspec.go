// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbspec implements a string notation for referring to
// the issue database. A DB specification takes one of these forms:
//
// pebble:DIR
//
//	A Pebble database in the directory DIR.
//	DIR can be relative or absolute.
//
// mem
//
//	An in-memory database, empty when opened.
//	It is only useful together with a dataset to load.
//
// Either form may be followed by ",dryrun", in which case
// writes are kept in memory and never reach the database.
package dbspec

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hubturbo/filterql/internal/pebble"
	"github.com/hubturbo/filterql/internal/storage"
)

// A Spec is the parsed representation of a DB specification string.
type Spec struct {
	Kind     string // "pebble" or "mem"
	Location string // directory, for pebble
	DryRun   bool   // wrap the database in an overlay
}

func (s *Spec) String() string {
	var suffix string
	if s.DryRun {
		suffix = ",dryrun"
	}
	switch s.Kind {
	case "mem":
		return "mem" + suffix
	case "pebble":
		return "pebble:" + s.Location + suffix
	default:
		return fmt.Sprintf("%#v", s)
	}
}

// Open opens the existing database described by the spec.
func (s *Spec) Open(lg *slog.Logger) (storage.DB, error) {
	return s.open(lg, pebble.Open)
}

// Create creates the database described by the spec.
// A pebble database must not already exist.
func (s *Spec) Create(lg *slog.Logger) (storage.DB, error) {
	return s.open(lg, pebble.Create)
}

func (s *Spec) open(lg *slog.Logger, openPebble func(*slog.Logger, string) (storage.DB, error)) (storage.DB, error) {
	var db storage.DB
	switch s.Kind {
	case "mem":
		db = storage.MemDB()
	case "pebble":
		var err error
		if db, err = openPebble(lg, s.Location); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown DB kind %q", s.Kind)
	}
	if s.DryRun {
		db = storage.NewOverlayDB(db)
	}
	return db, nil
}

// Parse parses a DB specification string into a [Spec].
func Parse(s string) (_ *Spec, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("dbspec.Parse(%q): %v", s, err)
		}
	}()

	rest, dryRun := strings.CutSuffix(s, ",dryrun")
	kind, middle, hasColon := strings.Cut(rest, ":")
	spec := &Spec{Kind: kind, DryRun: dryRun}

	switch kind {
	case "mem":
		if hasColon {
			return nil, errors.New("invalid 'mem' spec: should be mem[,dryrun]")
		}

	case "pebble":
		if len(middle) == 0 {
			return nil, errors.New("pebble spec missing directory; want pebble:DIR[,dryrun]")
		}
		spec.Location = filepath.Clean(middle)

	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	return spec, nil
}
