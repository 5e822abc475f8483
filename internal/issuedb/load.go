// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package issuedb

import (
	"fmt"
	"io"
	"os"

	"github.com/hubturbo/filterql/internal/model"
	"gopkg.in/yaml.v3"
)

// A Dataset is a set of records to load into a DB,
// usually read from a YAML file.
//
// Repo, when set, is the default repository of records
// that do not name one.
type Dataset struct {
	Repo       string             `yaml:"repo"`
	Labels     []*model.Label     `yaml:"labels"`
	Milestones []*model.Milestone `yaml:"milestones"`
	Users      []*model.User      `yaml:"users"`
	Issues     []*model.Issue     `yaml:"issues"`
}

// ReadDataset decodes a YAML dataset from r.
// Unknown fields are an error.
func ReadDataset(r io.Reader) (*Dataset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var ds Dataset
	if err := dec.Decode(&ds); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	if err := ds.fill(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// fill sets default repositories and checks
// that every record names one.
func (ds *Dataset) fill() error {
	repo := func(r *string, what string, id any) error {
		if *r == "" {
			*r = ds.Repo
		}
		if *r == "" {
			return fmt.Errorf("dataset: %s %v has no repo", what, id)
		}
		return nil
	}
	for _, l := range ds.Labels {
		if err := repo(&l.Repo, "label", l.Name); err != nil {
			return err
		}
	}
	for _, m := range ds.Milestones {
		if err := repo(&m.Repo, "milestone", m.ID); err != nil {
			return err
		}
	}
	for _, u := range ds.Users {
		if err := repo(&u.Repo, "user", u.Login); err != nil {
			return err
		}
	}
	for _, i := range ds.Issues {
		if err := repo(&i.Repo, "issue", i.ID); err != nil {
			return err
		}
		if i.ID <= 0 {
			return fmt.Errorf("dataset: issue %q in %s has invalid id %d", i.Title, i.Repo, i.ID)
		}
	}
	return nil
}

// Load stores every record of ds in d in a single batch.
func (d *DB) Load(ds *Dataset) {
	b := d.db.Batch()
	for _, l := range ds.Labels {
		d.put(b, o(labelKind, l.Repo, l.Name), l)
		b.MaybeApply()
	}
	for _, m := range ds.Milestones {
		d.put(b, o(milestoneKind, m.Repo, m.ID), m)
		b.MaybeApply()
	}
	for _, u := range ds.Users {
		d.put(b, o(userKind, u.Repo, u.Login), u)
		b.MaybeApply()
	}
	for _, i := range ds.Issues {
		d.put(b, o(issueKind, i.Repo, i.ID), i)
		b.MaybeApply()
	}
	b.Apply()
	d.slog.Info("issuedb load",
		"labels", len(ds.Labels),
		"milestones", len(ds.Milestones),
		"users", len(ds.Users),
		"issues", len(ds.Issues))
}

// LoadFile reads the YAML dataset in file and loads it into d.
func (d *DB) LoadFile(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	ds, err := ReadDataset(f)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	d.Load(ds)
	return nil
}
