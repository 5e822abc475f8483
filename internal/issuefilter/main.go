// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Issuefilter selects and edits issues using filter expressions.
//
// Usage:
//
//	issuefilter [flags] [filter]
//
// With a filter argument, issuefilter prints the issues the filter
// selects, one per line. A filter such as
//
//	label:type.bug is:open sort:~updated count:10
//
// prints the ten most recently updated open bugs in the default
// repository.
//
// The -apply flag changes the issue named by -issue so that it
// satisfies the given filter and stores the result:
//
//	issuefilter -apply 'milestone:curr label:type.bug' -issue acme/widgets#12
//
// Only milestone, label, assignee and state qualifiers joined by
// AND can be applied. The -n flag prints the changed issue without
// storing it.
//
// The -i flag starts an interactive prompt reading filters from
// the terminal. Tab completes qualifier names.
//
// The -check flag reports whether the filter argument is valid,
// incomplete, or invalid, without running it.
//
// Settings can also be read from a YAML file named by -config:
//
//	db: pebble:/var/lib/issues
//	repo: acme/widgets
//	nonSelfUpdates: true
//	logLevel: debug
//
// Flags override the file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/hubturbo/filterql/internal/dbspec"
	"github.com/hubturbo/filterql/internal/issuedb"
	"github.com/hubturbo/filterql/internal/query"
	"go.opentelemetry.io/otel"
	"gopkg.in/yaml.v3"
)

type issuefilterFlags struct {
	config  string
	db      string
	create  bool
	repo    string
	load    string
	now     string
	nonSelf bool
	level   string
	check   bool
	inter   bool
	apply   string
	issue   string
	dryRun  bool
}

var flags issuefilterFlags

func init() {
	flag.StringVar(&flags.config, "config", "", "read settings from the YAML `file`")
	flag.StringVar(&flags.db, "db", "", "issue database `spec` (mem or pebble:DIR; default mem)")
	flag.BoolVar(&flags.create, "create", false, "create the database instead of opening an existing one")
	flag.StringVar(&flags.repo, "repo", "", "default `owner/repo` for filters without a repo qualifier")
	flag.StringVar(&flags.load, "load", "", "load the YAML dataset `file` into the database first")
	flag.StringVar(&flags.now, "now", "", "evaluate as if the current time were `time` (RFC 3339 or YYYY-MM-DD)")
	flag.BoolVar(&flags.nonSelf, "nonself", false, "measure updated from the last update by someone else")
	flag.StringVar(&flags.level, "level", "", "log level (debug, info, warn, error; default info)")
	flag.BoolVar(&flags.check, "check", false, "only check the filter argument")
	flag.BoolVar(&flags.inter, "i", false, "read filters interactively")
	flag.StringVar(&flags.apply, "apply", "", "apply the `filter` to the issue named by -issue")
	flag.StringVar(&flags.issue, "issue", "", "issue to change with -apply, as `owner/repo#N`")
	flag.BoolVar(&flags.dryRun, "n", false, "with -apply, print the changed issue but do not store it")
}

// A config holds the settings that can be read from a file.
type config struct {
	DB             string `yaml:"db"`
	Repo           string `yaml:"repo"`
	NonSelfUpdates bool   `yaml:"nonSelfUpdates"`
	LogLevel       string `yaml:"logLevel"`
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: issuefilter [flags] [filter]\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("issuefilter: ")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() > 1 {
		usage()
	}
	arg := flag.Arg(0)

	if flags.check {
		os.Exit(check(os.Stdout, arg))
	}

	cfg, err := loadConfig(flags.config)
	if err != nil {
		log.Fatal(err)
	}
	cfg.override(&flags)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("invalid log level %q", cfg.LogLevel)
	}
	lg := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	now, err := parseNow(flags.now)
	if err != nil {
		log.Fatal(err)
	}

	spec, err := dbspec.Parse(cfg.DB)
	if err != nil {
		log.Fatal(err)
	}
	if flags.dryRun {
		spec.DryRun = true
	}
	open := spec.Open
	if flags.create {
		open = spec.Create
	}
	sdb, err := open(lg)
	if err != nil {
		log.Fatal(err)
	}
	defer sdb.Close()

	db := issuedb.New(lg, sdb)
	if flags.load != "" {
		if err := db.LoadFile(flags.load); err != nil {
			log.Fatal(err)
		}
	}

	env := &query.Env{
		Store:          db,
		DefaultRepo:    cfg.Repo,
		Now:            now,
		NonSelfUpdates: cfg.NonSelfUpdates,
	}
	a := &app{
		slog: lg,
		db:   db,
		eng:  query.NewEngine(lg, env, otel.Meter("filterql")),
		out:  os.Stdout,
	}

	ctx := context.Background()
	switch {
	case flags.apply != "":
		if flags.issue == "" {
			log.Fatal("-apply requires -issue")
		}
		err = a.apply(ctx, flags.apply, flags.issue, !flags.dryRun)
	case flags.inter:
		err = a.interactive(ctx)
	default:
		err = a.run(ctx, arg)
	}
	db.Flush()
	if err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the YAML config file.
// An empty file name yields the default settings.
func loadConfig(file string) (*config, error) {
	cfg := &config{DB: "mem", LogLevel: "info"}
	if file == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return cfg, nil
}

// override replaces settings with those given by flags.
func (c *config) override(f *issuefilterFlags) {
	if f.db != "" {
		c.DB = f.db
	}
	if f.repo != "" {
		c.Repo = f.repo
	}
	if f.nonSelf {
		c.NonSelfUpdates = true
	}
	if f.level != "" {
		c.LogLevel = f.level
	}
}

// parseNow returns a clock for the -now flag:
// nil for the real time, or a function returning the fixed time.
func parseNow(s string) (func() time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		d, derr := civil.ParseDate(s)
		if derr != nil {
			return nil, fmt.Errorf("invalid -now time %q: want RFC 3339 time or YYYY-MM-DD", s)
		}
		t = d.In(time.UTC)
	}
	return func() time.Time { return t }, nil
}
