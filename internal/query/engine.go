// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/hubturbo/filterql/internal/filter"
	"github.com/hubturbo/filterql/internal/model"
	"go.opentelemetry.io/otel/attribute"
	ometric "go.opentelemetry.io/otel/metric"
)

// An Engine parses, compiles and runs filters typed by users,
// logging what it does and counting it in OpenTelemetry metrics.
type Engine struct {
	slog *slog.Logger
	env  *Env

	compiled ometric.Int64Counter
	failed   ometric.Int64Counter
	matched  ometric.Int64Counter
	applied  ometric.Int64Counter
}

// NewEngine returns a new Engine evaluating filters in env,
// recording its metrics with meter.
func NewEngine(lg *slog.Logger, env *Env, meter ometric.Meter) *Engine {
	e := &Engine{slog: lg, env: env}
	e.compiled = e.newCounter(meter, "compiled", "number of filters compiled")
	e.failed = e.newCounter(meter, "failed", "number of filters that could not be parsed, compiled or applied")
	e.matched = e.newCounter(meter, "matched", "number of issues selected by filters")
	e.applied = e.newCounter(meter, "applied", "number of filters applied to issues")
	return e
}

// newCounter creates an integer counter instrument.
// It panics if the counter cannot be created.
func (e *Engine) newCounter(meter ometric.Meter, name, description string) ometric.Int64Counter {
	c, err := meter.Int64Counter("filterql/"+name, ometric.WithDescription(description))
	if err != nil {
		e.slog.Error("counter creation failed", "name", name)
		panic(err)
	}
	return c
}

// fail counts and logs a failure at the named stage.
func (e *Engine) fail(ctx context.Context, stage, text string, err error) {
	e.failed.Add(ctx, 1, ometric.WithAttributes(attribute.String("stage", stage)))
	e.slog.Info("filter failed", "stage", stage, "filter", text, "err", err)
}

// Compile parses and compiles the filter text.
func (e *Engine) Compile(ctx context.Context, text string) (*Query, error) {
	x, err := filter.Parse(text)
	if err != nil {
		e.fail(ctx, "parse", text, err)
		return nil, err
	}
	q, err := Compile(e.env, x)
	if err != nil {
		e.fail(ctx, "compile", text, err)
		return nil, err
	}
	e.compiled.Add(ctx, 1)
	e.slog.Debug("filter compiled", "filter", text, "expr", q.Expr)
	return q, nil
}

// Select returns the issues in seq selected by q.
func (e *Engine) Select(ctx context.Context, q *Query, seq iter.Seq[*model.Issue]) []*model.Issue {
	list := q.Select(seq)
	e.matched.Add(ctx, int64(len(list)))
	e.slog.Debug("filter selected", "expr", q.Expr, "n", len(list))
	return list
}

// ErrNotAppliable is returned by [Engine.Apply] for filters
// that [CanApply] rejects.
var ErrNotAppliable = errors.New("filter cannot be applied to an issue")

// Apply parses the filter text and applies it to a copy of issue,
// returning the changed copy. Unlike [Apply], it leaves no partial
// changes behind: on error, issue is unchanged and no copy is returned.
func (e *Engine) Apply(ctx context.Context, text string, issue *model.Issue) (*model.Issue, error) {
	x, err := filter.Parse(text)
	if err != nil {
		e.fail(ctx, "parse", text, err)
		return nil, err
	}
	if !CanApply(x) {
		err := fmt.Errorf("%w: %s", ErrNotAppliable, x)
		e.fail(ctx, "apply", text, err)
		return nil, err
	}
	c := issue.Clone()
	if err := Apply(x, c, e.env.Store); err != nil {
		e.fail(ctx, "apply", text, err)
		return nil, err
	}
	e.applied.Add(ctx, 1)
	e.slog.Info("filter applied", "filter", text, "issue", issue.Ref())
	return c, nil
}
