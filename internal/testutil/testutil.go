// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package testutil implements various testing utilities.
package testutil

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

// LogWriter returns an [io.Writer] that logs each Write using t.Log.
func LogWriter(t testing.TB) io.Writer {
	return testWriter{t}
}

type testWriter struct{ t testing.TB }

func (w testWriter) Write(b []byte) (int, error) {
	w.t.Logf("%s", b)
	return len(b), nil
}

// Slogger returns a [*slog.Logger] that writes each message
// using t.Log, including debug messages.
func Slogger(t testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(LogWriter(t), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// SlogBuffer returns a [*slog.Logger] that writes each message to out.
func SlogBuffer() (lg *slog.Logger, out *bytes.Buffer) {
	var buf bytes.Buffer
	lg = slog.New(slog.NewTextHandler(&buf, nil))
	return lg, &buf
}

// StopPanic runs f but silently recovers from any panic f causes.
// The normal usage is:
//
//	testutil.StopPanic(func() {
//		callThatShouldPanic()
//		t.Errorf("callThatShouldPanic did not panic")
//	})
func StopPanic(f func()) {
	defer func() { recover() }()
	f()
}

// Check calls t.Fatal(err) if err is not nil.
func Check(t testing.TB, err error) {
	if err != nil {
		t.Helper()
		t.Fatal(err)
	}
}

// Time parses s as an RFC 3339 time, or as a date meaning
// midnight UTC, and calls t.Fatal if it is neither.
func Time(t testing.TB, s string) time.Time {
	t.Helper()
	if tm, err := time.Parse(time.RFC3339, s); err == nil {
		return tm
	}
	d := Date(t, s)
	return d.In(time.UTC)
}

// Date parses s as a YYYY-MM-DD date and calls t.Fatal if it is not one.
func Date(t testing.TB, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// ExpectLog checks if the message is present in buf exactly n times,
// and calls t.Error if not.
func ExpectLog(t testing.TB, buf *bytes.Buffer, message string, n int) {
	t.Helper()
	if mentions := bytes.Count(buf.Bytes(), []byte(message)); mentions != n {
		t.Errorf("logs mention %q %d times, want %d mentions:\n%s", message, mentions, n, buf.Bytes())
	}
}
