// Package testutil provides shared helpers for the test suites.
package testutil

import (
	"log/slog"
	"strings"
	"testing"
)

// NewTestLogger returns a debug-level logger routed through t.Log, so
// engine and server logging interleaves with test output and surfaces
// only on failure or under -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(tbWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type tbWriter struct {
	tb testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	// slog's handler terminates records with \n; t.Log adds its own.
	w.tb.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
