package debugctx

import (
	"context"
	"strings"
	"testing"

	"github.com/go-logr/logr/funcr"
)

func TestPrintfWritesThroughContextLogger(t *testing.T) {
	t.Parallel()

	var lines []string
	logger := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})

	ctx := WithLogger(context.Background(), logger)
	if !Enabled(ctx) {
		t.Fatalf("expected debug output to be enabled at verbosity 1")
	}

	Printf(ctx, "http request method=%q", "GET")
	Printf(ctx, "   ")

	if len(lines) != 1 {
		t.Fatalf("expected one debug line, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], `http request method=\"GET\"`) {
		t.Fatalf("unexpected debug line %q", lines[0])
	}
}

func TestPrintfIsSilentWithoutVerbosity(t *testing.T) {
	t.Parallel()

	called := false
	logger := funcr.New(func(string, string) { called = true }, funcr.Options{})
	ctx := WithLogger(context.Background(), logger)

	if Enabled(ctx) {
		t.Fatalf("expected debug output to be disabled")
	}
	Printf(ctx, "ignored")
	if called {
		t.Fatalf("expected no output at verbosity 0")
	}
}

func TestLoggerDefaultsToDiscard(t *testing.T) {
	t.Parallel()

	if Enabled(context.Background()) {
		t.Fatalf("expected discard logger without context logger")
	}
	Printf(context.Background(), "no panic")
}
