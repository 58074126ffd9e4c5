package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/crmarques/zpasync/faults"
	"github.com/crmarques/zpasync/internal/cli/common"
)

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	notFound := faults.NewTypedError(faults.NotFoundError, "missing", nil)
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain", err: errors.New("boom"), want: 1},
		{name: "validation", err: faults.NewTypedError(faults.ValidationError, "bad", nil), want: 2},
		{name: "not_found", err: notFound, want: 3},
		{name: "auth", err: faults.NewTypedError(faults.AuthError, "denied", nil), want: 4},
		{name: "conflict", err: faults.NewTypedError(faults.ConflictError, "taken", nil), want: 5},
		{name: "transport", err: faults.NewTypedError(faults.TransportError, "reset", nil), want: 6},
		{name: "internal", err: faults.NewTypedError(faults.InternalError, "bug", nil), want: 1},
		{name: "wrapped", err: fmt.Errorf("context: %w", notFound), want: 3},
		{
			name: "mutation_defers_to_cause",
			err:  faults.NewTypedError(faults.MutationError, "failed to update", faults.NewTypedError(faults.AuthError, "denied", nil)),
			want: 4,
		},
		{
			name: "joined_documents_prefer_validation",
			err: errors.Join(
				faults.NewTypedError(faults.TransportError, "reset", nil),
				faults.NewTypedError(faults.ValidationError, "bad", nil),
			),
			want: 2,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			if got := ExitCodeForError(testCase.err); got != testCase.want {
				t.Fatalf("ExitCodeForError(%v) = %d, want %d", testCase.err, got, testCase.want)
			}
		})
	}
}

func TestShouldEmitExecutionStatus(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "zpasync"}
	applyCommand := &cobra.Command{Use: "apply"}
	getCommand := &cobra.Command{Use: "get"}
	root.AddCommand(applyCommand, getCommand)

	testCases := []struct {
		name    string
		args    []string
		command *cobra.Command
		flags   common.GlobalFlags
		want    bool
	}{
		{name: "apply", args: []string{"apply", "-f", "x.yaml"}, command: applyCommand, want: true},
		{name: "get_has_no_status", args: []string{"get", "ApplicationServer"}, command: getCommand, want: false},
		{name: "no_status_flag", args: []string{"apply"}, command: applyCommand, flags: common.GlobalFlags{NoStatus: true}, want: false},
		{name: "no_status_token", args: []string{"apply", "--no-status=true"}, command: applyCommand, want: false},
		{name: "help", args: []string{"apply", "--help"}, command: applyCommand, want: false},
		{name: "completion", args: []string{"__complete", "apply", ""}, command: applyCommand, want: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			flags := testCase.flags
			if got := shouldEmitExecutionStatus(testCase.args, testCase.command, &flags); got != testCase.want {
				t.Fatalf("shouldEmitExecutionStatus(%v) = %t, want %t", testCase.args, got, testCase.want)
			}
		})
	}
}

func TestExecutionStatusLines(t *testing.T) {
	t.Parallel()

	buffer := &bytes.Buffer{}
	writeExecutionOKStatus(buffer, true)
	writeExecutionErrorStatus(buffer, faults.NewTypedError(faults.ValidationError, "bad input", nil), true)

	output := buffer.String()
	if strings.Contains(output, "\x1b[") {
		t.Fatalf("expected no ANSI codes for non-terminal writer, got %q", output)
	}
	if !strings.Contains(output, "[OK] command executed successfully.") {
		t.Fatalf("missing ok status in %q", output)
	}
	if !strings.Contains(output, "[ERROR] command execution failed: bad input.") {
		t.Fatalf("missing error status in %q", output)
	}
}
