package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/crmarques/zpasync/faults"
	"github.com/crmarques/zpasync/internal/cli/commandmeta"
	"github.com/crmarques/zpasync/internal/cli/common"
)

type Dependencies struct {
	NewSession      common.SessionFactory
	OpenCredentials common.CredentialsFactory
	Version         string
}

func (d Dependencies) commandDependencies() common.CommandDependencies {
	return common.CommandDependencies{
		NewSession:      d.NewSession,
		OpenCredentials: d.OpenCredentials,
		Version:         d.Version,
	}
}

// Execute runs the command line in args and writes the final status line for
// commands that reconcile.
func Execute(ctx context.Context, deps Dependencies, args []string) error {
	root, globalFlags := newRootCommand(deps)
	root.SetArgs(args)
	command, err := root.ExecuteContextC(ctx)

	emitStatus := shouldEmitExecutionStatus(args, command, globalFlags)
	colors := !globalFlags.NoColor && strings.TrimSpace(os.Getenv("NO_COLOR")) == ""
	if err != nil {
		if emitStatus {
			writeExecutionErrorStatus(root.ErrOrStderr(), err, colors)
		} else {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), strings.TrimSpace(err.Error()))
		}
		return err
	}
	if emitStatus {
		writeExecutionOKStatus(root.ErrOrStderr(), colors)
	}
	return nil
}

// ExitCodeForError maps err to the process exit code. The outermost typed
// error decides; wrappers without a dedicated code defer to their causes.
func ExitCodeForError(err error) int {
	if err == nil {
		return 0
	}

	if category, ok := faults.CategoryOf(err); ok {
		if code, mapped := exitCodes[category]; mapped {
			return code
		}
	}
	for _, category := range exitCodeOrder {
		if faults.IsCategory(err, category) {
			return exitCodes[category]
		}
	}
	return 1
}

var exitCodes = map[faults.ErrorCategory]int{
	faults.ValidationError: 2,
	faults.NotFoundError:   3,
	faults.AuthError:       4,
	faults.ConflictError:   5,
	faults.TransportError:  6,
}

var exitCodeOrder = []faults.ErrorCategory{
	faults.ValidationError,
	faults.AuthError,
	faults.NotFoundError,
	faults.ConflictError,
	faults.TransportError,
}

func writeExecutionOKStatus(w io.Writer, colors bool) {
	_, _ = fmt.Fprintf(w, "%s command executed successfully.\n", formatStatusLabel(w, "OK", colors))
}

func writeExecutionErrorStatus(w io.Writer, err error, colors bool) {
	description := "command execution failed"
	if err != nil {
		description = fmt.Sprintf("%s: %s", description, strings.TrimSpace(err.Error()))
	}
	_, _ = fmt.Fprintf(w, "%s %s.\n", formatStatusLabel(w, "ERROR", colors), description)
}

func formatStatusLabel(w io.Writer, status string, colors bool) string {
	label := fmt.Sprintf("[%s]", strings.TrimSpace(status))
	if !colors || !supportsANSIStatus(w) {
		return label
	}

	switch strings.TrimSpace(status) {
	case "OK":
		return "\x1b[1;32m" + label + "\x1b[0m"
	case "ERROR":
		return "\x1b[1;31m" + label + "\x1b[0m"
	default:
		return label
	}
}

func supportsANSIStatus(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return false
	}

	terminal := strings.TrimSpace(strings.ToLower(os.Getenv("TERM")))
	return terminal != "" && terminal != "dumb"
}

func shouldEmitExecutionStatus(args []string, command *cobra.Command, globalFlags *common.GlobalFlags) bool {
	if globalFlags.NoStatus || noStatusRequested(args) {
		return false
	}
	if isHelpOrCompletionInvocation(args) {
		return false
	}
	return commandmeta.EmitsExecutionStatusPath(commandPath(command))
}

func commandPath(command *cobra.Command) string {
	if command == nil {
		return ""
	}
	return strings.TrimSpace(command.CommandPath())
}

func isHelpOrCompletionInvocation(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "help", "completion", "__complete", "__completeNoDesc":
		return true
	}

	for _, current := range args {
		if current == "--" {
			break
		}
		if current == "--help" || current == "-h" {
			return true
		}
	}
	return false
}

// noStatusRequested re-reads --no-status from args for runs where cobra
// failed before binding flags.
func noStatusRequested(args []string) bool {
	flags := pflag.NewFlagSet("status", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetOutput(io.Discard)

	var noStatus bool
	flags.BoolVarP(&noStatus, "no-status", "n", false, "hide status output")
	if err := flags.Parse(args); err != nil {
		return hasNoStatusArgToken(args)
	}
	return noStatus
}

func hasNoStatusArgToken(args []string) bool {
	for _, current := range args {
		if current == "--no-status" || current == "-n" {
			return true
		}
		if strings.HasPrefix(current, "--no-status=") {
			return strings.TrimSpace(strings.TrimPrefix(current, "--no-status=")) != "false"
		}
	}
	return false
}
