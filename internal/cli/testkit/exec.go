package testkit

import (
	"bytes"
	"strings"
	"sync"

	"github.com/spf13/cobra"
)

var executeCommandForTestMu sync.Mutex

// Result holds the captured streams of one command run.
type Result struct {
	Stdout string
	Stderr string
}

// Run executes command with args and stdin, capturing both output streams.
// Runs are serialized because cobra mutates shared flag annotations.
func Run(command *cobra.Command, stdin string, args ...string) (Result, error) {
	executeCommandForTestMu.Lock()
	defer executeCommandForTestMu.Unlock()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	command.SetOut(stdout)
	command.SetErr(stderr)
	command.SetIn(strings.NewReader(stdin))
	command.SetArgs(args)

	err := command.Execute()
	return Result{Stdout: stdout.String(), Stderr: stderr.String()}, err
}

// CommandPaths lists every user-facing subcommand path below command.
func CommandPaths(command *cobra.Command) []string {
	paths := make([]string, 0)
	var walk func(*cobra.Command, string)
	walk = func(current *cobra.Command, prefix string) {
		for _, child := range current.Commands() {
			name := child.Name()
			if name == "help" || strings.HasPrefix(name, "__") {
				continue
			}
			path := strings.TrimSpace(prefix + " " + name)
			paths = append(paths, path)
			walk(child, path)
		}
	}
	walk(command, "")
	return paths
}
