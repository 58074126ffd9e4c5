package apply

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/zpasync/internal/cli/common"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var input common.InputFlags
	var opts runOptions

	command := &cobra.Command{
		Use:   "apply -f <file>",
		Short: "Reconcile desired-state documents against ZPA",
		Long: strings.Join([]string{
			"Apply reads multi-document YAML where each document is {kind, state, id, spec}.",
			"Each document is resolved by id or natural key and created, updated, deleted or left untouched.",
			"Independent documents run concurrently up to --parallel.",
			"Deleting resources asks for confirmation in a terminal; non-interactive runs need --yes.",
		}, " "),
		Example: strings.Join([]string{
			"  zpasync apply -f servers.yaml",
			"  zpasync apply -f edge-groups.yaml -f rules.yaml --parallel 8",
			"  cat desired.yaml | zpasync apply -f - --yes",
			"  zpasync apply -f desired.yaml --dry-run -o json",
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			opts.showDiff = common.IsVerbose(globalFlags) || opts.dryRun
			return run(command, deps, globalFlags, input, opts)
		},
	}

	common.BindInputFlags(command, &input)
	command.Flags().BoolVar(&opts.dryRun, "dry-run", false, "decide and report actions without mutating")
	command.Flags().IntVar(&opts.parallel, "parallel", 0, "maximum concurrent reconciles (default from config)")
	command.Flags().BoolVarP(&opts.yes, "yes", "y", false, "confirm deletes without prompting")
	return command
}

func NewDiffCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var input common.InputFlags
	var opts runOptions

	command := &cobra.Command{
		Use:     "diff -f <file>",
		Short:   "Show the actions and field differences apply would make",
		Example: "  zpasync diff -f desired.yaml",
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			opts.dryRun = true
			opts.showDiff = true
			return run(command, deps, globalFlags, input, opts)
		},
	}

	common.BindInputFlags(command, &input)
	command.Flags().IntVar(&opts.parallel, "parallel", 0, "maximum concurrent reconciles (default from config)")
	return command
}
