package common

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// LogWriter is where session logs go; commands pass their stderr.
type LogWriter = io.Writer

type GlobalFlags struct {
	Config    string
	Debug     bool
	Verbose   bool
	NoStatus  bool
	NoColor   bool
	Output    string
	LogFormat string
}

type InputFlags struct {
	Filenames []string
}

func BindGlobalFlags(command *cobra.Command, flags *GlobalFlags) {
	command.PersistentFlags().StringVar(&flags.Config, "config", "", "config file path (default $ZPASYNC_CONFIG or ~/.zpasync/config.yaml)")
	command.PersistentFlags().BoolVarP(&flags.Debug, "debug", "d", false, "enable debug logging")
	command.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "show diff entries in text output")
	command.PersistentFlags().BoolVarP(&flags.NoStatus, "no-status", "n", false, "hide status output")
	command.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable color output")
	command.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format: text|json|yaml")
	command.PersistentFlags().StringVar(&flags.LogFormat, "log-format", "", "log format: console|json (default from config)")
	RegisterFlagValueCompletions(command, "output", []string{OutputText, OutputJSON, OutputYAML})
	RegisterFlagValueCompletions(command, "log-format", []string{"console", "json"})
}

func IsVerbose(flags *GlobalFlags) bool {
	return flags != nil && flags.Verbose
}

func BindInputFlags(command *cobra.Command, flags *InputFlags) {
	command.Flags().StringArrayVarP(&flags.Filenames, "filename", "f", nil, "desired-state YAML file (repeatable; use '-' for stdin)")
	_ = command.MarkFlagRequired("filename")
}

// RegisterFlagValueCompletions offers a fixed value list for flagName.
func RegisterFlagValueCompletions(command *cobra.Command, flagName string, values []string) {
	_ = command.RegisterFlagCompletionFunc(flagName, func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		matches := make([]string, 0, len(values))
		for _, value := range values {
			if strings.HasPrefix(value, toComplete) {
				matches = append(matches, value)
			}
		}
		return matches, cobra.ShellCompDirectiveNoFileComp
	})
}
