package get

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/zpasync/core"
	"github.com/crmarques/zpasync/internal/cli/common"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var id string
	var name string

	command := &cobra.Command{
		Use:   "get <kind>",
		Short: "Read remote resources of a kind",
		Long:  "Get prints the remote resources of a kind. Narrow the result with --id or --name; --id wins when both are set.",
		Example: strings.Join([]string{
			"  zpasync get ApplicationServer",
			"  zpasync get ServiceEdgeGroup --name edge-eu -o json",
			"  zpasync get TimeoutPolicyRule --id 216196257331291000",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return kindNames(toComplete), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(command *cobra.Command, args []string) (err error) {
			session, err := common.OpenSession(command.Context(), deps, globalFlags, false, command.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, session.Close(command.Context()))
			}()

			items, err := session.Registry.Lookup(session.Context(command.Context()), args[0], id, name)
			if err != nil {
				return err
			}
			return common.WriteOutput[[]any](command, globalFlags.Output, items, nil)
		},
	}

	command.Flags().StringVar(&id, "id", "", "remote id")
	command.Flags().StringVar(&name, "name", "", "natural key")
	return command
}

func kindNames(prefix string) []string {
	names := make([]string, 0)
	for _, kind := range core.NewRegistry(nil).Kinds() {
		if strings.HasPrefix(strings.ToLower(string(kind)), strings.ToLower(prefix)) {
			names = append(names, string(kind))
		}
	}
	return names
}

