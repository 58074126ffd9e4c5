package secret

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/zpasync/internal/cli/common"
)

const maxSecretBytes = 64 << 10

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "secret",
		Short: "Manage the local credential store",
		Long:  "The credential store is an encrypted file declared under credentials in the config. api.auth.client-secret-ref reads the ZPA client secret from it.",
		Args:  cobra.NoArgs,
	}

	command.AddCommand(
		newSetCommand(deps, globalFlags),
		newGetCommand(deps, globalFlags),
		newDeleteCommand(deps, globalFlags),
		newListCommand(deps, globalFlags),
	)
	return command
}

func newSetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Store a credential",
		Long:  "Set prompts for the value in a terminal and otherwise reads it from stdin. A single trailing newline is dropped.",
		Example: strings.Join([]string{
			"  zpasync secret set zpa/client-secret",
			"  printf '%s' \"$SECRET\" | zpasync secret set zpa/client-secret",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			value, err := readValue(command, args[0])
			if err != nil {
				return err
			}

			store, err := common.OpenCredentials(deps, globalFlags)
			if err != nil {
				return err
			}
			return store.Put(command.Context(), args[0], value)
		},
	}
}

func newGetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print a stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			store, err := common.OpenCredentials(deps, globalFlags)
			if err != nil {
				return err
			}
			value, err := store.Get(command.Context(), args[0])
			if err != nil {
				return err
			}
			return common.WriteText(command, globalFlags.Output, value)
		},
	}
}

func newDeleteCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			store, err := common.OpenCredentials(deps, globalFlags)
			if err != nil {
				return err
			}
			return store.Delete(command.Context(), args[0])
		},
	}
}

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored credential names",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			store, err := common.OpenCredentials(deps, globalFlags)
			if err != nil {
				return err
			}
			names, err := store.Names(command.Context())
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags.Output, names, func(w io.Writer, items []string) error {
				for _, item := range items {
					if _, err := fmt.Fprintln(w, item); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func readValue(command *cobra.Command, name string) (string, error) {
	if common.IsInteractiveTerminal(command) {
		return common.PromptSecret(command, "Value for "+name)
	}

	data, err := io.ReadAll(io.LimitReader(command.InOrStdin(), maxSecretBytes+1))
	if err != nil {
		return "", common.ValidationError("failed to read value from stdin", err)
	}
	if len(data) > maxSecretBytes {
		return "", common.ValidationError("value exceeds 64KiB", nil)
	}

	value := strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r")
	if value == "" {
		return "", common.ValidationError("value is empty: pipe it on stdin", nil)
	}
	return value, nil
}
