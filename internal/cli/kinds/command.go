package kinds

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/zpasync/core"
	"github.com/crmarques/zpasync/internal/cli/common"
)

type kindInfo struct {
	Kind   string   `json:"kind" yaml:"kind"`
	Fields []string `json:"fields" yaml:"fields"`
}

// NewCommand lists the supported kinds and the spec fields compared for each.
// It needs no configuration.
func NewCommand(globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List supported kinds and their compared fields",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			registry := core.NewRegistry(nil)

			infos := make([]kindInfo, 0)
			for _, kind := range registry.Kinds() {
				fields, err := registry.Fields(kind)
				if err != nil {
					return err
				}
				infos = append(infos, kindInfo{Kind: string(kind), Fields: fields})
			}

			return common.WriteOutput(command, globalFlags.Output, infos, func(w io.Writer, items []kindInfo) error {
				for _, item := range items {
					if _, err := fmt.Fprintf(w, "%s: %s\n", item.Kind, strings.Join(item.Fields, ", ")); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
