package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skybridge/skybridge/pkg/providers"
)

func newProvidersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range providers.List() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
