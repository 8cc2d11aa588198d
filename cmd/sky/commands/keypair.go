package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/skybridge/skybridge/pkg/cloud"
)

func newKeyPairCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keypair",
		Short: "Manage SSH key pairs",
	}

	cmd.AddCommand(newKeyPairListCommand())
	cmd.AddCommand(newKeyPairGetCommand())
	cmd.AddCommand(newKeyPairCreateCommand())
	cmd.AddCommand(newKeyPairDeleteCommand())

	return cmd
}

func newKeyPairListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all key pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			keyPairs, err := collectAll[cloud.KeyPair](ctx, p.Name(), "keypairs", p.Security().KeyPairs())
			if err != nil {
				return err
			}
			views := make([]keyPairView, 0, len(keyPairs))
			for _, k := range keyPairs {
				views = append(views, keyPairViewOf(k))
			}
			return printResult(cmd.OutOrStdout(), views)
		},
	}
}

func newKeyPairGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a single key pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			kp, err := p.Security().KeyPairs().Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), keyPairViewOf(kp))
		},
	}
}

func newKeyPairCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new key pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			kp, err := p.Security().KeyPairs().Create(ctx, args[0])
			if err != nil {
				return err
			}
			log.Info().Str("name", kp.Name()).Msg("Key pair created")
			return printResult(cmd.OutOrStdout(), keyPairViewOf(kp))
		},
	}
}

func newKeyPairDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a key pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			if err := p.Security().KeyPairs().Delete(ctx, args[0]); err != nil {
				return err
			}
			log.Info().Str("name", args[0]).Msg("Key pair deleted")
			return nil
		},
	}
}
