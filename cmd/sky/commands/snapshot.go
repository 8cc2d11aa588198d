package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/skybridge/skybridge/pkg/cloud"
)

func newSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage volume snapshots",
	}

	cmd.AddCommand(newSnapshotListCommand())
	cmd.AddCommand(newSnapshotGetCommand())
	cmd.AddCommand(newSnapshotCreateCommand())
	cmd.AddCommand(newSnapshotDeleteCommand())

	return cmd
}

func newSnapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			snapshots, err := collectAll[cloud.Snapshot](ctx, p.Name(), "snapshots", p.BlockStore().Snapshots())
			if err != nil {
				return err
			}
			views := make([]snapshotView, 0, len(snapshots))
			for _, s := range snapshots {
				views = append(views, snapshotViewOf(s))
			}
			return printResult(cmd.OutOrStdout(), views)
		},
	}
}

func newSnapshotGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <snapshot-id>",
		Short: "Show a single snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			snap, err := p.BlockStore().Snapshots().Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), snapshotViewOf(snap))
		},
	}
}

func newSnapshotCreateCommand() *cobra.Command {
	var (
		name     string
		volumeID string
		wait     bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a snapshot of a volume",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			snap, err := p.BlockStore().Snapshots().Create(ctx, name, volumeID)
			if err != nil {
				return err
			}
			log.Info().Str("snapshot_id", snap.ID()).Msg("Snapshot created")

			if wait {
				if err := snap.Refresh(ctx); err != nil {
					return err
				}
				if err := waitForResource(ctx, cfg, "snapshot", snap,
					cloud.SnapshotReadyStates, cloud.SnapshotTerminalStates); err != nil {
					return err
				}
			}
			return printResult(cmd.OutOrStdout(), snapshotViewOf(snap))
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "snapshot name")
	cmd.Flags().StringVar(&volumeID, "volume", "", "source volume ID")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait until the snapshot is available")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("volume")

	return cmd
}

func newSnapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <snapshot-id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			snap, err := p.BlockStore().Snapshots().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := snap.Delete(ctx); err != nil {
				return err
			}
			log.Info().Str("snapshot_id", snap.ID()).Msg("Snapshot deleted")
			return nil
		},
	}
}
