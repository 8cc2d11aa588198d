package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/skybridge/skybridge/pkg/cloud"
)

func newVolumeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volume",
		Short: "Manage block storage volumes",
	}

	cmd.AddCommand(newVolumeListCommand())
	cmd.AddCommand(newVolumeGetCommand())
	cmd.AddCommand(newVolumeCreateCommand())
	cmd.AddCommand(newVolumeAttachCommand())
	cmd.AddCommand(newVolumeDetachCommand())
	cmd.AddCommand(newVolumeDeleteCommand())

	return cmd
}

func newVolumeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all volumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			volumes, err := collectAll[cloud.Volume](ctx, p.Name(), "volumes", p.BlockStore().Volumes())
			if err != nil {
				return err
			}
			views := make([]volumeView, 0, len(volumes))
			for _, v := range volumes {
				views = append(views, volumeViewOf(v))
			}
			return printResult(cmd.OutOrStdout(), views)
		},
	}
}

func newVolumeGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <volume-id>",
		Short: "Show a single volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			vol, err := p.BlockStore().Volumes().Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), volumeViewOf(vol))
		},
	}
}

func newVolumeCreateCommand() *cobra.Command {
	var (
		name   string
		sizeGB int
		wait   bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new volume",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			vol, err := p.BlockStore().Volumes().Create(ctx, name, sizeGB)
			if err != nil {
				return err
			}
			log.Info().Str("volume_id", vol.ID()).Msg("Volume created")

			if wait {
				if err := vol.Refresh(ctx); err != nil {
					return err
				}
				if err := waitForResource(ctx, cfg, "volume", vol,
					cloud.VolumeReadyStates, cloud.VolumeTerminalStates); err != nil {
					return err
				}
			}
			return printResult(cmd.OutOrStdout(), volumeViewOf(vol))
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "volume name")
	cmd.Flags().IntVarP(&sizeGB, "size", "s", 0, "volume size in GB")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait until the volume is available")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("size")

	return cmd
}

func newVolumeAttachCommand() *cobra.Command {
	var (
		instanceID string
		device     string
	)

	cmd := &cobra.Command{
		Use:   "attach <volume-id>",
		Short: "Attach a volume to an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			vol, err := p.BlockStore().Volumes().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := vol.Attach(ctx, instanceID, device); err != nil {
				return err
			}
			log.Info().
				Str("volume_id", vol.ID()).
				Str("instance_id", instanceID).
				Msg("Volume attached")
			return printResult(cmd.OutOrStdout(), volumeViewOf(vol))
		},
	}

	cmd.Flags().StringVarP(&instanceID, "instance", "i", "", "instance to attach to")
	cmd.Flags().StringVarP(&device, "device", "d", "/dev/sdb", "device path")
	cmd.MarkFlagRequired("instance")

	return cmd
}

func newVolumeDetachCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detach <volume-id>",
		Short: "Detach a volume from its instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			vol, err := p.BlockStore().Volumes().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := vol.Detach(ctx); err != nil {
				return err
			}
			log.Info().Str("volume_id", vol.ID()).Msg("Volume detached")
			return printResult(cmd.OutOrStdout(), volumeViewOf(vol))
		},
	}
}

func newVolumeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <volume-id>",
		Short: "Delete a volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			vol, err := p.BlockStore().Volumes().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := vol.Delete(ctx); err != nil {
				return err
			}
			log.Info().Str("volume_id", vol.ID()).Msg("Volume deletion requested")
			return nil
		},
	}
}
