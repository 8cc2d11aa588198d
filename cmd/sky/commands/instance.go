package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/skybridge/skybridge/pkg/cloud"
)

func newInstanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instance",
		Short: "Manage compute instances",
	}

	cmd.AddCommand(newInstanceListCommand())
	cmd.AddCommand(newInstanceGetCommand())
	cmd.AddCommand(newInstanceCreateCommand())
	cmd.AddCommand(newInstanceWaitCommand())
	cmd.AddCommand(newInstanceTerminateCommand())

	return cmd
}

func newInstanceListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			instances, err := collectAll[cloud.Instance](ctx, p.Name(), "instances", p.Compute().Instances())
			if err != nil {
				return err
			}
			views := make([]instanceView, 0, len(instances))
			for _, i := range instances {
				views = append(views, instanceViewOf(i))
			}
			return printResult(cmd.OutOrStdout(), views)
		},
	}
}

func newInstanceGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <instance-id>",
		Short: "Show a single instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			inst, err := p.Compute().Instances().Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), instanceViewOf(inst))
		},
	}
}

func newInstanceCreateCommand() *cobra.Command {
	var (
		name        string
		imageID     string
		rootSize    int
		dataVolumes []int
		netIDs      []string
		wait        bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Launch a new instance",
		Example: `  # Launch with provider defaults
  sky instance create --name web-1 --image img-ubuntu-24-04

  # Launch with a 20 GB root volume, a 100 GB data volume, and two interfaces
  sky instance create --name db-1 --image img-ubuntu-24-04 \
    --root-size 20 --data-volume 100 --nic net-1 --nic net-2 --wait`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			lc := cloud.NewLaunchConfig()
			if rootSize > 0 {
				if err := lc.AddVolumeDevice(cloud.VolumeDevice{IsRoot: true, SizeGB: rootSize}); err != nil {
					return err
				}
			}
			for _, size := range dataVolumes {
				if err := lc.AddVolumeDevice(cloud.VolumeDevice{SizeGB: size}); err != nil {
					return err
				}
			}
			for _, netID := range netIDs {
				lc.AddNetworkInterface(netID)
			}

			inst, err := p.Compute().Instances().Create(ctx, name, imageID, lc)
			if err != nil {
				return err
			}
			log.Info().Str("instance_id", inst.ID()).Msg("Instance created")

			if wait {
				if err := inst.Refresh(ctx); err != nil {
					return err
				}
				if err := waitForResource(ctx, cfg, "instance", inst,
					cloud.InstanceReadyStates, cloud.InstanceTerminalStates); err != nil {
					return err
				}
			}
			return printResult(cmd.OutOrStdout(), instanceViewOf(inst))
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "instance name")
	cmd.Flags().StringVarP(&imageID, "image", "i", "", "machine image ID")
	cmd.Flags().IntVar(&rootSize, "root-size", 0, "root volume size in GB (0 uses provider defaults)")
	cmd.Flags().IntSliceVar(&dataVolumes, "data-volume", nil, "additional data volume sizes in GB")
	cmd.Flags().StringSliceVar(&netIDs, "nic", nil, "network interface identifiers")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait until the instance is running")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("image")

	return cmd
}

func newInstanceWaitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wait <instance-id>",
		Short: "Wait until an instance is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			inst, err := p.Compute().Instances().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := waitForResource(ctx, cfg, "instance", inst,
				cloud.InstanceReadyStates, cloud.InstanceTerminalStates); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), instanceViewOf(inst))
		},
		Args: cobra.ExactArgs(1),
	}
}

func newInstanceTerminateCommand() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "terminate <instance-id>",
		Short: "Terminate an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			inst, err := p.Compute().Instances().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := inst.Terminate(ctx); err != nil {
				return err
			}
			log.Info().Str("instance_id", inst.ID()).Msg("Termination requested")

			if wait {
				if err := waitForResource(ctx, cfg, "instance", inst,
					[]cloud.State{cloud.InstanceStateTerminated},
					[]cloud.State{cloud.InstanceStateError}); err != nil {
					return err
				}
			}
			return printResult(cmd.OutOrStdout(), instanceViewOf(inst))
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait until the instance is terminated")
	return cmd
}
