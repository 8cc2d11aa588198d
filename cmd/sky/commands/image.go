package commands

import (
	"github.com/spf13/cobra"

	"github.com/skybridge/skybridge/pkg/cloud"
)

func newImageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Manage machine images",
	}

	cmd.AddCommand(newImageListCommand())
	cmd.AddCommand(newImageGetCommand())

	return cmd
}

func newImageListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all machine images",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			images, err := collectAll[cloud.MachineImage](ctx, p.Name(), "images", p.Compute().Images())
			if err != nil {
				return err
			}
			views := make([]imageView, 0, len(images))
			for _, m := range images {
				views = append(views, imageViewOf(m))
			}
			return printResult(cmd.OutOrStdout(), views)
		},
	}
}

func newImageGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <image-id>",
		Short: "Show a single machine image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, p, err := openProvider(ctx)
			if err != nil {
				return err
			}
			defer p.Close()

			img, err := p.Compute().Images().Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), imageViewOf(img))
		},
	}
}
