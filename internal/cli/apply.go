package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/chanavg/internal/config"
	"github.com/gogpu/chanavg/internal/image"
	"github.com/gogpu/chanavg/internal/logging"
)

func newApplyCommand() *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "apply <input>",
		Short: "Apply the average-channels filter to an image",
		Long: `Apply the average-channels filter to an image and write the result.

Without --packets the filter flags (or the filter block of the config file)
describe a single step. With --packets the file holds one packet or a list
of packets that run as a chain over named lines.`,
		Example: `  chanavg apply photo.png -o grey.png
  chanavg apply photo.jpg --include-blue=false --exclude-blue --excluded zero
  chanavg apply photo.png --packets chain.yaml --gpu`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			logger := logging.FromContext(ctx)

			output := opts.output
			if output == "" {
				output = defaultOutputPath(args[0])
			}

			closeAccel := setupAccelerator(cfg, logger)
			defer closeAccel()

			result, err := runFilter(ctx, cfg, logger, image.Load, args[0], output, opts.packets)
			if err != nil {
				return err
			}

			if cfg.Quiet {
				return nil
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d pixels, %d packets)\n",
				result.OutputPath, result.Pixels, result.Packets)

			return err
		},
	}

	registerFilterFlags(cmd)
	registerOutputFlags(cmd, opts)

	return cmd
}
