package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/chanavg/internal/config"
	"github.com/gogpu/chanavg/internal/image"
	"github.com/gogpu/chanavg/internal/logging"
	"github.com/gogpu/chanavg/internal/watch"
)

func newWatchCommand() *cobra.Command {
	opts := &filterOptions{}

	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <input>",
		Short: "Re-apply the filter whenever the input changes",
		Long: `Watch the input image, the packet file and the config file, and
re-apply the filter after every change. The config file is re-read on each
run, so edits to its filter block take effect immediately.`,
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

			// Config and packet edits reuse the decoded input.
			images := image.NewDecodeCache(1)

			wo := watch.DefaultOptions()
			wo.Files = []string{args[0], opts.packets, cfg.ConfigFile}
			wo.Debounce = debounce
			wo.Logger = logger
			wo.Out = cmd.ErrOrStderr()

			return watch.Run(ctx, wo, func(runCtx context.Context) (*watch.RunResult, error) {
				current, err := config.Load(cmd, cfg.ConfigFile)
				if err != nil {
					return nil, err
				}

				return runFilter(runCtx, current, logger, images.Load, args[0], output, opts.packets)
			})
		},
	}

	registerFilterFlags(cmd)
	registerOutputFlags(cmd, opts)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultOptions().Debounce, "quiet period before re-running")

	return cmd
}
