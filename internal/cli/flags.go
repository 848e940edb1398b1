package cli

import (
	"github.com/spf13/cobra"

	"github.com/gogpu/chanavg/internal/config"
)

// filterOptions are the per-command options of apply and watch. The filter
// block itself is read from config so flags, env and file share precedence.
type filterOptions struct {
	output  string
	packets string
}

// registerFilterFlags adds the filter flags. They bind into the filter block
// of the configuration.
func registerFilterFlags(cmd *cobra.Command) {
	d := config.Default().Filter

	f := cmd.Flags()
	f.Bool("include-red", d.IncludeRed, "include red in the average")
	f.Bool("include-green", d.IncludeGreen, "include green in the average")
	f.Bool("include-blue", d.IncludeBlue, "include blue in the average")
	f.Bool("exclude-red", d.ExcludeRed, "do not overwrite the red output channel")
	f.Bool("exclude-green", d.ExcludeGreen, "do not overwrite the green output channel")
	f.Bool("exclude-blue", d.ExcludeBlue, "do not overwrite the blue output channel")
	f.String("excluded", d.Excluded, "value of excluded channels: untouched, zero, copy")
	f.Float64("opacity", d.Opacity, "blend the result over the input (0-1)")
}

// registerOutputFlags adds the output and packet file flags.
func registerOutputFlags(cmd *cobra.Command, opts *filterOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output image (default: <input>-avg.<ext>)")
	f.StringVarP(&opts.packets, "packets", "p", "", "YAML or JSON packet file; overrides the filter flags")
	f.Int("quality", config.DefaultQuality, "JPEG output quality (1-100)")
}
