package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/chanavg"
	"github.com/gogpu/chanavg/internal/image"
)

// ChannelStats summarises one channel of an image.
type ChannelStats struct {
	Channel string  `json:"channel"`
	Min     uint8   `json:"min"`
	Max     uint8   `json:"max"`
	Mean    float64 `json:"mean"`
}

// ImageStats summarises an image for inspect.
type ImageStats struct {
	Path        string         `json:"path"`
	Format      string         `json:"format"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Pixels      int            `json:"pixels"`
	Transparent int            `json:"transparent"`
	Grey        int            `json:"grey"`
	Channels    []ChannelStats `json:"channels"`
}

func newInspectCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect <image>",
		Short: "Show per-channel statistics of an image",
		Long: `Show the size and per-channel minimum, maximum and mean of an image,
with the number of fully transparent pixels (which the filter passes
through) and of grey pixels (whose channels are already equal).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, info, err := image.Load(args[0])
			if err != nil {
				return err
			}

			stats := computeStats(img)
			stats.Path = args[0]
			stats.Format = info.Format.String()
			stats.Width = info.Width
			stats.Height = info.Height

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")

				return enc.Encode(stats)
			}

			return printStats(cmd.OutOrStdout(), stats)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output statistics as JSON")

	return cmd
}

// computeStats walks img once and fills the pixel and channel fields.
func computeStats(img *chanavg.Planar) ImageStats {
	n := img.Len()
	stats := ImageStats{Pixels: n}

	var (
		sums [4]uint64
		mins = [4]uint8{255, 255, 255, 255}
		maxs [4]uint8
	)

	planes := [4][]uint8{img.R[:n], img.G[:n], img.B[:n], img.A[:n]}
	for i := range n {
		for c, plane := range planes {
			v := plane[i]
			sums[c] += uint64(v)
			mins[c] = min(mins[c], v)
			maxs[c] = max(maxs[c], v)
		}

		if img.A[i] == 0 {
			stats.Transparent++
		}
		if img.R[i] == img.G[i] && img.G[i] == img.B[i] {
			stats.Grey++
		}
	}

	for c, ch := range chanavg.Channels {
		cs := ChannelStats{Channel: ch.String()}
		if n > 0 {
			cs.Min = mins[c]
			cs.Max = maxs[c]
			cs.Mean = float64(sums[c]) / float64(n)
		}
		stats.Channels = append(stats.Channels, cs)
	}

	return stats
}

func printStats(w io.Writer, s ImageStats) error {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "%s: %s %dx%d (%d pixels)\n", s.Path, s.Format, s.Width, s.Height, s.Pixels)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHANNEL\tMIN\tMAX\tMEAN")

	for _, c := range s.Channels {
		p.Fprintf(tw, "%s\t%d\t%d\t%.2f\n", c.Channel, c.Min, c.Max, c.Mean)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	p.Fprintf(w, "transparent: %d (%.1f%%)\n", s.Transparent, percent(s.Transparent, s.Pixels))
	_, err := p.Fprintf(w, "grey: %d (%.1f%%)\n", s.Grey, percent(s.Grey, s.Pixels))

	return err
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}

	return 100 * float64(part) / float64(total)
}
