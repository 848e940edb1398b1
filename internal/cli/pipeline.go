package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gogpu/chanavg"
	"github.com/gogpu/chanavg/host"
	"github.com/gogpu/chanavg/internal/config"
	"github.com/gogpu/chanavg/internal/image"
	"github.com/gogpu/chanavg/internal/watch"
)

// defaultOutputPath derives "<name>-avg<ext>" next to the input. Inputs
// whose format cannot be written (WebP) get a .png output.
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if _, err := image.OutputFormat(input); err != nil {
		ext = ".png"
	}
	return base + "-avg" + ext
}

// loadPackets reads the packet chain from path, or builds a single packet
// from the filter block when path is empty.
func loadPackets(cfg *config.Config, path string) ([]host.Packet, error) {
	if path == "" {
		fc, err := cfg.Filter.Config(0)
		if err != nil {
			return nil, err
		}

		p := host.DefaultPacket()
		p.FilterConfig = fc
		p.Opacity = cfg.Filter.Opacity

		return []host.Packet{p}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening packets: %w", err)
	}
	defer f.Close()

	packets, err := host.DecodePackets(f)
	if err != nil {
		return nil, fmt.Errorf("decoding packets %q: %w", path, err)
	}

	return packets, nil
}

// newEngine builds a host engine from the configuration.
func newEngine(cfg *config.Config, logger *slog.Logger) *host.Engine {
	return host.New(
		host.WithLogger(logger),
		host.WithWorkers(cfg.Workers),
		host.WithAccelerator(cfg.GPU),
	)
}

// setupAccelerator registers the GPU accelerator when cfg asks for it. The
// returned function closes it again.
func setupAccelerator(cfg *config.Config, logger *slog.Logger) func() {
	if !cfg.GPU || chanavg.Accelerator() != nil {
		return func() {}
	}

	if err := enableGPU(); err != nil {
		logger.Warn("GPU accelerator not available, using CPU", slog.String("error", err.Error()))
		return func() {}
	}

	logger.Debug("GPU accelerator registered", slog.String("name", chanavg.Accelerator().Name()))

	return chanavg.CloseAccelerator
}

// loadFunc decodes an image file into planes.
type loadFunc func(path string) (*chanavg.Planar, image.Info, error)

// runFilter loads input, runs the packet chain and saves the result.
func runFilter(_ context.Context, cfg *config.Config, logger *slog.Logger, load loadFunc, input, output, packetsFile string) (*watch.RunResult, error) {
	start := time.Now()

	if _, err := image.OutputFormat(output); err != nil {
		return nil, err
	}

	packets, err := loadPackets(cfg, packetsFile)
	if err != nil {
		return nil, err
	}

	img, info, err := load(input)
	if err != nil {
		return nil, err
	}

	engine := newEngine(cfg, logger)
	defer engine.Close()

	result, err := engine.Process(img, packets)
	if err != nil {
		return nil, err
	}

	if err := image.Save(output, result, info.Width, info.Height, image.WithJPEGQuality(cfg.Quality)); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	logger.Info("filter applied",
		slog.String("input", input),
		slog.String("output", output),
		slog.Int("pixels", info.Pixels()),
		slog.Int("packets", len(packets)),
		slog.Duration("elapsed", elapsed),
	)

	return &watch.RunResult{
		Pixels:     info.Pixels(),
		Packets:    len(packets),
		OutputPath: output,
		Elapsed:    elapsed,
	}, nil
}
