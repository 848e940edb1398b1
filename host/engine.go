package host

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/chanavg"
	"github.com/gogpu/chanavg/internal/image"
)

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	sink    func(string)
	workers int
	accel   bool
	pool    *image.PlanePool
}

func defaultOptions() options {
	return options{
		workers: 1,
		accel:   true,
	}
}

// WithLogger sets the logger for engine records. Defaults to chanavg.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLogSink sets the function that receives LogMessage text.
func WithLogSink(sink func(string)) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithWorkers sets the number of filter goroutines. 1 (the default) runs the
// filter on the calling goroutine; 0 or negative uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithAccelerator enables or disables the registered GPU accelerator.
// Enabled by default; without a registered accelerator it has no effect.
func WithAccelerator(enabled bool) Option {
	return func(o *options) {
		o.accel = enabled
	}
}

// WithPool shares a plane pool between engines.
func WithPool(p *image.PlanePool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// Engine runs the average-channels filter for a host.
//
// Thread safety: AverageChannels, LogMessage and Process are safe for
// concurrent use. Close must not be called while another method is running.
type Engine struct {
	logger *slog.Logger
	sink   func(string)
	accel  bool
	pool   *image.PlanePool
	filter *chanavg.ParallelFilter // nil runs serially
}

// New creates an engine.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = chanavg.Logger()
	}
	if o.pool == nil {
		o.pool = image.NewPlanePool(8)
	}

	e := &Engine{
		logger: o.logger,
		sink:   o.sink,
		accel:  o.accel,
		pool:   o.pool,
	}
	if o.workers != 1 {
		e.filter = chanavg.NewParallelFilter(o.workers)
	}
	return e
}

// AverageChannels is the host entry point of the filter. It has the same
// contract as chanavg.AverageChannels: lengths are checked before anything is
// written and a failed check leaves output untouched.
//
// When both buffers are planar, the registered accelerator runs first;
// ErrFallbackToCPU or any accelerator error falls back to the CPU.
func (e *Engine) AverageChannels(input, output chanavg.PixelBuffer, cfg chanavg.FilterConfig) error {
	if err := chanavg.Check(input, output, cfg); err != nil {
		return err
	}

	start := time.Now()
	path := e.run(input, output, cfg)
	e.logger.Debug("host: average channels",
		"pixels", cfg.Length, "divisor", cfg.Divisor(), "path", path, "elapsed", time.Since(start))
	return nil
}

// run executes a checked call and returns the path taken.
func (e *Engine) run(input, output chanavg.PixelBuffer, cfg chanavg.FilterConfig) string {
	if e.accel {
		in, inOK := input.(*chanavg.Planar)
		out, outOK := output.(*chanavg.Planar)
		if inOK && outOK {
			if name, ok := chanavg.TryAccelerator(in, out, cfg, e.logger); ok {
				return name
			}
		}
	}

	if e.filter != nil {
		// Length already checked; Apply repeats the check cheaply.
		if err := e.filter.Apply(input, output, cfg); err == nil {
			return "parallel"
		}
	}
	chanavg.AverageRange(input, output, cfg, 0, cfg.Length)
	return "serial"
}

// LogMessage forwards host diagnostic text to the log sink, or to the
// engine logger at Info when no sink is set.
func (e *Engine) LogMessage(text string) {
	if e.sink != nil {
		e.sink(text)
		return
	}
	e.logger.Info(text)
}

// Process runs an action chain over img and returns the resulting image.
//
// Two lines are created from img: "source", which stays unchanged, and the
// work line. Each packet filters its LineIn into its output line: a named
// line stored by an earlier packet, or a fresh line copied from LineIn so
// that untouched excluded channels keep the input value. With LineOut
// set, that line is stored under the name after mixing the work line back
// in at 1-Opacity; otherwise it is mixed into the work line at Opacity. The
// returned buffer is owned by the caller.
func (e *Engine) Process(img *chanavg.Planar, packets []Packet) (*chanavg.Planar, error) {
	for i, p := range packets {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("packet %d: %w", i, err)
		}
	}
	n := img.Len()

	source := e.pool.Get(n)
	work := e.pool.Get(n)
	if err := chanavg.Mix(source, img, n, 1); err != nil {
		return nil, err
	}
	if err := chanavg.Mix(work, img, n, 1); err != nil {
		return nil, err
	}

	lines := map[string]*chanavg.Planar{LineSource: source}
	var scratch []*chanavg.Planar
	defer func() {
		for _, l := range lines {
			e.pool.Put(l)
		}
		for _, l := range scratch {
			e.pool.Put(l)
		}
		e.pool.Put(work)
	}()

	for i, p := range packets {
		in := work
		switch {
		case p.LineIn == LineSourceAlpha:
			in = e.pool.Get(n)
			copy(in.A, source.A)
			scratch = append(scratch, in)
		case p.LineIn != "":
			if l, ok := lines[p.LineIn]; ok {
				in = l
			}
		}

		out, named := lines[p.LineOut]
		if p.LineOut == "" || !named {
			// A fresh line starts as its input so untouched channels carry it.
			out = e.pool.Get(n)
			if err := chanavg.Mix(out, in, n, 1); err != nil {
				return nil, fmt.Errorf("packet %d: %w", i, err)
			}
			if p.LineOut != "" {
				lines[p.LineOut] = out
			} else {
				scratch = append(scratch, out)
			}
		}

		if err := e.AverageChannels(in, out, p.Config(n)); err != nil {
			return nil, fmt.Errorf("packet %d: %w", i, err)
		}

		var err error
		if p.LineOut != "" {
			err = chanavg.Mix(out, work, n, 1-p.Opacity)
		} else {
			err = chanavg.Mix(work, out, n, p.Opacity)
		}
		if err != nil {
			return nil, fmt.Errorf("packet %d: %w", i, err)
		}
	}

	return work.Clone(), nil
}

// Close releases the worker pool.
func (e *Engine) Close() {
	if e.filter != nil {
		e.filter.Close()
	}
}
