package watch

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Debouncer batches change events for the watched files. Each Add restarts
// the quiet period; once it elapses, fire receives every distinct path
// added since the previous batch, sorted.
//
// A save of the input image usually arrives as several write events, and an
// editor saving the config file adds a rename on top, so one batch is one
// filter run.
type Debouncer struct {
	quiet  time.Duration
	logger *slog.Logger
	fire   func(changed []string)

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	gen     uint64 // bumped on every Add and Stop; stale timers compare against it
}

// NewDebouncer returns a debouncer that calls fire after quiet has passed
// without another Add. A nil logger uses slog.Default.
func NewDebouncer(quiet time.Duration, logger *slog.Logger, fire func(changed []string)) *Debouncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Debouncer{
		quiet:   quiet,
		logger:  logger,
		fire:    fire,
		pending: make(map[string]struct{}),
	}
}

// Add records a change of path and restarts the quiet period.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = struct{}{}
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() { d.flush(gen) })
}

// flush hands the pending batch to fire unless a later Add or Stop
// superseded the timer that called it.
func (d *Debouncer) flush(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	changed := make([]string, 0, len(d.pending))
	for p := range d.pending {
		changed = append(changed, p)
	}
	clear(d.pending)
	d.timer = nil
	d.mu.Unlock()

	sort.Strings(changed)

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("watch: filter run panicked", slog.Any("error", r), slog.Any("changed", changed))
		}
	}()
	d.fire(changed)
}

// Stop drops the pending batch and cancels its timer.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	clear(d.pending)
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
