package chanavg

import (
	"sync"

	"github.com/gogpu/chanavg/internal/parallel"
)

// MinParallelPixels is the pixel count below which ParallelFilter runs the
// filter on the calling goroutine. Smaller images finish faster than the
// cost of waking the workers.
const MinParallelPixels = 64 * 1024

// ParallelFilter runs AverageChannels across a pool of worker goroutines.
//
// The pixel range is split into disjoint spans, one or more per worker, and
// every span writes only its own output indices. The result is identical to
// AverageChannels.
//
// Thread safety: Apply is safe for concurrent use on distinct output buffers.
// Close must not be called while an Apply is running.
type ParallelFilter struct {
	pool  *parallel.WorkerPool
	align int

	spansPool sync.Pool
}

// NewParallelFilter starts a filter with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewParallelFilter(workers int) *ParallelFilter {
	pool := parallel.NewWorkerPool(workers)
	Logger().Debug("chanavg: parallel filter started", "workers", pool.Workers())
	return &ParallelFilter{
		pool:  pool,
		align: parallel.CacheLineSize(),
	}
}

// Workers returns the number of worker goroutines.
func (f *ParallelFilter) Workers() int {
	return f.pool.Workers()
}

// Apply is the parallel equivalent of AverageChannels. The length check runs
// once, before any span is dispatched.
func (f *ParallelFilter) Apply(input, output PixelBuffer, cfg FilterConfig) error {
	if err := Check(input, output, cfg); err != nil {
		return err
	}
	if cfg.Length < MinParallelPixels || f.pool.Workers() == 1 {
		AverageRange(input, output, cfg, 0, cfg.Length)
		return nil
	}

	// Two spans per worker leaves room for stealing.
	sp, _ := f.spansPool.Get().(*[]parallel.Span)
	if sp == nil {
		sp = new([]parallel.Span)
	}
	*sp = parallel.SplitInto(*sp, cfg.Length, f.pool.Workers()*2, f.align)

	f.pool.Run(*sp, func(s parallel.Span) {
		AverageRange(input, output, cfg, s.Lo, s.Hi)
	})

	f.spansPool.Put(sp)
	return nil
}

// Close stops the worker goroutines. Close is safe to call multiple times.
func (f *ParallelFilter) Close() {
	f.pool.Close()
}
