package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// task is one span of work queued on a worker.
type task struct {
	span Span
	fn   func(Span)
	wg   *sync.WaitGroup
}

func (t task) run() {
	defer t.wg.Done()
	t.fn(t.span)
}

// WorkerPool is a fixed set of goroutines that process pixel spans.
//
// Each worker owns a queue. Spans are dealt round-robin across the queues and
// an idle worker steals from the other queues, which balances load when some
// spans finish faster than others.
//
// Thread safety: WorkerPool is safe for concurrent use. Concurrent Run calls
// share the workers.
type WorkerPool struct {
	workers int
	queues  []chan task
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// 4x workers per queue hides submission latency.
	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan task, workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan task, queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case t := <-own:
			t.run()
		default:
			if t, ok := p.steal(id); ok {
				t.run()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case t := <-own:
				t.run()
			}
		}
	}
}

// drain runs whatever is left in a queue during shutdown.
func (p *WorkerPool) drain(q chan task) {
	for {
		select {
		case t := <-q:
			t.run()
		default:
			return
		}
	}
}

// steal takes one task from another worker's queue.
func (p *WorkerPool) steal(id int) (task, bool) {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case t := <-p.queues[i]:
			return t, true
		default:
		}
	}
	return task{}, false
}

// Run calls fn once for every span and waits for all calls to return.
//
// Spans are processed concurrently; fn must only touch state owned by its
// span. After Close, Run executes the spans on the calling goroutine so
// callers never observe skipped work.
func (p *WorkerPool) Run(spans []Span, fn func(Span)) {
	if len(spans) == 0 || fn == nil {
		return
	}
	if len(spans) == 1 || !p.running.Load() {
		for _, s := range spans {
			fn(s)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(spans))
	for i, s := range spans {
		t := task{span: s, fn: fn, wg: &wg}
		select {
		case p.queues[i%p.workers] <- t:
		case <-p.done:
			t.run()
		}
	}
	wg.Wait()
}

// Close stops accepting work, finishes queued spans and stops the workers.
// Close is safe to call multiple times but must not race with Run.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still dispatches to its workers.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
