package image

import (
	"sync"

	"github.com/gogpu/chanavg"
)

// PlanePool is a thread-safe pool for reusing planar buffers.
//
// PlanePool groups buffers by pixel count, so intermediate lines of the
// same image size are recycled instead of reallocated.
//
// Thread safety: All methods are safe for concurrent use.
type PlanePool struct {
	mu      sync.Mutex
	buckets map[int][]*chanavg.Planar
	maxSize int // max buffers per bucket
}

// NewPlanePool creates a pool that retains at most maxPerBucket buffers of
// each length. A maxPerBucket of 0 means unlimited.
func NewPlanePool(maxPerBucket int) *PlanePool {
	return &PlanePool{
		buckets: make(map[int][]*chanavg.Planar),
		maxSize: maxPerBucket,
	}
}

// Get returns a zeroed buffer of n pixels, reused when possible.
func (p *PlanePool) Get(n int) *chanavg.Planar {
	p.mu.Lock()
	bucket := p.buckets[n]
	if len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		p.buckets[n] = bucket[:len(bucket)-1]
		p.mu.Unlock()

		buf.Fill(0, 0, 0, 0)
		return buf
	}
	p.mu.Unlock()

	return chanavg.NewPlanar(n)
}

// Put returns a buffer to the pool. Buffers with channels of unequal length
// and nil buffers are discarded, as are buffers beyond the bucket limit.
func (p *PlanePool) Put(buf *chanavg.Planar) {
	if buf == nil {
		return
	}
	n := buf.Len()
	for _, c := range chanavg.Channels {
		if buf.ChannelLen(c) != n {
			return
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[n]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[n] = append(bucket, buf)
}

// Len returns the number of pooled buffers of n pixels.
func (p *PlanePool) Len(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets[n])
}
