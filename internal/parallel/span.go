// Package parallel provides the worker pool and range partitioning used to
// run the average-channels filter across several goroutines.
//
// The filter is per-pixel independent, so [0, n) can be cut into disjoint
// spans and each span handed to a different worker. Span boundaries are
// aligned to the CPU cache line so that two workers never write into the
// same cache line of a channel plane.
package parallel

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Span is a half-open pixel index range [Lo, Hi).
type Span struct {
	Lo, Hi int
}

// Len returns the number of pixels in the span.
func (s Span) Len() int {
	return s.Hi - s.Lo
}

// CacheLineSize returns the cache line size of the running CPU in bytes,
// as reported by golang.org/x/sys/cpu.
func CacheLineSize() int {
	return int(unsafe.Sizeof(cpu.CacheLinePad{}))
}

// Split partitions [0, n) into at most parts spans of near-equal size.
// Every boundary except the final one is a multiple of align (values below 1
// are treated as 1). Empty spans are never returned.
func Split(n, parts, align int) []Span {
	return SplitInto(nil, n, parts, align)
}

// SplitInto is Split appending into dst[:0], reusing its capacity.
func SplitInto(dst []Span, n, parts, align int) []Span {
	dst = dst[:0]
	if n <= 0 {
		return dst
	}
	if parts < 1 {
		parts = 1
	}
	if align < 1 {
		align = 1
	}

	// Chunk size rounded up to the alignment.
	chunk := (n + parts - 1) / parts
	chunk = (chunk + align - 1) / align * align

	for lo := 0; lo < n; lo += chunk {
		dst = append(dst, Span{Lo: lo, Hi: min(lo+chunk, n)})
	}
	return dst
}
