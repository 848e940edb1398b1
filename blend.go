package chanavg

import (
	"fmt"
	"math"
)

// Mix blends the first n pixels of incoming into store:
//
//	store = store*(1-ratio) + incoming*ratio
//
// on all four channels, truncating toward zero. A ratio of 1 or more copies
// incoming over store; a ratio of 0 or less (or NaN) leaves store unchanged.
// Lengths are checked before anything is written.
func Mix(store, incoming PixelBuffer, n int, ratio float64) error {
	if n < 0 {
		return fmt.Errorf("%w: negative length %d", ErrInvalidConfig, n)
	}
	if err := checkBuffer("store", store, n); err != nil {
		return err
	}
	if err := checkBuffer("incoming", incoming, n); err != nil {
		return err
	}

	switch {
	case math.IsNaN(ratio) || ratio <= 0:
		return nil
	case ratio >= 1:
		copyPixels(store, incoming, n)
		return nil
	}

	s, sOK := store.(*Planar)
	in, inOK := incoming.(*Planar)
	if sOK && inOK {
		for _, c := range Channels {
			mixPlane(s.Plane(c)[:n], in.Plane(c)[:n], ratio)
		}
		return nil
	}

	anti := 1 - ratio
	for _, c := range Channels {
		for i := range n {
			v := float64(store.At(c, i))*anti + float64(incoming.At(c, i))*ratio
			store.Set(c, i, uint8(v)) //nolint:gosec // convex combination of two bytes
		}
	}
	return nil
}

func mixPlane(dst, src []uint8, ratio float64) {
	anti := 1 - ratio
	for i := range dst {
		v := float64(dst[i])*anti + float64(src[i])*ratio
		dst[i] = uint8(v) //nolint:gosec // convex combination of two bytes
	}
}

func copyPixels(dst, src PixelBuffer, n int) {
	d, dOK := dst.(*Planar)
	s, sOK := src.(*Planar)
	if dOK && sOK {
		copy(d.R[:n], s.R[:n])
		copy(d.G[:n], s.G[:n])
		copy(d.B[:n], s.B[:n])
		copy(d.A[:n], s.A[:n])
		return
	}
	for _, c := range Channels {
		for i := range n {
			dst.Set(c, i, src.At(c, i))
		}
	}
}
