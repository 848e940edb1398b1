package chanavg

import "fmt"

// Channel identifies one 8-bit component of a pixel.
type Channel uint8

const (
	// Red is the red color channel.
	Red Channel = iota

	// Green is the green color channel.
	Green

	// Blue is the blue color channel.
	Blue

	// Alpha is the alpha (opacity) channel. A zero alpha marks a fully
	// transparent pixel.
	Alpha

	// channelCount is the number of channels (for internal use).
	channelCount
)

// Channels lists every channel in storage order.
var Channels = [channelCount]Channel{Red, Green, Blue, Alpha}

// String returns the lower-case channel name.
func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Alpha:
		return "alpha"
	default:
		return fmt.Sprintf("Channel(%d)", uint8(c))
	}
}

// PixelBuffer is the storage capability the filter operates on.
//
// Index i refers to the same pixel across all four channels. Callers own the
// storage; the filter only reads from input buffers and writes into output
// buffers for the duration of a call.
//
// Implementations must allow concurrent Set calls on disjoint indices.
type PixelBuffer interface {
	// ChannelLen returns the number of values stored for channel c.
	ChannelLen(c Channel) int

	// At returns the value of channel c at pixel i.
	At(c Channel, i int) uint8

	// Set stores v into channel c at pixel i.
	Set(c Channel, i int, v uint8)
}

// Planar holds one contiguous slice per channel ("unknitted" layout).
//
// This is the native layout of the filter: Planar-to-Planar calls index the
// slices directly without per-pixel interface dispatch.
type Planar struct {
	R, G, B, A []uint8
}

var _ PixelBuffer = (*Planar)(nil)

// NewPlanar allocates a zeroed planar buffer of n pixels.
// A single backing array is shared by the four channels.
func NewPlanar(n int) *Planar {
	if n < 0 {
		n = 0
	}
	data := make([]uint8, 4*n)
	return &Planar{
		R: data[0*n : 1*n : 1*n],
		G: data[1*n : 2*n : 2*n],
		B: data[2*n : 3*n : 3*n],
		A: data[3*n : 4*n : 4*n],
	}
}

// Plane returns the slice backing channel c.
func (p *Planar) Plane(c Channel) []uint8 {
	if p == nil {
		return nil
	}
	switch c {
	case Red:
		return p.R
	case Green:
		return p.G
	case Blue:
		return p.B
	case Alpha:
		return p.A
	default:
		return nil
	}
}

// Len returns the number of complete pixels, i.e. the shortest channel length.
func (p *Planar) Len() int {
	if p == nil {
		return 0
	}
	return min(len(p.R), len(p.G), len(p.B), len(p.A))
}

// ChannelLen implements PixelBuffer.
func (p *Planar) ChannelLen(c Channel) int {
	return len(p.Plane(c))
}

// At implements PixelBuffer.
func (p *Planar) At(c Channel, i int) uint8 {
	return p.Plane(c)[i]
}

// Set implements PixelBuffer.
func (p *Planar) Set(c Channel, i int, v uint8) {
	p.Plane(c)[i] = v
}

// Clone returns a deep copy of the first Len() pixels.
func (p *Planar) Clone() *Planar {
	n := p.Len()
	c := NewPlanar(n)
	copy(c.R, p.R[:n])
	copy(c.G, p.G[:n])
	copy(c.B, p.B[:n])
	copy(c.A, p.A[:n])
	return c
}

// Fill sets every pixel to the given value.
func (p *Planar) Fill(r, g, b, a uint8) {
	fillBytes(p.R, r)
	fillBytes(p.G, g)
	fillBytes(p.B, b)
	fillBytes(p.A, a)
}

func fillBytes(s []uint8, v uint8) {
	for i := range s {
		s[i] = v
	}
}

// ChannelOrder is the byte order of an interleaved pixel.
type ChannelOrder uint8

const (
	// OrderRGBA stores pixels as R, G, B, A (image.NRGBA, canvas ImageData).
	OrderRGBA ChannelOrder = iota

	// OrderBGRA stores pixels as B, G, R, A (common on Windows and GPU surfaces).
	OrderBGRA
)

// offset returns the byte offset of channel c within one pixel.
func (o ChannelOrder) offset(c Channel) int {
	if o == OrderBGRA {
		switch c {
		case Red:
			return 2
		case Blue:
			return 0
		}
	}
	return int(c)
}

// Interleaved stores 4 bytes per pixel in a single slice.
// Trailing bytes that do not form a whole pixel are ignored.
type Interleaved struct {
	Pix   []uint8
	Order ChannelOrder
}

var _ PixelBuffer = (*Interleaved)(nil)

// NewInterleaved allocates a zeroed interleaved buffer of n pixels.
func NewInterleaved(n int, order ChannelOrder) *Interleaved {
	if n < 0 {
		n = 0
	}
	return &Interleaved{Pix: make([]uint8, 4*n), Order: order}
}

// Len returns the number of complete pixels.
func (b *Interleaved) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Pix) / 4
}

// ChannelLen implements PixelBuffer. All channels have the same length.
func (b *Interleaved) ChannelLen(Channel) int {
	return b.Len()
}

// At implements PixelBuffer.
func (b *Interleaved) At(c Channel, i int) uint8 {
	return b.Pix[i*4+b.Order.offset(c)]
}

// Set implements PixelBuffer.
func (b *Interleaved) Set(c Channel, i int, v uint8) {
	b.Pix[i*4+b.Order.offset(c)] = v
}

// Unknit splits src into dst's channel planes.
// dst must hold at least src.Len() pixels in every channel.
func Unknit(dst *Planar, src *Interleaved) error {
	n := src.Len()
	if err := checkBuffer("planar", dst, n); err != nil {
		return err
	}
	rOff, gOff, bOff := src.Order.offset(Red), src.Order.offset(Green), src.Order.offset(Blue)
	for i := range n {
		px := src.Pix[i*4 : i*4+4 : i*4+4]
		dst.R[i] = px[rOff]
		dst.G[i] = px[gOff]
		dst.B[i] = px[bOff]
		dst.A[i] = px[3]
	}
	return nil
}

// Knit interleaves src's channel planes into dst.
// dst must hold at least src.Len() pixels.
func Knit(dst *Interleaved, src *Planar) error {
	n := src.Len()
	if err := checkBuffer("interleaved", dst, n); err != nil {
		return err
	}
	rOff, gOff, bOff := dst.Order.offset(Red), dst.Order.offset(Green), dst.Order.offset(Blue)
	for i := range n {
		px := dst.Pix[i*4 : i*4+4 : i*4+4]
		px[rOff] = src.R[i]
		px[gOff] = src.G[i]
		px[bOff] = src.B[i]
		px[3] = src.A[i]
	}
	return nil
}
