//go:build !nogpu

package gpu

import (
	"encoding/binary"

	"github.com/gogpu/chanavg"
)

const (
	// workgroupSize matches @workgroup_size in average_channels.wgsl.
	workgroupSize = 256

	// maxWorkgroupsPerDim is the WebGPU limit on a single dispatch dimension.
	maxWorkgroupsPerDim = 65535

	// paramsSize is the byte size of the Params uniform (8 x u32).
	paramsSize = 32
)

// packPlanar writes the first n pixels of p into dst as little-endian
// r | g<<8 | b<<16 | a<<24 words. dst must hold 4*n bytes.
func packPlanar(dst []byte, p *chanavg.Planar, n int) {
	r, g, b, a := p.R[:n], p.G[:n], p.B[:n], p.A[:n]
	for i := range n {
		packed := uint32(r[i]) | uint32(g[i])<<8 | uint32(b[i])<<16 | uint32(a[i])<<24
		binary.LittleEndian.PutUint32(dst[i*4:], packed)
	}
}

// unpackPlanar is the inverse of packPlanar.
func unpackPlanar(p *chanavg.Planar, src []byte, n int) {
	r, g, b, a := p.R[:n], p.G[:n], p.B[:n], p.A[:n]
	for i := range n {
		val := binary.LittleEndian.Uint32(src[i*4:])
		r[i] = uint8(val & 0xFF)         //nolint:gosec // masked to 8 bits
		g[i] = uint8((val >> 8) & 0xFF)  //nolint:gosec // masked to 8 bits
		b[i] = uint8((val >> 16) & 0xFF) //nolint:gosec // masked to 8 bits
		a[i] = uint8((val >> 24) & 0xFF) //nolint:gosec // masked to 8 bits
	}
}

// dispatchSize returns the workgroup grid for n pixels and the row stride
// in invocations.
func dispatchSize(n int) (x, y, stride uint32) {
	groups := (n + workgroupSize - 1) / workgroupSize
	if groups == 0 {
		return 0, 0, 0
	}
	gx := min(groups, maxWorkgroupsPerDim)
	gy := (groups + gx - 1) / gx
	return uint32(gx), uint32(gy), uint32(gx * workgroupSize) //nolint:gosec // bounded by maxWorkgroupsPerDim
}

// makeParams encodes the Params uniform for cfg.
func makeParams(cfg chanavg.FilterConfig, stride uint32) []byte {
	var include, exclude uint32
	if cfg.IncludeRed {
		include |= 1
	}
	if cfg.IncludeGreen {
		include |= 2
	}
	if cfg.IncludeBlue {
		include |= 4
	}
	if cfg.ExcludeRed {
		exclude |= 1
	}
	if cfg.ExcludeGreen {
		exclude |= 2
	}
	if cfg.ExcludeBlue {
		exclude |= 4
	}

	buf := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(buf[0:], uint32(cfg.Length)) //nolint:gosec // checked against maxPixels
	binary.LittleEndian.PutUint32(buf[4:], stride)
	binary.LittleEndian.PutUint32(buf[8:], include)
	binary.LittleEndian.PutUint32(buf[12:], exclude)
	binary.LittleEndian.PutUint32(buf[16:], uint32(cfg.Excluded))
	binary.LittleEndian.PutUint32(buf[20:], uint32(cfg.Divisor())) //nolint:gosec // 0..3
	return buf
}
