// Package chanavg implements the average-channels pixel filter over planar
// RGBA buffers.
//
// # Overview
//
// The filter replaces the red, green and blue values of each pixel with the
// integer average of a selected subset of those channels. Fully transparent
// pixels pass through untouched, and individual output channels can be
// excluded from being overwritten.
//
// # Quick Start
//
//	in := chanavg.NewPlanar(n)   // fill in.R, in.G, in.B, in.A
//	out := chanavg.NewPlanar(n)
//
//	cfg := chanavg.DefaultFilterConfig(n)
//	cfg.ExcludeBlue = true
//
//	if err := chanavg.AverageChannels(in, out, cfg); err != nil {
//	    // errors.Is(err, chanavg.ErrLengthMismatch)
//	}
//
// # Buffers
//
// Pixel storage is abstracted by [PixelBuffer]. [Planar] keeps one slice per
// channel and is the fast path; [Interleaved] wraps RGBA or BGRA byte slices
// such as image.NRGBA.Pix. [Knit] and [Unknit] convert between the two.
//
// # Configuration
//
// [FilterConfig] is a flat value: the pixel count, three include flags (which
// channels form the average) and three exclude flags (which output channels
// keep their value). The flags are independent. [ExcludedMode] chooses what
// an excluded channel receives; the default leaves it untouched.
//
// # Concurrency
//
// AverageChannels is pure and synchronous and does not allocate. Distinct
// pixel ranges can be filtered concurrently; [ParallelFilter] does this on a
// worker pool. An optional GPU accelerator can be enabled by importing
// github.com/gogpu/chanavg/gpu.
//
// # Logging
//
// The package is silent by default. Use [SetLogger] to receive lifecycle
// records from the accelerator and the parallel filter.
package chanavg

// Version information.
const (
	// Version is the current version of the library.
	Version = "0.3.0"

	// VersionMajor is the major version.
	VersionMajor = 0

	// VersionMinor is the minor version.
	VersionMinor = 3

	// VersionPatch is the patch version.
	VersionPatch = 0
)
