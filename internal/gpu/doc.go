//go:build !nogpu

// Package gpu provides the wgpu/hal compute backend for the average-channels
// filter.
//
// This is an internal package used by chanavg for GPU acceleration. It uses
// the gogpu/wgpu Pure Go WebGPU implementation (zero CGO) on the Vulkan
// backend.
//
// # Data Layout
//
// Planar channels are packed into one little-endian u32 per pixel
// (r | g<<8 | b<<16 | a<<24) before upload. The shader receives the input
// pixels and the current output pixels so that untouched excluded channels
// keep their bytes, and it writes the complete result word back.
//
// # Dispatch
//
// One invocation handles one pixel. Workgroups are 256 wide and laid out in
// two dimensions so that buffers beyond 65535 workgroups still dispatch;
// the row stride travels in the uniform parameters.
//
// # Fallback
//
// Every call the accelerator cannot serve returns chanavg.ErrFallbackToCPU:
// no adapter, a buffer too small to amortize the upload, or too large for a
// single storage binding.
package gpu
