//go:build !nogpu

// Package gpu registers the wgpu compute accelerator for the average-channels
// filter.
//
// If GPU initialization fails (no Vulkan adapter available), the accelerator
// stays registered but every call falls back to the CPU filter.
//
// Usage:
//
//	import _ "github.com/gogpu/chanavg/gpu" // enable GPU acceleration
package gpu

import (
	"github.com/gogpu/chanavg"
	gpuimpl "github.com/gogpu/chanavg/internal/gpu"
	"github.com/gogpu/gpucontext"
)

func init() {
	if err := chanavg.RegisterAccelerator(&gpuimpl.AverageAccelerator{}); err != nil {
		chanavg.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU accelerator to use a shared GPU device
// from an external provider. This avoids creating a separate GPU instance.
//
// The provider must also implement HalDevice() any and HalQueue() any for
// direct HAL access; otherwise an error is returned and the accelerator keeps
// its own device.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return chanavg.SetAcceleratorDeviceProvider(provider)
}
