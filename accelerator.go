package chanavg

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrFallbackToCPU indicates the GPU accelerator cannot handle this call.
// The caller should transparently fall back to the CPU filter.
var ErrFallbackToCPU = errors.New("chanavg: falling back to CPU filter")

// GPUAccelerator is an optional GPU acceleration provider for the
// average-channels filter.
//
// Implementations are provided by GPU backend packages and registered via
// blank import:
//
//	import _ "github.com/gogpu/chanavg/gpu" // enables GPU acceleration
//
// Results must be identical to AverageChannels for the same inputs.
type GPUAccelerator interface {
	// Name returns the accelerator name (e.g., "wgpu-vulkan").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// AverageChannels runs the filter on the GPU. Buffers have already been
	// validated with Check. Returns ErrFallbackToCPU when the call cannot
	// be accelerated.
	AverageChannels(input, output *Planar, cfg FilterConfig) error
}

// DeviceProviderAware is an optional interface for accelerators that can share
// GPU resources with an external provider. When SetDeviceProvider is called,
// the accelerator reuses the provided device instead of creating its own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   GPUAccelerator
)

// RegisterAccelerator registers a GPU accelerator.
//
// Only one accelerator can be registered; subsequent calls replace and close
// the previous one. Init is called during registration and, on failure, the
// accelerator is not registered and the error is returned.
func RegisterAccelerator(a GPUAccelerator) error {
	if a == nil {
		return errors.New("chanavg: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())

	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// Accelerator returns the registered GPU accelerator, or nil if none.
func Accelerator() GPUAccelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// CloseAccelerator unregisters and closes the current accelerator, if any.
func CloseAccelerator() {
	accelMu.Lock()
	a := accel
	accel = nil
	accelMu.Unlock()
	if a != nil {
		a.Close()
	}
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator, enabling GPU device sharing with the host. If no accelerator
// is registered or it does not support device sharing, this is a no-op.
func SetAcceleratorDeviceProvider(provider any) error {
	a := Accelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}

// TryAccelerator runs the registered accelerator on buffers already
// validated with Check. It returns the accelerator name and true when the
// accelerator produced the result. Failures other than ErrFallbackToCPU are
// logged to l at Warn; output must then be recomputed on the CPU.
func TryAccelerator(input, output *Planar, cfg FilterConfig, l *slog.Logger) (string, bool) {
	a := Accelerator()
	if a == nil || cfg.Length <= 0 {
		return "", false
	}
	err := a.AverageChannels(input, output, cfg)
	if err == nil {
		return a.Name(), true
	}
	if !errors.Is(err, ErrFallbackToCPU) {
		l.Warn("chanavg: accelerator failed, using CPU",
			"accelerator", a.Name(), "err", err)
	}
	return "", false
}

// AverageChannelsAccelerated validates the buffers, then tries the registered
// accelerator and falls back to AverageChannels on any accelerator error.
// It reports whether the GPU produced the result.
func AverageChannelsAccelerated(input, output *Planar, cfg FilterConfig) (bool, error) {
	if err := Check(input, output, cfg); err != nil {
		return false, err
	}
	if _, ok := TryAccelerator(input, output, cfg, Logger()); ok {
		return true, nil
	}
	AverageRange(input, output, cfg, 0, cfg.Length)
	return false, nil
}
