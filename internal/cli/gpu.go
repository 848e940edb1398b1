//go:build !nogpu

package cli

import (
	"github.com/gogpu/chanavg"
	gpuimpl "github.com/gogpu/chanavg/internal/gpu"
)

func enableGPU() error {
	return chanavg.RegisterAccelerator(&gpuimpl.AverageAccelerator{})
}
