// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

// Embedded WGSL shader sources.

//go:embed shaders/average_channels.wgsl
var averageShaderSource string

// AverageShaderSource returns the WGSL source of the average-channels kernel.
func AverageShaderSource() string {
	return averageShaderSource
}

// CompileAverageShader compiles the average-channels kernel to SPIR-V with
// naga. The HAL device compiles WGSL itself; this entry point exists for
// offline validation and for backends that take SPIR-V directly.
func CompileAverageShader() ([]byte, error) {
	spirv, err := naga.Compile(averageShaderSource)
	if err != nil {
		return nil, fmt.Errorf("compile average_channels shader: %w", err)
	}
	return spirv, nil
}
