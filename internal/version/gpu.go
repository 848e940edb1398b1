//go:build !nogpu

package version

const gpuBuild = true
