//go:build nogpu

package version

const gpuBuild = false
