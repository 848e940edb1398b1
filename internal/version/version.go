// Package version provides build-time metadata for the chanavg binary.
// GitCommit and BuildDate are injected at compile time via -ldflags; the
// version defaults to the library version.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/gogpu/chanavg"
)

// Build-time values injected via -ldflags.
var (
	version   = chanavg.Version
	gitCommit = "none"
	buildDate = "unknown"
)

// Info holds the build metadata for the binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
	GPU       bool   `json:"gpu"`
}

// GetInfo returns the current build information.
func GetInfo() Info {
	return Info{
		Version:   version,
		GitCommit: shortCommit(gitCommit),
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		GPU:       gpuBuild,
	}
}

// String returns a human-readable single-line version string.
func (i Info) String() string {
	gpu := "cpu"
	if i.GPU {
		gpu = "cpu+gpu"
	}

	return fmt.Sprintf("chanavg %s (commit: %s, built: %s, %s %s, %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform, gpu)
}

// JSON returns the version info as indented JSON.
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling version info: %w", err)
	}

	return string(data), nil
}

// shortCommit truncates a commit SHA to 7 characters.
func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}

	return commit
}
