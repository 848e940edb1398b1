//go:build !nogpu

package gpu

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/chanavg"
)

// loggerPtr stores the active logger. Accessed atomically for thread safety.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(chanavg.NopLogger())
}

// slogger returns the current package logger.
// All logging in internal/gpu goes through this function.
func slogger() *slog.Logger { return loggerPtr.Load() }

// setLogger updates the package-level logger.
// Called from AverageAccelerator.SetLogger when chanavg.SetLogger propagates.
func setLogger(l *slog.Logger) {
	if l == nil {
		l = chanavg.NopLogger()
	}
	loggerPtr.Store(l)
}
