package chanavg

import (
	"errors"
	"fmt"
)

// Common errors for filter operations.
var (
	// ErrLengthMismatch is returned when a channel sequence is shorter than
	// the configured pixel count. It is reported before any output is written.
	ErrLengthMismatch = errors.New("chanavg: channel length mismatch")

	// ErrInvalidConfig is returned when a FilterConfig fails validation.
	ErrInvalidConfig = errors.New("chanavg: invalid filter config")
)

// LengthMismatchError describes the first short channel found by the
// up-front length check.
type LengthMismatchError struct {
	// Buffer names the offending buffer ("input", "output", ...).
	Buffer string

	// Channel is the short channel.
	Channel Channel

	// Len is the actual channel length.
	Len int

	// Want is the configured pixel count.
	Want int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("chanavg: %s %s channel has %d values, need %d",
		e.Buffer, e.Channel, e.Len, e.Want)
}

// Is reports whether target is ErrLengthMismatch.
func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrLengthMismatch
}

// checkBuffer verifies that every channel of b holds at least n values.
func checkBuffer(name string, b PixelBuffer, n int) error {
	if b == nil {
		return &LengthMismatchError{Buffer: name, Channel: Red, Len: 0, Want: n}
	}
	for _, c := range Channels {
		if l := b.ChannelLen(c); l < n {
			return &LengthMismatchError{Buffer: name, Channel: c, Len: l, Want: n}
		}
	}
	return nil
}
