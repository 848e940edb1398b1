package chanavg

import (
	"fmt"
	"strings"
)

// ExcludedMode selects what happens to an output channel whose Exclude flag is
// set, for pixels that are not fully transparent.
type ExcludedMode uint8

const (
	// ExcludedUntouched leaves the output channel as it was. Callers that care
	// about its value must pre-populate the output buffer.
	ExcludedUntouched ExcludedMode = iota

	// ExcludedZero writes 0 to the output channel.
	ExcludedZero

	// ExcludedCopy copies the input channel value to the output channel.
	ExcludedCopy

	excludedModeCount
)

var excludedModeNames = [excludedModeCount]string{
	ExcludedUntouched: "untouched",
	ExcludedZero:      "zero",
	ExcludedCopy:      "copy",
}

// String returns the mode name.
func (m ExcludedMode) String() string {
	if m < excludedModeCount {
		return excludedModeNames[m]
	}
	return fmt.Sprintf("ExcludedMode(%d)", uint8(m))
}

// ParseExcludedMode parses a mode name. The empty string means ExcludedUntouched.
func ParseExcludedMode(s string) (ExcludedMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ExcludedUntouched, nil
	}
	for m, name := range excludedModeNames {
		if s == name {
			return ExcludedMode(m), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown excluded mode %q", ErrInvalidConfig, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m ExcludedMode) MarshalText() ([]byte, error) {
	if m >= excludedModeCount {
		return nil, fmt.Errorf("%w: unknown excluded mode %d", ErrInvalidConfig, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ExcludedMode) UnmarshalText(text []byte) error {
	v, err := ParseExcludedMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// FilterConfig configures one average-channels pass.
//
// It is a flat value: it carries no references to pixel storage and can be
// copied or serialized across a host boundary freely.
//
// The Include flags select which channels contribute to the average (and so
// the divisor). The Exclude flags select which output channels are NOT
// overwritten with the average. The two sets are independent: a channel may
// be included in the average yet excluded from being written.
type FilterConfig struct {
	// Length is the number of pixels to process. Every channel of the input
	// and output buffers must hold at least Length values.
	Length int `json:"length" yaml:"length" mapstructure:"length"`

	IncludeRed   bool `json:"includeRed" yaml:"includeRed" mapstructure:"include-red"`
	IncludeGreen bool `json:"includeGreen" yaml:"includeGreen" mapstructure:"include-green"`
	IncludeBlue  bool `json:"includeBlue" yaml:"includeBlue" mapstructure:"include-blue"`

	ExcludeRed   bool `json:"excludeRed" yaml:"excludeRed" mapstructure:"exclude-red"`
	ExcludeGreen bool `json:"excludeGreen" yaml:"excludeGreen" mapstructure:"exclude-green"`
	ExcludeBlue  bool `json:"excludeBlue" yaml:"excludeBlue" mapstructure:"exclude-blue"`

	// Excluded controls excluded output channels. Default: ExcludedUntouched.
	Excluded ExcludedMode `json:"excluded" yaml:"excluded" mapstructure:"-"`
}

// DefaultFilterConfig returns a config for n pixels that averages all three
// color channels and writes the result to all of them.
func DefaultFilterConfig(n int) FilterConfig {
	return FilterConfig{
		Length:       n,
		IncludeRed:   true,
		IncludeGreen: true,
		IncludeBlue:  true,
	}
}

// Divisor returns the number of included channels (0-3).
func (c FilterConfig) Divisor() int {
	d := 0
	if c.IncludeRed {
		d++
	}
	if c.IncludeGreen {
		d++
	}
	if c.IncludeBlue {
		d++
	}
	return d
}

// Validate checks the config for values the filter cannot process.
func (c FilterConfig) Validate() error {
	if c.Length < 0 {
		return fmt.Errorf("%w: negative length %d", ErrInvalidConfig, c.Length)
	}
	if c.Excluded >= excludedModeCount {
		return fmt.Errorf("%w: unknown excluded mode %d", ErrInvalidConfig, uint8(c.Excluded))
	}
	return nil
}
