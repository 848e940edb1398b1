//go:build nogpu

package cli

import "errors"

func enableGPU() error {
	return errors.New("built without GPU support (nogpu)")
}
