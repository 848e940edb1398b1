// Package watch re-runs the chanavg filter whenever its input image, packet
// file or config file changes. Rapid events are debounced into one run.
package watch
