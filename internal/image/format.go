package image

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies an image file format.
type Format uint8

const (
	// FormatUnknown is an unrecognized format.
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatBMP
	FormatTIFF
	FormatWebP
)

var formatNames = [...]string{
	FormatUnknown: "unknown",
	FormatPNG:     "png",
	FormatJPEG:    "jpeg",
	FormatBMP:     "bmp",
	FormatTIFF:    "tiff",
	FormatWebP:    "webp",
}

// String returns the format name as used by image.RegisterFormat.
func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// ParseFormat maps a decoder name ("png", "jpeg", ...) to a Format.
func ParseFormat(name string) Format {
	name = strings.ToLower(name)
	if name == "jpg" {
		return FormatJPEG
	}
	if name == "tif" {
		return FormatTIFF
	}
	for f, n := range formatNames {
		if n == name && f != int(FormatUnknown) {
			return Format(f)
		}
	}
	return FormatUnknown
}

// FormatFromPath returns the format implied by the file extension.
func FormatFromPath(path string) Format {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Info describes a decoded image.
type Info struct {
	Width  int
	Height int
	Format Format
}

// Pixels returns Width*Height.
func (i Info) Pixels() int {
	return i.Width * i.Height
}
