package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/gogpu/chanavg"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	// Register the WebP decoder with image.Decode.
	_ "golang.org/x/image/webp"
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the image format is not supported.
	ErrUnsupportedFormat = errors.New("image: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("image: empty data")

	// ErrDimensions is returned when width or height is not positive.
	ErrDimensions = errors.New("image: invalid dimensions")
)

// DefaultJPEGQuality is used by Save when no quality option is given.
const DefaultJPEGQuality = 90

// Load decodes the image file at path into a new planar buffer.
func Load(path string) (*chanavg.Planar, Info, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, Info{}, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// LoadFromBytes decodes an in-memory image, auto-detecting the format.
func LoadFromBytes(data []byte) (*chanavg.Planar, Info, error) {
	if len(data) == 0 {
		return nil, Info{}, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// Decode decodes an image from r, auto-detecting the format, and splits it
// into planes.
func Decode(r io.Reader) (*chanavg.Planar, Info, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, Info{}, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
		}
		return nil, Info{}, fmt.Errorf("image: decode: %w", err)
	}

	nrgba := ToNRGBA(img)
	b := nrgba.Bounds()
	info := Info{Width: b.Dx(), Height: b.Dy(), Format: ParseFormat(name)}

	p := chanavg.NewPlanar(info.Pixels())
	if err := chanavg.Unknit(p, &chanavg.Interleaved{Pix: nrgba.Pix[:info.Pixels()*4], Order: chanavg.OrderRGBA}); err != nil {
		return nil, Info{}, err
	}
	return p, info, nil
}

// ToNRGBA returns img as a tightly packed *image.NRGBA with its origin at
// (0, 0). NRGBA images that already qualify are returned as is; anything
// else is converted with draw.Src.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && n.Stride == b.Dx()*4 && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// FromPlanar packs the first width*height pixels of p into a new NRGBA image.
func FromPlanar(p *chanavg.Planar, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	n := width * height
	if p.Len() < n {
		return nil, &chanavg.LengthMismatchError{Buffer: "image", Channel: chanavg.Red, Len: p.Len(), Want: n}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	view := &chanavg.Planar{R: p.R[:n], G: p.G[:n], B: p.B[:n], A: p.A[:n]}
	if err := chanavg.Knit(&chanavg.Interleaved{Pix: dst.Pix, Order: chanavg.OrderRGBA}, view); err != nil {
		return nil, err
	}
	return dst, nil
}

// SaveOption configures Save and Encode.
type SaveOption func(*saveOptions)

type saveOptions struct {
	quality int
}

// WithJPEGQuality sets the JPEG quality (1-100). Other formats ignore it.
func WithJPEGQuality(q int) SaveOption {
	return func(o *saveOptions) {
		o.quality = q
	}
}

// OutputFormat returns the format Save would write for path, or
// ErrUnsupportedFormat when the extension cannot be encoded.
func OutputFormat(path string) (Format, error) {
	format := FormatFromPath(path)
	if format == FormatUnknown || format == FormatWebP {
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return format, nil
}

// Save writes p as an image file. The format follows the file extension.
// A failed encode removes the partial file.
func Save(path string, p *chanavg.Planar, width, height int, opts ...SaveOption) error {
	format, err := OutputFormat(path)
	if err != nil {
		return err
	}

	path = filepath.Clean(path)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}

	if err := Encode(f, format, p, width, height, opts...); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}

	return f.Close()
}

// Encode writes p to w in the given format.
func Encode(w io.Writer, format Format, p *chanavg.Planar, width, height int, opts ...SaveOption) error {
	o := saveOptions{quality: DefaultJPEGQuality}
	for _, opt := range opts {
		opt(&o)
	}

	img, err := FromPlanar(p, width, height)
	if err != nil {
		return err
	}

	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: min(max(o.quality, 1), 100)})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("image: encode %s: %w", format, err)
	}
	return nil
}
