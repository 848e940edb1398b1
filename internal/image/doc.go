// Package image converts between image files and planar chanavg buffers.
//
// Decoding registers PNG and JPEG from the standard library and BMP, TIFF
// and WebP from golang.org/x/image. Every decoded image is normalized to
// straight (non-premultiplied) 8-bit RGBA before being split into planes,
// which is the representation the filter operates on.
package image
