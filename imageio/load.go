// Package imageio connects pixel buffers to files: it decodes edit sources,
// produces preview-sized copies and persists finished buffers.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/tiff"

	"github.com/soypat/pixfx"
)

// Meta describes a decoded source image.
type Meta struct {
	Format string
	// Orientation is the EXIF orientation tag (1..8) applied during decoding.
	// 1 when the file carries no orientation.
	Orientation int
	Model       string
}

// Load decodes the image file at filename into a buffer, rotating it
// upright according to its EXIF orientation.
func Load(filename string) (*pixfx.Buffer, Meta, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()
	buf, meta, err := Decode(f)
	if err != nil {
		return nil, meta, fmt.Errorf("decode %s: %w", filename, err)
	}
	return buf, meta, nil
}

// Decode reads an encoded PNG, JPEG or TIFF image from r.
func Decode(r io.Reader) (*pixfx.Buffer, Meta, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return nil, Meta{}, err
	}
	meta := Meta{Orientation: 1}
	readExif(contents, &meta)

	img, format, err := image.Decode(bytes.NewReader(contents))
	if err != nil {
		return nil, meta, err
	}
	meta.Format = format
	buf, err := pixfx.BufferFromImage(img)
	if err != nil {
		return nil, meta, err
	}
	if meta.Orientation != 1 {
		buf = Orient(buf, meta.Orientation)
	}
	pixfx.Logger().Debug("image decoded", "format", format, "width", buf.Width(), "height", buf.Height(), "orientation", meta.Orientation)
	return buf, meta, nil
}

// readExif fills meta from EXIF data. Missing or broken EXIF is not an error.
func readExif(contents []byte, meta *Meta) {
	x, err := exif.Decode(bytes.NewReader(contents))
	if err != nil {
		pixfx.Logger().Debug("no exif metadata", "err", err)
		return
	}
	if tag, err := x.Get(exif.Orientation); err == nil {
		if o, err := tag.Int(0); err == nil && o >= 1 && o <= 8 {
			meta.Orientation = o
		}
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if s, err := tag.StringVal(); err == nil {
			meta.Model = s
		}
	}
}

// Orient returns src transformed so that an image stored with EXIF
// orientation o displays upright. Orientation 1 or unknown values return src.
func Orient(src *pixfx.Buffer, o int) *pixfx.Buffer {
	if o < 2 || o > 8 {
		return src
	}
	w, h := src.Width(), src.Height()
	dw, dh := w, h
	if o >= 5 {
		dw, dh = h, w
	}
	dst, err := pixfx.NewBuffer(dw, dh)
	if err != nil {
		return src
	}
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			var sx, sy int
			switch o {
			case 2:
				sx, sy = w-1-x, y
			case 3:
				sx, sy = w-1-x, h-1-y
			case 4:
				sx, sy = x, h-1-y
			case 5:
				sx, sy = y, x
			case 6:
				sx, sy = y, h-1-x
			case 7:
				sx, sy = w-1-y, h-1-x
			case 8:
				sx, sy = w-1-y, x
			}
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}
