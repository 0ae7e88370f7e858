package imageio

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/tiff"

	"github.com/soypat/pixfx"
)

// Sink durably stores finished buffers. name is a suggestion; the returned
// location is where the buffer was actually stored.
type Sink interface {
	Save(ctx context.Context, buf *pixfx.Buffer, name string) (location string, err error)
}

// Format is an output file encoding.
type Format int

const (
	FormatJPEG Format = iota
	FormatPNG
	FormatTIFF
)

// DefaultJPEGQuality is used when FileSink.Quality is zero.
const DefaultJPEGQuality = 95

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	case FormatTIFF:
		return "tiff"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatPNG:
		return ".png"
	case FormatTIFF:
		return ".tif"
	}
	return ".jpeg"
}

// ParseFormat converts a format name such as "jpeg", "jpg", "png", "tif" or "tiff".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return 0, fmt.Errorf("unknown output format %q", s)
}

// FileSink writes buffers into a directory as <name>-<unixmillis><ext>.
// Files are written to a temporary name first and renamed once complete,
// so a failed save leaves nothing behind.
type FileSink struct {
	Dir     string
	Format  Format
	Quality int              // JPEG quality 1..100, zero means DefaultJPEGQuality.
	Now     func() time.Time // Defaults to time.Now.
}

var _ Sink = (*FileSink)(nil)

// Save implements [Sink].
func (s *FileSink) Save(ctx context.Context, buf *pixfx.Buffer, name string) (string, error) {
	if buf == nil {
		return "", fmt.Errorf("%w: nil buffer", pixfx.ErrInvalidBuffer)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	final := filepath.Join(dir, fmt.Sprintf("%s-%d%s", name, now().UnixMilli(), s.Format.Ext()))

	tmp, err := os.CreateTemp(dir, ".pixfx-*")
	if err != nil {
		return "", err
	}
	err = s.encode(tmp, buf)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		err = os.Rename(tmp.Name(), final)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	pixfx.Logger().Info("image saved", "path", final, "format", s.Format.String())
	return final, nil
}

func (s *FileSink) encode(w io.Writer, buf *pixfx.Buffer) error {
	img := buf.NRGBA()
	switch s.Format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case FormatJPEG:
		q := s.Quality
		if q == 0 {
			q = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	}
	return fmt.Errorf("unsupported format %v", s.Format)
}
