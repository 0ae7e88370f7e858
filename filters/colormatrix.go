package filters

import (
	"fmt"

	"github.com/soypat/pixfx"
)

// NewColorMatrix creates a filter applying m to every RGBA8888 pixel.
// Each output channel is the row dot product plus offset, clamped to
// [0,255] and rounded to the nearest integer. Alpha goes through the same
// formula using the matrix alpha row.
func NewColorMatrix(m pixfx.ColorMatrix) *PointFilter {
	return &PointFilter{
		In:  pixfx.ShapeRGBA8888,
		Out: pixfx.ShapeRGBA8888,
		Fn:  colorMatrixFunc(m),
	}
}

func colorMatrixFunc(m pixfx.ColorMatrix) PointFunc {
	return func(dst, src []byte) {
		for i := 0; i+3 < len(src); i += 4 {
			r, g, b, a := float64(src[i]), float64(src[i+1]), float64(src[i+2]), float64(src[i+3])
			d := dst[i : i+4 : i+4]
			d[0] = clampRound(m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4])
			d[1] = clampRound(m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9])
			d[2] = clampRound(m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14])
			d[3] = clampRound(m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19])
		}
	}
}

func clampRound(v float64) uint8 {
	if v <= 0 {
		return 0
	} else if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Transformer applies color matrices to whole buffers.
// The zero value is ready to use.
type Transformer struct {
	// Workers bounds the goroutines used per pass. Zero uses GOMAXPROCS.
	Workers int
}

// Apply returns a new buffer with m applied to every pixel of src.
// src is never modified.
func (t Transformer) Apply(src pixfx.Image, m pixfx.ColorMatrix) (*pixfx.Buffer, error) {
	if isNilImage(src) {
		return nil, fmt.Errorf("%w: nil source", pixfx.ErrInvalidBuffer)
	}
	d := src.Dims()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	dst, err := pixfx.NewBuffer(d.Width, d.Height)
	if err != nil {
		return nil, err
	}
	if err := t.ApplyTo(dst, src, m); err != nil {
		return nil, err
	}
	return dst, nil
}

// ApplyTo writes src transformed by m into dst. dst must have the same
// dimensions as src, tightly packed rows and must not share memory with src.
func (t Transformer) ApplyTo(dst *pixfx.Buffer, src pixfx.Image, m pixfx.ColorMatrix) error {
	if dst == nil || isNilImage(src) {
		return fmt.Errorf("%w: nil buffer", pixfx.ErrInvalidBuffer)
	}
	dd, sd := dst.Dims(), src.Dims()
	if !dd.SameSize(sd) {
		return fmt.Errorf("%w: destination %dx%d does not match source %dx%d",
			pixfx.ErrInvalidBuffer, dd.Width, dd.Height, sd.Width, sd.Height)
	} else if dd.Stride != dd.SizeRow() {
		return fmt.Errorf("%w: destination rows not tightly packed", pixfx.ErrInvalidBuffer)
	}
	f := NewColorMatrix(m)
	f.Workers = t.Workers
	_, err := f.Process(dst.Buffer(), src, nil)
	return err
}

// Apply is shorthand for Transformer{}.Apply.
func Apply(src pixfx.Image, m pixfx.ColorMatrix) (*pixfx.Buffer, error) {
	return Transformer{}.Apply(src, m)
}

func isNilImage(img pixfx.Image) bool {
	if img == nil {
		return true
	}
	b, ok := img.(*pixfx.Buffer)
	return ok && b == nil
}
