package pixfx

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"golang.org/x/image/draw"
)

// Buffer is an in-memory RGBA8888 pixel buffer with straight
// (non-premultiplied) alpha. Rows are tightly packed unless constructed
// from an image with a larger stride.
//
// A Buffer is treated as immutable once loaded: filters always write to a
// fresh destination.
type Buffer struct {
	dims Dims
	pix  []byte
}

var _ ImageBuffered = (*Buffer)(nil)

// NewBuffer allocates a zeroed buffer of the given size.
func NewBuffer(width, height int) (*Buffer, error) {
	d := Dims{Width: width, Height: height, Stride: width * 4, Shape: ShapeRGBA8888}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Buffer{dims: d, pix: make([]byte, d.Size())}, nil
}

// WrapBuffer wraps raw RGBA8888 samples. pix is not copied.
func WrapBuffer(pix []byte, width, height, stride int) (*Buffer, error) {
	d := Dims{Width: width, Height: height, Stride: stride, Shape: ShapeRGBA8888}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if int64(len(pix)) < d.Size() {
		return nil, fmt.Errorf("%w: %d bytes cannot hold %dx%d pixels", ErrInvalidBuffer, len(pix), width, height)
	}
	return &Buffer{dims: d, pix: pix}, nil
}

// BufferFromImage copies img into a new buffer, un-premultiplying alpha
// when img is not already NRGBA.
func BufferFromImage(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidBuffer)
	}
	bounds := img.Bounds()
	buf, err := NewBuffer(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	if src, ok := img.(*image.NRGBA); ok {
		rowLen := buf.dims.SizeRow()
		for y := 0; y < bounds.Dy(); y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(buf.pix[y*buf.dims.Stride:], src.Pix[off:off+rowLen])
		}
		return buf, nil
	}
	draw.Draw(buf.NRGBA(), buf.NRGBA().Bounds(), img, bounds.Min, draw.Src)
	return buf, nil
}

// Dims implements [Image].
func (b *Buffer) Dims() Dims { return b.dims }

// Buffer implements [ImageBuffered].
func (b *Buffer) Buffer() []byte { return b.pix }

// ReadAt implements [io.ReaderAt].
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	} else if off >= int64(len(b.pix)) {
		return 0, io.EOF
	}
	n := copy(p, b.pix[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.dims.Width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.dims.Height }

// At returns the straight-alpha sample at x, y.
func (b *Buffer) At(x, y int) color.NRGBA {
	i := y*b.dims.Stride + x*4
	s := b.pix[i : i+4 : i+4]
	return color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
}

// Set writes c at x, y. Intended for building buffers, not for editing loaded ones.
func (b *Buffer) Set(x, y int, c color.NRGBA) {
	i := y*b.dims.Stride + x*4
	s := b.pix[i : i+4 : i+4]
	s[0], s[1], s[2], s[3] = c.R, c.G, c.B, c.A
}

// Clone returns a deep copy of b with tightly packed rows.
func (b *Buffer) Clone() *Buffer {
	c, _ := NewBuffer(b.dims.Width, b.dims.Height)
	rowLen := b.dims.SizeRow()
	for y := 0; y < b.dims.Height; y++ {
		copy(c.pix[y*c.dims.Stride:], b.pix[y*b.dims.Stride:y*b.dims.Stride+rowLen])
	}
	return c
}

// NRGBA returns an [image.NRGBA] sharing memory with b.
func (b *Buffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.pix,
		Stride: b.dims.Stride,
		Rect:   image.Rect(0, 0, b.dims.Width, b.dims.Height),
	}
}

// Equal reports whether a and b have the same size and pixel values.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	if !b.dims.SameSize(other.dims) {
		return false
	}
	rowLen := b.dims.SizeRow()
	for y := 0; y < b.dims.Height; y++ {
		ra := b.pix[y*b.dims.Stride : y*b.dims.Stride+rowLen]
		rb := other.pix[y*other.dims.Stride : y*other.dims.Stride+rowLen]
		if string(ra) != string(rb) {
			return false
		}
	}
	return true
}
