package pixfx

import (
	"fmt"
	"image"
	"io"
)

// Image is a low-level, whole-buffer image access abstraction of raw memory.
// It does not do bounds abstraction. As made implicit by Dims signature, row spacing must be homogenous in images.
type Image interface {
	// Dims returns information on in-memory image structure.
	// Row spacing must be homogenous in entire image separated by stride bytes.
	Dims() Dims
	// ReadAt reads from the image buffer of pixels, which may be in-memory or elsewhere (disk, network).
	//
	// Users should always try casting [Image] to [ImageBuffered]
	// to see if they can work with the image in-memory which is more efficient.
	io.ReaderAt
}

type ImageBuffered interface {
	Image
	// Buffer returns the raw underlying buffer for images stored in memory.
	// Buffer returns the entire buffer or nil to signal buffer is currently not in memory.
	Buffer() []byte
}

// Filter is a low-level filter implementation.
//
// Filters never write through their source: the destination is always a
// distinct buffer so that repeated previews run against the same original.
type Filter interface {
	// ShapeIO returns expected output and input [Shape] of the filter.
	// output shape MUST match Process [Dims.Shape] output.
	ShapeIO() (output, input Shape)
	// Process processes an input image and writes the result to
	// destination buffer and returns the dimensions of the resulting image.
	// Use [ValidateProcessArgs] to validate arguments.
	Process(dst []byte, src Image, roi *image.Rectangle) (Dims, error)
	// Controls returns the actual controls of the filter.
	// Controls should remain valid even after calling [Control.ChangeValue]
	// and their [Control.ActualValue] return the updated value.
	Controls() []Control
}

type Shape int

const (
	shapeUndefined Shape = iota // undefined
	ShapeRGB888                 // rgb888
	ShapeRGBA8888               // rgba8888
)

func (sh Shape) String() string {
	switch sh {
	case ShapeRGB888:
		return "rgb888"
	case ShapeRGBA8888:
		return "rgba8888"
	}
	return "undefined"
}

func (sh Shape) BitsPerPixel() (bits int) {
	switch sh {
	default:
		bits = -1
	case ShapeRGBA8888:
		bits = 32
	case ShapeRGB888:
		bits = 24
	}
	return bits
}

// BytesPerPixel returns the size of a single pixel in bytes, rounded up.
func (sh Shape) BytesPerPixel() int {
	return (sh.BitsPerPixel() + 7) / 8
}

type Dims struct {
	Width  int
	Height int
	Stride int
	Shape  Shape
}

// Validate returns an error wrapping [ErrInvalidBuffer] when d
// cannot describe a non-empty image.
func (d Dims) Validate() error {
	pixbits := d.Shape.BitsPerPixel()
	if d.Height <= 0 || d.Width <= 0 {
		return fmt.Errorf("%w: empty image %dx%d", ErrInvalidBuffer, d.Width, d.Height)
	} else if pixbits < 1 {
		return fmt.Errorf("%w: bad pixel shape", ErrInvalidBuffer)
	} else if (d.Width*pixbits+7)/8 > d.Stride {
		return fmt.Errorf("%w: stride smaller than pixel row size", ErrInvalidBuffer)
	}
	return nil
}

// SameSize reports whether d and other share width and height.
func (d Dims) SameSize(other Dims) bool {
	return d.Width == other.Width && d.Height == other.Height
}

func (d Dims) NumPixels() int64 {
	return int64(d.Height) * int64(d.Width)
}

// Size returns the readable section size of raw image in bytes.
func (d Dims) Size() int64 {
	if d.Height == 0 || d.Width == 0 {
		return 0
	}
	return int64(d.Height-1)*int64(d.Stride) + int64(d.SizeRow())
}

func (d Dims) SizeRow() int {
	return (d.Width*d.Shape.BitsPerPixel() + 7) / 8
}

// ImageRow returns the pixel bytes of a single row. For buffered images the
// returned slice aliases the image memory, otherwise row is read into dst.
func ImageRow(dst []byte, img Image, row int) (resultSized []byte, err error) {
	d := img.Dims()
	err = d.Validate()
	if err != nil {
		return nil, err
	}
	rowLenBytes := d.SizeRow()
	if len(dst) < rowLenBytes {
		// So we could technically check this after trying ImageBuffered,
		// however if we do check early we can encourage users to write more robust software for when Buffer() fails.
		return nil, io.ErrShortBuffer
	} else if row < 0 || row >= d.Height {
		return nil, fmt.Errorf("%w: row %d out of bounds", ErrInvalidBuffer, row)
	}
	off := int64(row) * int64(d.Stride)
	if buffered, ok := img.(ImageBuffered); ok {
		buf := buffered.Buffer()
		if buf != nil {
			if int64(len(buf)) < off+int64(rowLenBytes) {
				return nil, fmt.Errorf("%w: buffer shorter than dims", ErrInvalidBuffer)
			}
			return buf[off : off+int64(rowLenBytes)], nil
		}
	}
	resultSized = dst[:rowLenBytes]
	n, err := img.ReadAt(resultSized, off)
	if n != rowLenBytes {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: short row read: %v", ErrInvalidBuffer, err)
	}
	return resultSized, nil
}

// ValidateProcessArgs provides basic guarantees of inputs to Filter such as:
//   - Source [Dims.Validate] early validation. Always returned as called.
//   - Valid ROI argument.
//   - Non-nil destination which does not share memory with a buffered source.
//   - For users who know the output stride and height offers checking of dst buffer size.
//     Use dstDims.Stride=0 to omit this check.
//
// srcDims is always returned as called by src.Dims.
func ValidateProcessArgs(dst []byte, dstDims Dims, src Image, roi *image.Rectangle) (srcDims Dims, err error) {
	if src == nil {
		return srcDims, fmt.Errorf("%w: nil source", ErrInvalidBuffer)
	}
	srcDims = src.Dims()
	if err = srcDims.Validate(); err != nil {
		return srcDims, err
	}
	var requiredMinDstSize int64
	if roi != nil {
		if roi.Max.X < 0 || roi.Min.X < 0 || roi.Min.Y < 0 || roi.Max.Y < 0 {
			return srcDims, fmt.Errorf("%w: negative ROI", ErrInvalidBuffer)
		} else if roi.Max.X > srcDims.Width || roi.Max.Y > srcDims.Height {
			return srcDims, fmt.Errorf("%w: ROI exceeds image bounds", ErrInvalidBuffer)
		} else if roi.Empty() {
			return srcDims, fmt.Errorf("%w: empty ROI", ErrInvalidBuffer)
		}
		requiredMinDstSize = int64(dstDims.Stride) * int64(roi.Dy())
	} else {
		requiredMinDstSize = int64(dstDims.Stride) * int64(dstDims.Height)
	}
	if dst == nil {
		return srcDims, fmt.Errorf("%w: nil destination", ErrInvalidBuffer)
	}
	if buffered, ok := src.(ImageBuffered); ok {
		if buf := buffered.Buffer(); len(buf) > 0 && len(dst) > 0 && &buf[0] == &dst[0] {
			return srcDims, fmt.Errorf("%w: destination aliases source", ErrInvalidBuffer)
		} else if buf != nil && int64(len(buf)) < srcDims.Size() {
			return srcDims, fmt.Errorf("%w: source buffer too small to represent complete image", ErrInvalidBuffer)
		}
	}
	if int64(len(dst)) < requiredMinDstSize {
		return srcDims, fmt.Errorf("%w: destination buffer not large enough to store output", ErrInvalidBuffer)
	}
	return srcDims, nil
}
