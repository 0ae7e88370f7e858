package filters

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/soypat/pixfx"
)

var errShapeMismatch = fmt.Errorf("%w: pixel shape mismatch", pixfx.ErrInvalidBuffer)

// minRowsPerWorker keeps small images on a single goroutine.
const minRowsPerWorker = 32

// PointFunc processes a contiguous row of pixels.
// dst and src contain rowWidth pixels worth of bytes.
// The function should iterate through pixels: for i := 0; i < len(src); i += bytesPerPixel { ... }
// PointFunc may be called concurrently on distinct rows and must not keep state between calls.
type PointFunc func(dst, src []byte)

// PointFilter applies a per-pixel transformation using a callback function.
// It handles the iteration, buffering, and ROI logic common to all per-pixel filters.
// The callback is invoked once per row with contiguous pixel data.
type PointFilter struct {
	In    pixfx.Shape
	Out   pixfx.Shape
	Fn    PointFunc
	Ctrls []pixfx.Control // User-defined controls for this filter.
	// Workers is the number of goroutines rows are split among.
	// Zero uses GOMAXPROCS.
	Workers int
}

var _ pixfx.Filter = (*PointFilter)(nil)

// ShapeIO implements [pixfx.Filter].
func (f *PointFilter) ShapeIO() (output, input pixfx.Shape) {
	return f.Out, f.In
}

// Controls implements [pixfx.Filter].
func (f *PointFilter) Controls() []pixfx.Control {
	return f.Ctrls
}

// Process implements [pixfx.Filter]. The destination must not share memory with src.
func (f *PointFilter) Process(dst []byte, src pixfx.Image, roi *image.Rectangle) (pixfx.Dims, error) {
	if f.Fn == nil {
		return pixfx.Dims{}, errNilPixelFunc
	}
	if src == nil {
		return pixfx.Dims{}, fmt.Errorf("%w: nil source", pixfx.ErrInvalidBuffer)
	}

	outShape, inShape := f.ShapeIO()
	srcDims := src.Dims()
	if srcDims.Shape != inShape {
		return pixfx.Dims{}, errShapeMismatch
	}

	inBytesPerPixel := inShape.BytesPerPixel()
	outBytesPerPixel := outShape.BytesPerPixel()

	// Calculate output dimensions based on ROI or full image.
	var outWidth, outHeight int
	if roi != nil {
		outWidth, outHeight = roi.Dx(), roi.Dy()
	} else {
		outWidth, outHeight = srcDims.Width, srcDims.Height
	}
	outStride := outWidth * outBytesPerPixel

	dstDims := pixfx.Dims{
		Width:  outWidth,
		Height: outHeight,
		Stride: outStride,
		Shape:  outShape,
	}

	_, err := pixfx.ValidateProcessArgs(dst, dstDims, src, roi)
	if err != nil {
		return pixfx.Dims{}, err
	}

	// Determine source region to process.
	startX, startY := 0, 0
	endX, endY := srcDims.Width, srcDims.Height
	if roi != nil {
		startX, startY = roi.Min.X, roi.Min.Y
		endX, endY = roi.Max.X, roi.Max.Y
	}

	// Try to get direct buffer access for better performance.
	var srcBuf []byte
	if buffered, ok := src.(pixfx.ImageBuffered); ok {
		srcBuf = buffered.Buffer()
	}
	srcRowBytes := srcDims.SizeRow()
	srcStart := startX * inBytesPerPixel
	srcEnd := endX * inBytesPerPixel

	processRows := func(y0, y1 int) error {
		var rowBuf []byte // Fallback buffer for ReadAt.
		for y := y0; y < y1; y++ {
			var srcRow []byte
			srcRowStart := y * srcDims.Stride
			if srcBuf != nil {
				srcRow = srcBuf[srcRowStart : srcRowStart+srcRowBytes]
			} else {
				if rowBuf == nil {
					rowBuf = make([]byte, srcRowBytes)
				}
				var err error
				srcRow, err = pixfx.ImageRow(rowBuf, src, y)
				if err != nil {
					return err
				}
			}
			dstRowStart := (y - startY) * outStride
			f.Fn(dst[dstRowStart:dstRowStart+outStride], srcRow[srcStart:srcEnd])
		}
		return nil
	}

	workers := f.workers(endY - startY)
	if workers == 1 {
		if err := processRows(startY, endY); err != nil {
			return pixfx.Dims{}, err
		}
		return dstDims, nil
	}

	// Rows of dst are disjoint between bands so no synchronisation is needed on writes.
	chunk := (endY - startY + workers - 1) / workers
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for wi := 0; wi < workers; wi++ {
		y0 := startY + wi*chunk
		y1 := min(y0+chunk, endY)
		if y0 >= y1 {
			continue
		}
		wg.Add(1)
		go func(wi, y0, y1 int) {
			defer wg.Done()
			errs[wi] = processRows(y0, y1)
		}(wi, y0, y1)
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return pixfx.Dims{}, err
	}
	return dstDims, nil
}

func (f *PointFilter) workers(rows int) int {
	n := f.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return max(1, min(n, rows/minRowsPerWorker))
}

var errNilPixelFunc = errorString("nil PixelFunc")

type errorString string

func (e errorString) Error() string { return string(e) }
