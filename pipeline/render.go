// Package pipeline chains the color pipeline: parameters are composed into
// one matrix, the matrix is applied to the source buffer and a histogram is
// derived from the result.
package pipeline

import (
	"fmt"
	"time"

	"github.com/soypat/pixfx"
	"github.com/soypat/pixfx/effects"
	"github.com/soypat/pixfx/filters"
	"github.com/soypat/pixfx/histogram"
)

// Applier applies a color matrix to a whole image, returning a fresh
// buffer. [filters.Transformer] and [filters.ColorMatrixGPU] implement it.
type Applier interface {
	Apply(src pixfx.Image, m pixfx.ColorMatrix) (*pixfx.Buffer, error)
}

var _ Applier = filters.Transformer{}

// Result is the output of one pass of the pipeline.
type Result struct {
	// Seq is the submission number the result corresponds to.
	// Zero is the untransformed source published on start.
	Seq       uint64
	Params    effects.Params
	Matrix    pixfx.ColorMatrix
	Image     *pixfx.Buffer
	Histogram histogram.Histogram
	Elapsed   time.Duration
	Err       error
}

// Render runs the full chain for one parameter snapshot. A nil applier
// uses the CPU [filters.Transformer]. Render is a pure function of its
// arguments and never modifies src.
func Render(src *pixfx.Buffer, p effects.Params, ap Applier) (Result, error) {
	start := time.Now()
	if src == nil {
		return Result{}, fmt.Errorf("%w: nil source", pixfx.ErrInvalidBuffer)
	}
	if ap == nil {
		ap = filters.Transformer{}
	}
	m := effects.Compose(p)
	out, err := ap.Apply(src, m)
	if err != nil {
		return Result{}, err
	}
	if !out.Dims().SameSize(src.Dims()) {
		return Result{}, fmt.Errorf("%w: transform changed size %dx%d to %dx%d",
			pixfx.ErrInvalidBuffer, src.Width(), src.Height(), out.Width(), out.Height())
	}
	h, err := histogram.Compute(out)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Params:    p,
		Matrix:    m,
		Image:     out,
		Histogram: h,
		Elapsed:   time.Since(start),
	}, nil
}
