package imageio

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/soypat/pixfx"
)

// Downscale returns a copy of src whose longest side is at most maxDim,
// preserving aspect ratio. src is returned unchanged if it already fits or
// maxDim is not positive.
func Downscale(src *pixfx.Buffer, maxDim int) *pixfx.Buffer {
	w, h := src.Width(), src.Height()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return src
	}
	dw, dh := maxDim, maxDim
	if w >= h {
		dh = max(1, h*maxDim/w)
	} else {
		dw = max(1, w*maxDim/h)
	}
	dst, err := pixfx.NewBuffer(dw, dh)
	if err != nil {
		return src
	}
	draw.ApproxBiLinear.Scale(dst.NRGBA(), image.Rect(0, 0, dw, dh), src.NRGBA(), src.NRGBA().Bounds(), draw.Src, nil)
	return dst
}
