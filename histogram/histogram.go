// Package histogram derives per-channel tonal statistics from pixel buffers.
package histogram

import (
	"fmt"

	"github.com/soypat/pixfx"
)

// Levels is the number of buckets per channel, one per 8-bit value.
const Levels = 256

// Channel selects one color channel of a [Histogram].
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// Histogram holds the count of each 8-bit level for the red, green and
// blue channels. For a W×H buffer every channel sums to W×H.
type Histogram struct {
	Red   [Levels]int
	Green [Levels]int
	Blue  [Levels]int
}

// Compute scans img once and counts its red, green and blue samples.
// Only RGBA8888 and RGB888 images are accepted.
func Compute(img pixfx.Image) (Histogram, error) {
	var h Histogram
	if img == nil {
		return h, fmt.Errorf("%w: nil image", pixfx.ErrInvalidBuffer)
	} else if b, ok := img.(*pixfx.Buffer); ok && b == nil {
		return h, fmt.Errorf("%w: nil buffer", pixfx.ErrInvalidBuffer)
	}
	d := img.Dims()
	if err := d.Validate(); err != nil {
		return h, err
	}
	bpp := d.Shape.BytesPerPixel()
	if d.Shape != pixfx.ShapeRGBA8888 && d.Shape != pixfx.ShapeRGB888 {
		return h, fmt.Errorf("%w: histogram of %v image", pixfx.ErrInvalidBuffer, d.Shape)
	}
	scratch := make([]byte, d.SizeRow())
	for y := 0; y < d.Height; y++ {
		row, err := pixfx.ImageRow(scratch, img, y)
		if err != nil {
			return Histogram{}, err
		}
		for i := 0; i+2 < len(row); i += bpp {
			h.Red[row[i]]++
			h.Green[row[i+1]]++
			h.Blue[row[i+2]]++
		}
	}
	return h, nil
}

// Channel returns the counts of channel c.
func (h *Histogram) Channel(c Channel) *[Levels]int {
	switch c {
	case Green:
		return &h.Green
	case Blue:
		return &h.Blue
	}
	return &h.Red
}

// Total returns the sum of counts of channel c.
func (h *Histogram) Total(c Channel) int {
	var n int
	for _, v := range h.Channel(c) {
		n += v
	}
	return n
}

// Max returns the largest single bucket count across all channels.
func (h *Histogram) Max() int {
	var m int
	for _, ch := range [...]*[Levels]int{&h.Red, &h.Green, &h.Blue} {
		for _, v := range ch {
			m = max(m, v)
		}
	}
	return m
}

// Curve returns one point per level with X the level and Y the count, both
// normalized to 0..1. Y is scaled by [Histogram.Max] so all channels share
// a vertical scale.
func (h *Histogram) Curve(c Channel) []pixfx.CurvePoint {
	peak := float32(h.Max())
	if peak == 0 {
		peak = 1
	}
	counts := h.Channel(c)
	pts := make([]pixfx.CurvePoint, Levels)
	for i, v := range counts {
		pts[i] = pixfx.CurvePoint{X: float32(i) / (Levels - 1), Y: float32(v) / peak}
	}
	return pts
}
