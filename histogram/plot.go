package histogram

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
)

var channelColors = [...]colorful.Color{
	Red:   {R: 0.91, G: 0.30, B: 0.24},
	Green: {R: 0.18, G: 0.80, B: 0.44},
	Blue:  {R: 0.20, G: 0.60, B: 0.86},
}

// Plot renders h as three translucent filled curves over a dark background.
func Plot(h *Histogram, width, height int) image.Image {
	dc := gg.NewContext(width, height)
	dc.SetRGB(0.08, 0.08, 0.08)
	dc.Clear()
	w, ht := float64(width), float64(height)
	for c := Red; c <= Blue; c++ {
		col := channelColors[c]
		dc.SetRGBA(col.R, col.G, col.B, 0.5)
		dc.MoveTo(0, ht)
		for _, p := range h.Curve(c) {
			dc.LineTo(float64(p.X)*w, ht-float64(p.Y)*ht)
		}
		dc.LineTo(w, ht)
		dc.ClosePath()
		dc.Fill()
	}
	return dc.Image()
}

// SavePlot renders h and writes it as a PNG file.
func SavePlot(h *Histogram, filename string, width, height int) error {
	dc := gg.NewContextForImage(Plot(h, width, height))
	return dc.SavePNG(filename)
}
