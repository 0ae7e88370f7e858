package filters

import (
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/soypat/pixfx"
)

// GenerateRandomSquares creates a buffer with random colored squares on a black background.
func GenerateRandomSquares(rng *rand.Rand, width, height, numSquares, minSize, maxSize int) *pixfx.Buffer {
	img, _ := pixfx.NewBuffer(width, height)
	pix := img.Buffer()

	// Fill with black (alpha=255)
	for i := 3; i < len(pix); i += 4 {
		pix[i] = 255
	}

	for i := 0; i < numSquares; i++ {
		size := minSize + rng.Intn(maxSize-minSize+1)
		x := rng.Intn(width)
		y := rng.Intn(height)

		// Random color (avoid very dark so squares are visible)
		c := color.NRGBA{
			R: uint8(64 + rng.Intn(192)),
			G: uint8(64 + rng.Intn(192)),
			B: uint8(64 + rng.Intn(192)),
			A: uint8(128 + rng.Intn(128)),
		}
		fillRect(img, x, y, size, size, c)
	}
	return img
}

func fillRect(img *pixfx.Buffer, x, y, w, h int, c color.NRGBA) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			px, py := x+dx, y+dy
			if px < img.Width() && py < img.Height() {
				img.Set(px, py, c)
			}
		}
	}
}

func saveAsPNG(img *pixfx.Buffer, path string) error {
	if err := os.MkdirAll("testdata", 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img.NRGBA())
}

// initGPU opens a WebGPU device for testing, skipping the test when none is available.
func initGPU(t *testing.T) (*wgpu.Device, *wgpu.Queue, bool) {
	t.Helper()
	device, queue, release, err := OpenDevice()
	if err != nil {
		t.Skipf("No GPU: %v", err)
		return nil, nil, false
	}
	t.Cleanup(release)
	return device, queue, true
}

// readerOnly hides the ImageBuffered methods of a buffer so filters take the ReadAt path.
type readerOnly struct{ b *pixfx.Buffer }

func (r readerOnly) Dims() pixfx.Dims                        { return r.b.Dims() }
func (r readerOnly) ReadAt(p []byte, off int64) (int, error) { return r.b.ReadAt(p, off) }
