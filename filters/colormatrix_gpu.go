package filters

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/soypat/pixfx"
)

const colorMatrixTransform = `
fn transform(c: vec4<f32>) -> vec4<f32> {
    var o: vec4<f32>;
    for (var row = 0u; row < 4u; row++) {
        let b = row * 5u;
        // Offsets are stored in 0..255 units.
        o[row] = coef(b) * c.r + coef(b + 1u) * c.g + coef(b + 2u) * c.b + coef(b + 3u) * c.a + coef(b + 4u) / 255.0;
    }
    return o;
}
`

// ColorMatrixGPU applies a color matrix using GPU compute. Results match
// the CPU [Transformer] up to float32 precision.
type ColorMatrixGPU struct {
	PointFilterGPU
	matrix pixfx.ColorMatrix
}

// NewColorMatrixGPU creates a GPU-accelerated color matrix filter
// initialized to the identity transform.
func NewColorMatrixGPU(device *wgpu.Device, queue *wgpu.Queue) (*ColorMatrixGPU, error) {
	f := &ColorMatrixGPU{}
	if err := f.Init(device, queue, colorMatrixTransform); err != nil {
		return nil, err
	}
	f.SetMatrix(pixfx.IdentityMatrix())
	return f, nil
}

// SetMatrix sets the matrix used by subsequent Process calls.
func (f *ColorMatrixGPU) SetMatrix(m pixfx.ColorMatrix) {
	f.matrix = m
	f.SetCoefficients(m)
}

// Matrix returns the current matrix.
func (f *ColorMatrixGPU) Matrix() pixfx.ColorMatrix {
	return f.matrix
}

// Apply sets the matrix and processes src. It has the same signature as
// [Transformer.Apply] so either can back a rendering pipeline.
// Apply is not safe to call concurrently with SetMatrix.
func (f *ColorMatrixGPU) Apply(src pixfx.Image, m pixfx.ColorMatrix) (*pixfx.Buffer, error) {
	if isNilImage(src) {
		return nil, fmt.Errorf("%w: nil source", pixfx.ErrInvalidBuffer)
	}
	buf, ok := src.(*pixfx.Buffer)
	if !ok {
		var err error
		buf, err = readBuffer(src)
		if err != nil {
			return nil, err
		}
	}
	f.SetMatrix(m)
	return f.Process(buf)
}

// OpenDevice requests a WebGPU device from the default adapter.
// The returned release function frees the device.
func OpenDevice() (device *wgpu.Device, queue *wgpu.Queue, release func(), err error) {
	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, nil, nil, errors.New("webgpu not available")
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, nil, nil, fmt.Errorf("gpu adapter: %w", err)
	}
	device, err = adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, nil, nil, fmt.Errorf("gpu device: %w", err)
	}
	pixfx.Logger().Info("gpu device opened")
	release = func() {
		device.Release()
		adapter.Release()
		instance.Release()
	}
	return device, device.GetQueue(), release, nil
}

// readBuffer copies a possibly unbuffered RGBA8888 image into memory.
func readBuffer(src pixfx.Image) (*pixfx.Buffer, error) {
	d := src.Dims()
	if err := d.Validate(); err != nil {
		return nil, err
	} else if d.Shape != pixfx.ShapeRGBA8888 {
		return nil, errShapeMismatch
	}
	buf, err := pixfx.NewBuffer(d.Width, d.Height)
	if err != nil {
		return nil, err
	}
	rowLen := d.SizeRow()
	scratch := make([]byte, rowLen)
	for y := 0; y < d.Height; y++ {
		row, err := pixfx.ImageRow(scratch, src, y)
		if err != nil {
			return nil, err
		}
		copy(buf.Buffer()[y*rowLen:], row)
	}
	return buf, nil
}
