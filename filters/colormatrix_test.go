package filters

import (
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/soypat/pixfx"
)

func newBuffer(t *testing.T, w, h int, pixels ...color.NRGBA) *pixfx.Buffer {
	t.Helper()
	b, err := pixfx.NewBuffer(w, h)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range pixels {
		b.Set(i%w, i/w, c)
	}
	return b
}

func TestApplyIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	src := GenerateRandomSquares(rng, 97, 61, 30, 3, 20)
	got, err := Apply(src, pixfx.IdentityMatrix())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(src) {
		t.Fatal("identity transform changed pixels")
	}
	if &got.Buffer()[0] == &src.Buffer()[0] {
		t.Fatal("identity transform returned the source memory")
	}
}

func TestApplyDesaturate(t *testing.T) {
	src := newBuffer(t, 2, 1,
		color.NRGBA{R: 255, A: 255},
		color.NRGBA{G: 255, A: 255},
	)
	before := src.Clone()
	got, err := Apply(src, pixfx.SaturationMatrix(0))
	if err != nil {
		t.Fatal(err)
	}
	// 0.213*255 = 54.315 and 0.715*255 = 182.325.
	want := []color.NRGBA{{54, 54, 54, 255}, {182, 182, 182, 255}}
	for x, w := range want {
		if c := got.At(x, 0); c != w {
			t.Errorf("pixel %d = %v, want %v", x, c, w)
		}
	}
	if !src.Equal(before) {
		t.Error("source buffer modified")
	}
	if got.Width() != src.Width() || got.Height() != src.Height() {
		t.Errorf("output %dx%d, want %dx%d", got.Width(), got.Height(), src.Width(), src.Height())
	}
}

func TestApplyClampRound(t *testing.T) {
	src := newBuffer(t, 3, 1,
		color.NRGBA{0, 0, 0, 255},
		color.NRGBA{128, 128, 128, 255},
		color.NRGBA{200, 10, 100, 255},
	)
	tests := []struct {
		name string
		m    pixfx.ColorMatrix
		want []color.NRGBA
	}{
		{
			name: "exposure",
			m:    pixfx.TranslateMatrix(0.2*255, 0.2*255, 0.2*255, 0),
			want: []color.NRGBA{{51, 51, 51, 255}, {179, 179, 179, 255}, {251, 61, 151, 255}},
		},
		{
			name: "contrast",
			m:    pixfx.ScaleMatrix(1.5, 1.5, 1.5, 1),
			want: []color.NRGBA{{0, 0, 0, 255}, {192, 192, 192, 255}, {255, 15, 150, 255}},
		},
		{
			name: "negative clamps to zero",
			m:    pixfx.TranslateMatrix(-150, -150, -150, 0),
			want: []color.NRGBA{{0, 0, 0, 255}, {0, 0, 0, 255}, {50, 0, 0, 255}},
		},
		{
			name: "halve",
			m:    pixfx.ScaleMatrix(0.5, 0.5, 0.5, 1),
			want: []color.NRGBA{{0, 0, 0, 255}, {64, 64, 64, 255}, {100, 5, 50, 255}},
		},
		{
			name: "alpha row",
			m:    pixfx.ScaleMatrix(1, 1, 1, 0.5),
			want: []color.NRGBA{{0, 0, 0, 128}, {128, 128, 128, 128}, {200, 10, 100, 128}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(src, tt.m)
			if err != nil {
				t.Fatal(err)
			}
			for x, w := range tt.want {
				if c := got.At(x, 0); c != w {
					t.Errorf("pixel %d = %v, want %v", x, c, w)
				}
			}
		})
	}
}

func TestApplyComposedEqualsSequential(t *testing.T) {
	// Integral coefficients keep the intermediate image exact so that
	// rounding between passes cannot differ from the composed pass.
	a := invertMatrix
	b := pixfx.ColorMatrix{
		0, 1, 0, 0, 10,
		1, 0, 0, 0, -20,
		0, 0, 1, 0, 5,
		0, 0, 0, 1, 0,
	}
	rng := rand.New(rand.NewSource(7))
	src := GenerateRandomSquares(rng, 50, 40, 25, 2, 15)

	composed, err := Apply(src, a.Compose(b))
	if err != nil {
		t.Fatal(err)
	}
	first, err := Apply(src, a)
	if err != nil {
		t.Fatal(err)
	}
	sequential, err := Apply(first, b)
	if err != nil {
		t.Fatal(err)
	}
	if !composed.Equal(sequential) {
		t.Fatal("apply(compose(a,b)) != apply(apply(a),b)")
	}
}

func TestApplyParallelMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	src := GenerateRandomSquares(rng, 173, 311, 60, 5, 60)
	m := pixfx.SaturationMatrix(1.7).Compose(pixfx.TranslateMatrix(12, 0, -12, 0))
	serial, err := Transformer{Workers: 1}.Apply(src, m)
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := Transformer{Workers: 7}.Apply(src, m)
	if err != nil {
		t.Fatal(err)
	}
	if !serial.Equal(parallel) {
		t.Fatal("parallel transform differs from serial")
	}
	unbuffered, err := Transformer{Workers: 4}.Apply(readerOnly{src}, m)
	if err != nil {
		t.Fatal(err)
	}
	if !serial.Equal(unbuffered) {
		t.Fatal("ReadAt path differs from buffered path")
	}
}

func TestApplyInvalid(t *testing.T) {
	var nilBuf *pixfx.Buffer
	if _, err := Apply(nilBuf, pixfx.IdentityMatrix()); !errors.Is(err, pixfx.ErrInvalidBuffer) {
		t.Errorf("typed nil source err = %v", err)
	}
	if _, err := Apply(nil, pixfx.IdentityMatrix()); !errors.Is(err, pixfx.ErrInvalidBuffer) {
		t.Errorf("nil source err = %v", err)
	}
	src := newBuffer(t, 4, 4)
	dst := newBuffer(t, 4, 3)
	if err := (Transformer{}).ApplyTo(dst, src, pixfx.IdentityMatrix()); !errors.Is(err, pixfx.ErrInvalidBuffer) {
		t.Errorf("dimension mismatch err = %v", err)
	}
	padded, err := pixfx.WrapBuffer(make([]byte, 3*24+16), 4, 4, 24)
	if err != nil {
		t.Fatal(err)
	}
	if err := (Transformer{}).ApplyTo(padded, src, pixfx.IdentityMatrix()); !errors.Is(err, pixfx.ErrInvalidBuffer) {
		t.Errorf("padded destination err = %v", err)
	}
	if err := (Transformer{}).ApplyTo(src, src, pixfx.IdentityMatrix()); !errors.Is(err, pixfx.ErrInvalidBuffer) {
		t.Errorf("in-place err = %v", err)
	}
}

func TestPointFilterROI(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	src := GenerateRandomSquares(rng, 40, 30, 20, 2, 10)
	f := NewColorMatrix(invertMatrix)
	roi := image.Rect(5, 7, 25, 19)
	dst := make([]byte, roi.Dx()*roi.Dy()*4)
	dims, err := f.Process(dst, src, &roi)
	if err != nil {
		t.Fatal(err)
	}
	if dims.Width != roi.Dx() || dims.Height != roi.Dy() {
		t.Fatalf("dims = %+v, want %dx%d", dims, roi.Dx(), roi.Dy())
	}
	out, err := pixfx.WrapBuffer(dst, dims.Width, dims.Height, dims.Stride)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < roi.Dy(); y++ {
		for x := 0; x < roi.Dx(); x++ {
			s := src.At(roi.Min.X+x, roi.Min.Y+y)
			want := color.NRGBA{255 - s.R, 255 - s.G, 255 - s.B, s.A}
			if got := out.At(x, y); got != want {
				t.Fatalf("roi pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestPointFilterErrors(t *testing.T) {
	src := newBuffer(t, 2, 2)
	f := &PointFilter{In: pixfx.ShapeRGBA8888, Out: pixfx.ShapeRGBA8888}
	if _, err := f.Process(make([]byte, 16), src, nil); err == nil {
		t.Error("nil PointFunc accepted")
	}
	f = NewColorMatrix(pixfx.IdentityMatrix())
	f.In = pixfx.ShapeRGB888
	if _, err := f.Process(make([]byte, 16), src, nil); !errors.Is(err, pixfx.ErrInvalidBuffer) {
		t.Errorf("shape mismatch err = %v", err)
	}
}
