package pixfx

import (
	"fmt"
	"math"
)

// Luminance weights used by [SaturationMatrix]. These are fixed so that
// results are reproducible across platforms.
const (
	LumaR = 0.213
	LumaG = 0.715
	LumaB = 0.072
)

// ColorMatrix is a 4x5 affine color transform stored row-major. Rows are the
// output channels R, G, B, A and columns the inputs R, G, B, A plus a
// constant offset in 0..255 units:
//
//	R' = m[0]*R  + m[1]*G  + m[2]*B  + m[3]*A  + m[4]
//	G' = m[5]*R  + m[6]*G  + m[7]*B  + m[8]*A  + m[9]
//	B' = m[10]*R + m[11]*G + m[12]*B + m[13]*A + m[14]
//	A' = m[15]*R + m[16]*G + m[17]*B + m[18]*A + m[19]
//
// The zero value is not the identity; use [IdentityMatrix].
type ColorMatrix [20]float64

// IdentityMatrix returns the neutral transform.
func IdentityMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// ScaleMatrix multiplies each channel by its factor.
func ScaleMatrix(r, g, b, a float64) ColorMatrix {
	return ColorMatrix{
		r, 0, 0, 0, 0,
		0, g, 0, 0, 0,
		0, 0, b, 0, 0,
		0, 0, 0, a, 0,
	}
}

// TranslateMatrix adds a constant offset to each channel.
func TranslateMatrix(r, g, b, a float64) ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, r,
		0, 1, 0, 0, g,
		0, 0, 1, 0, b,
		0, 0, 0, 1, a,
	}
}

// SaturationMatrix returns a luminance preserving saturation transform.
// amount 0 maps every color to its gray level, 1 is the identity and
// values above 1 oversaturate.
func SaturationMatrix(amount float64) ColorMatrix {
	inv := 1 - amount
	r, g, b := LumaR*inv, LumaG*inv, LumaB*inv
	return ColorMatrix{
		r + amount, g, b, 0, 0,
		r, g + amount, b, 0, 0,
		r, g, b + amount, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// NewColorMatrix builds a matrix from exactly 20 row-major coefficients.
// Any other length or a non-finite coefficient yields [ErrMalformedMatrix].
func NewColorMatrix(coefficients []float64) (ColorMatrix, error) {
	var m ColorMatrix
	if len(coefficients) != len(m) {
		return m, fmt.Errorf("%w: got %d coefficients, want %d", ErrMalformedMatrix, len(coefficients), len(m))
	}
	for i, c := range coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return m, fmt.Errorf("%w: coefficient %d is %v", ErrMalformedMatrix, i, c)
		}
	}
	copy(m[:], coefficients)
	return m, nil
}

// At returns the coefficient for output channel row and input column col,
// where col 4 is the constant offset.
func (m ColorMatrix) At(row, col int) float64 { return m[row*5+col] }

// Compose returns the transform equivalent to applying m and then other.
// In matrix terms it is the product other·m of the homogeneous 5x5 forms.
// Composition is associative but not commutative.
func (m ColorMatrix) Compose(other ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for i := 0; i < 4; i++ {
		o := other[i*5 : i*5+5]
		for j := 0; j < 5; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += o[k] * m[k*5+j]
			}
			if j == 4 {
				sum += o[4]
			}
			out[i*5+j] = sum
		}
	}
	return out
}

// LerpIdentity interpolates coefficient-wise from the identity (t=0) to m
// (t=1). t is clamped to [0,1].
func (m ColorMatrix) LerpIdentity(t float64) ColorMatrix {
	t = min(max(t, 0), 1)
	id := IdentityMatrix()
	var out ColorMatrix
	for i := range out {
		out[i] = id[i] + t*(m[i]-id[i])
	}
	return out
}

// IsIdentity reports whether m is exactly the identity matrix.
func (m ColorMatrix) IsIdentity() bool {
	return m == IdentityMatrix()
}

// Transform applies m to c without clamping or rounding.
// Channels are in 0..255 units.
func (m ColorMatrix) Transform(c [4]float64) (out [4]float64) {
	for i := 0; i < 4; i++ {
		row := m[i*5 : i*5+5]
		out[i] = row[0]*c[0] + row[1]*c[1] + row[2]*c[2] + row[3]*c[3] + row[4]
	}
	return out
}

// Float32 returns the coefficients narrowed for GPU upload.
func (m ColorMatrix) Float32() (out [20]float32) {
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// Coefficients returns a copy of the 20 coefficients.
func (m ColorMatrix) Coefficients() []float64 {
	return append([]float64(nil), m[:]...)
}
