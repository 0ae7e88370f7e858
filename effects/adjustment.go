package effects

import (
	"fmt"
	"strings"

	"github.com/soypat/pixfx"
)

// Adjustment identifies a single scalar color control. The set is closed:
// every Adjustment has a neutral value, a slider range and a matrix rule.
type Adjustment int

const (
	Contrast Adjustment = iota
	Exposure
	Saturation
	Temperature

	numAdjustments int = iota
)

// temperatureShift is the red/blue offset in 0..255 units at temperature 1.
const temperatureShift = 25

// Adjustments returns every adjustment in composition order.
func Adjustments() []Adjustment {
	return []Adjustment{Contrast, Exposure, Saturation, Temperature}
}

func (a Adjustment) String() string {
	switch a {
	case Contrast:
		return "Contrast"
	case Exposure:
		return "Exposure"
	case Saturation:
		return "Saturation"
	case Temperature:
		return "Temperature"
	}
	return fmt.Sprintf("Adjustment(%d)", int(a))
}

// Valid reports whether a is one of the defined adjustments.
func (a Adjustment) Valid() bool { return a >= 0 && int(a) < numAdjustments }

// Neutral returns the value at which a produces the identity matrix.
func (a Adjustment) Neutral() float64 {
	switch a {
	case Contrast, Saturation:
		return 1
	}
	return 0
}

// Range returns the inclusive slider limits for a.
func (a Adjustment) Range() (lo, hi float64) {
	switch a {
	case Contrast:
		return 0.5, 1.5
	case Exposure:
		return -0.5, 0.5
	case Saturation:
		return 0, 2
	case Temperature:
		return -1, 1
	}
	return 0, 0
}

// Check returns an error if a is unknown or v is not a finite value
// inside the range of a. NaN fails every comparison so it is rejected too.
func (a Adjustment) Check(v float64) error {
	if !a.Valid() {
		return fmt.Errorf("unknown %v", a)
	}
	if lo, hi := a.Range(); !(v >= lo && v <= hi) {
		return fmt.Errorf("%v value %v outside %v..%v", a, v, lo, hi)
	}
	return nil
}

// Description is a short human readable explanation of a.
func (a Adjustment) Description() string {
	switch a {
	case Contrast:
		return "Uniform RGB gain"
	case Exposure:
		return "Additive brightness shift"
	case Saturation:
		return "Luminance preserving color intensity"
	case Temperature:
		return "Warm (red) to cool (blue) balance"
	}
	return ""
}

// Matrix returns the color matrix for a at value v.
func (a Adjustment) Matrix(v float64) pixfx.ColorMatrix {
	switch a {
	case Contrast:
		return pixfx.ScaleMatrix(v, v, v, 1)
	case Exposure:
		b := v * 255
		return pixfx.TranslateMatrix(b, b, b, 0)
	case Saturation:
		return pixfx.SaturationMatrix(v)
	case Temperature:
		return pixfx.TranslateMatrix(temperatureShift*v, 0, -temperatureShift*v, 0)
	}
	return pixfx.IdentityMatrix()
}

// ParseAdjustment converts a case-insensitive adjustment name.
func ParseAdjustment(name string) (Adjustment, error) {
	for _, a := range Adjustments() {
		if strings.EqualFold(a.String(), name) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown adjustment %q", name)
}
