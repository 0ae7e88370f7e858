package effects

import (
	"fmt"
	"maps"
	"math"

	"github.com/soypat/pixfx"
)

// MaxIntensity is the intensity at which a preset applies fully.
const MaxIntensity = 100

// Params is a snapshot of every value the composer reads: the selected
// preset, its blend intensity in [0,100] and adjustment values.
//
// Values missing from the map resolve to the adjustment's neutral value.
// Setters copy the map before writing, so a Params handed to a renderer is
// never mutated by later edits.
type Params struct {
	Preset    Preset
	Intensity float64
	Values    map[Adjustment]float64
}

// DefaultParams returns the None preset at full intensity with every
// adjustment at its neutral value.
func DefaultParams() Params {
	return Params{Preset: PresetNone.Preset(), Intensity: MaxIntensity}
}

// Value returns the value of a, or its neutral value if unset.
func (p Params) Value(a Adjustment) float64 {
	if v, ok := p.Values[a]; ok {
		return v
	}
	return a.Neutral()
}

// With returns a copy of p with a set to v.
func (p Params) With(a Adjustment, v float64) Params {
	p.Set(a, v)
	return p
}

// Set sets adjustment a to v. The value is clamped to the adjustment range.
// Non-finite values are ignored.
func (p *Params) Set(a Adjustment, v float64) {
	if !isFinite(v) {
		return
	}
	lo, hi := a.Range()
	values := make(map[Adjustment]float64, len(p.Values)+1)
	maps.Copy(values, p.Values)
	values[a] = min(max(v, lo), hi)
	p.Values = values
}

// SetIntensity sets the preset intensity clamped to [0,100].
// Non-finite values are ignored.
func (p *Params) SetIntensity(v float64) {
	if !isFinite(v) {
		return
	}
	p.Intensity = min(max(v, 0), MaxIntensity)
}

// Reset returns every adjustment to its neutral value. Preset and intensity are kept.
func (p *Params) Reset() { p.Values = nil }

// ResetIntensity restores full preset intensity.
func (p *Params) ResetIntensity() { p.Intensity = MaxIntensity }

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	p.Values = maps.Clone(p.Values)
	return p
}

// Validate checks that every set adjustment is known and within range and
// that intensity lies in [0,100].
func (p Params) Validate() error {
	if err := CheckIntensity(p.Intensity); err != nil {
		return err
	}
	for a, v := range p.Values {
		if err := a.Check(v); err != nil {
			return err
		}
	}
	return nil
}

// CheckIntensity returns an error if v is not a finite value in [0,100].
func CheckIntensity(v float64) error {
	if !(v >= 0 && v <= MaxIntensity) {
		return fmt.Errorf("intensity %v outside 0..%d", v, MaxIntensity)
	}
	return nil
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Compose folds the preset and all adjustments of p into one matrix.
// The order is fixed since color transforms do not commute:
//  1. preset interpolated toward identity by intensity/100
//  2. contrast
//  3. exposure
//  4. saturation
//  5. temperature, skipped at 0
//
// Compose is a pure function of p. Values that bypassed the setters are
// clamped, and non-finite ones fall back to their defaults so the result
// is always a finite matrix.
func Compose(p Params) pixfx.ColorMatrix {
	intensity := float64(MaxIntensity)
	if isFinite(p.Intensity) {
		intensity = min(max(p.Intensity, 0), MaxIntensity)
	}
	value := func(a Adjustment) float64 {
		v := p.Value(a)
		if !isFinite(v) {
			return a.Neutral()
		}
		lo, hi := a.Range()
		return min(max(v, lo), hi)
	}
	m := p.Preset.matrix().LerpIdentity(intensity / MaxIntensity)
	m = m.Compose(Contrast.Matrix(value(Contrast)))
	m = m.Compose(Exposure.Matrix(value(Exposure)))
	m = m.Compose(Saturation.Matrix(value(Saturation)))
	if t := value(Temperature); t != 0 {
		m = m.Compose(Temperature.Matrix(t))
	}
	return m
}
