package effects

import (
	"errors"
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/soypat/pixfx"
	"gopkg.in/yaml.v2"
)

/* Example preset library ...

presets:
  - name: Sepia
    tint: "#704214"
  - name: Faded
    saturation: 0.6
  - name: Bright
    scale: 1.1
  - name: Swap
    matrix: [0,1,0,0,0, 1,0,0,0,0, 0,0,1,0,0, 0,0,0,1,0]

*/

// PresetSpec is one entry of a preset library file. Exactly one of
// Matrix, Saturation, Scale or Tint must be set.
type PresetSpec struct {
	Name       string    `yaml:"name"`
	Matrix     []float64 `yaml:"matrix,omitempty"`
	Saturation *float64  `yaml:"saturation,omitempty"`
	Scale      *float64  `yaml:"scale,omitempty"`
	Tint       string    `yaml:"tint,omitempty"`
}

// Library is the on-disk form of a set of custom presets.
type Library struct {
	Presets []PresetSpec `yaml:"presets"`
}

// LoadLibrary reads and parses a YAML preset library.
func LoadLibrary(filename string) ([]Preset, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("preset library read %s: %w", filename, err)
	}
	presets, err := ParseLibrary(contents)
	if err != nil {
		return nil, fmt.Errorf("preset library %s: %w", filename, err)
	}
	return presets, nil
}

// ParseLibrary parses YAML library contents into presets.
// Names must be unique and must not shadow a built-in preset.
func ParseLibrary(contents []byte) ([]Preset, error) {
	var lib Library
	if err := yaml.Unmarshal(contents, &lib); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	seen := make(map[string]bool)
	presets := make([]Preset, 0, len(lib.Presets))
	for i, spec := range lib.Presets {
		if spec.Name == "" {
			return nil, fmt.Errorf("preset %d: missing name", i)
		} else if _, err := ParsePresetID(spec.Name); err == nil {
			return nil, fmt.Errorf("preset %q shadows a built-in preset", spec.Name)
		} else if seen[spec.Name] {
			return nil, fmt.Errorf("duplicate preset %q", spec.Name)
		}
		seen[spec.Name] = true
		m, err := spec.matrix()
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", spec.Name, err)
		}
		presets = append(presets, Preset{Name: spec.Name, Matrix: m})
	}
	return presets, nil
}

func (s PresetSpec) matrix() (pixfx.ColorMatrix, error) {
	set := 0
	for _, ok := range []bool{s.Matrix != nil, s.Saturation != nil, s.Scale != nil, s.Tint != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return pixfx.ColorMatrix{}, errors.New("exactly one of matrix, saturation, scale or tint must be set")
	}
	switch {
	case s.Matrix != nil:
		return pixfx.NewColorMatrix(s.Matrix)
	case s.Saturation != nil:
		return pixfx.SaturationMatrix(*s.Saturation), nil
	case s.Scale != nil:
		return pixfx.ScaleMatrix(*s.Scale, *s.Scale, *s.Scale, 1), nil
	}
	return TintMatrix(s.Tint)
}

// TintMatrix returns a monochrome matrix toned by the hex color tint. A
// pixel's gray level is scaled per channel so that a gray equal to the
// tint's luminance maps to the tint itself.
func TintMatrix(tint string) (pixfx.ColorMatrix, error) {
	c, err := colorful.Hex(tint)
	if err != nil {
		return pixfx.ColorMatrix{}, fmt.Errorf("tint: %w", err)
	}
	lum := pixfx.LumaR*c.R + pixfx.LumaG*c.G + pixfx.LumaB*c.B
	if lum <= 0 {
		return pixfx.ColorMatrix{}, fmt.Errorf("tint %s has no luminance", tint)
	}
	gray := pixfx.SaturationMatrix(0)
	return gray.Compose(pixfx.ScaleMatrix(c.R/lum, c.G/lum, c.B/lum, 1)), nil
}

// FindPreset looks name up among the built-in presets and then extra.
func FindPreset(name string, extra []Preset) (Preset, error) {
	if id, err := ParsePresetID(name); err == nil {
		return id.Preset(), nil
	}
	for _, p := range extra {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("unknown preset %q", name)
}
