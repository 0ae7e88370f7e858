package effects

import (
	"fmt"
	"strings"

	"github.com/soypat/pixfx"
)

// PresetID identifies a built-in filter preset.
type PresetID int

const (
	PresetNone PresetID = iota
	PresetBW
	PresetCinematic
	PresetVintage
	PresetVibrant
	PresetMuted
	PresetCool
	PresetWarm
	PresetInvert
	PresetStudio

	numPresets int = iota
)

func (id PresetID) String() string {
	switch id {
	case PresetNone:
		return "None"
	case PresetBW:
		return "B&W"
	case PresetCinematic:
		return "Cinematic"
	case PresetVintage:
		return "Vintage"
	case PresetVibrant:
		return "Vibrant"
	case PresetMuted:
		return "Muted"
	case PresetCool:
		return "Cool"
	case PresetWarm:
		return "Warm"
	case PresetInvert:
		return "Invert"
	case PresetStudio:
		return "Studio"
	}
	return fmt.Sprintf("PresetID(%d)", int(id))
}

// Preset is a named, hand-authored color matrix.
// The zero Preset behaves as the None preset.
type Preset struct {
	Name   string
	Matrix pixfx.ColorMatrix
}

// IsNone reports whether p leaves pixels unchanged.
func (p Preset) IsNone() bool { return p.matrix().IsIdentity() }

func (p Preset) matrix() pixfx.ColorMatrix {
	if p == (Preset{}) {
		return pixfx.IdentityMatrix()
	}
	return p.Matrix
}

// PresetIDs returns the built-in presets in display order.
func PresetIDs() []PresetID {
	ids := make([]PresetID, numPresets)
	for i := range ids {
		ids[i] = PresetID(i)
	}
	return ids
}

// Preset returns the built-in preset for id. Unknown ids yield the None preset.
func (id PresetID) Preset() Preset {
	return Preset{Name: id.String(), Matrix: id.matrix()}
}

func (id PresetID) matrix() pixfx.ColorMatrix {
	switch id {
	case PresetBW:
		return pixfx.SaturationMatrix(0)
	case PresetCinematic:
		return pixfx.ColorMatrix{
			1.0, 0.0, 0.0, 0.0, -10,
			0.0, 0.9, 0.1, 0.0, 0,
			0.1, 0.2, 0.7, 0.0, 10,
			0.0, 0.0, 0.0, 1.0, 0,
		}
	case PresetVintage:
		return pixfx.ColorMatrix{
			0.393, 0.769, 0.189, 0, 0,
			0.349, 0.686, 0.168, 0, 0,
			0.272, 0.534, 0.131, 0, 0,
			0, 0, 0, 1, 0,
		}
	case PresetVibrant:
		return pixfx.SaturationMatrix(1.5)
	case PresetMuted:
		return pixfx.SaturationMatrix(0.5)
	case PresetCool:
		return pixfx.ScaleMatrix(1, 1, 1.2, 1)
	case PresetWarm:
		return pixfx.ScaleMatrix(1.1, 1.1, 1, 1)
	case PresetInvert:
		return pixfx.ColorMatrix{
			-1, 0, 0, 0, 255,
			0, -1, 0, 0, 255,
			0, 0, -1, 0, 255,
			0, 0, 0, 1, 0,
		}
	case PresetStudio:
		return pixfx.ScaleMatrix(1.2, 1.2, 1.2, 1)
	}
	return pixfx.IdentityMatrix()
}

// BuiltinPresets returns every built-in preset in display order.
func BuiltinPresets() []Preset {
	presets := make([]Preset, numPresets)
	for i := range presets {
		presets[i] = PresetID(i).Preset()
	}
	return presets
}

// ParsePresetID converts a case-insensitive built-in preset name.
func ParsePresetID(name string) (PresetID, error) {
	for _, id := range PresetIDs() {
		if strings.EqualFold(id.String(), name) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown preset %q", name)
}
