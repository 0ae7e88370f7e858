package effects

import "github.com/soypat/pixfx"

// adjustmentStep is the slider resolution of every adjustment.
const adjustmentStep = 0.01

// Controls returns the editable controls of p: the built-in preset
// selector, preset intensity and one slider per adjustment. Changing a
// control updates p; snapshots previously copied from p are unaffected.
// ActualValue always reads p, so edits made directly on p such as
// [Params.Reset] are reflected. A preset outside the built-in set reads
// as [PresetNone].
func Controls(p *Params) []pixfx.Control {
	currentPreset := func() PresetID {
		id, err := ParsePresetID(p.Preset.Name)
		if err != nil {
			return PresetNone
		}
		return id
	}
	ctrls := []pixfx.Control{
		&pixfx.ControlEnum[PresetID]{
			Name:        "Preset",
			Description: "Stylistic filter applied before adjustments",
			Value:       currentPreset(),
			ValidValues: PresetIDs(),
			OnChange: func(id PresetID) error {
				p.Preset = id.Preset()
				return nil
			},
			Get: currentPreset,
		},
		&pixfx.ControlOrdered[float64]{
			Name:        "Intensity",
			Description: "Blend of the preset over the original",
			Value:       p.Intensity,
			Neutral:     MaxIntensity,
			Min:         0,
			Max:         MaxIntensity,
			Step:        1,
			OnChange: func(v float64) error {
				p.SetIntensity(v)
				return nil
			},
			Get: func() float64 { return p.Intensity },
		},
	}
	for _, a := range Adjustments() {
		lo, hi := a.Range()
		ctrls = append(ctrls, &pixfx.ControlOrdered[float64]{
			Name:        a.String(),
			Description: a.Description(),
			Value:       p.Value(a),
			Neutral:     a.Neutral(),
			Min:         lo,
			Max:         hi,
			Step:        adjustmentStep,
			OnChange: func(v float64) error {
				p.Set(a, v)
				return nil
			},
			Get: func() float64 { return p.Value(a) },
		})
	}
	return ctrls
}
