package effects

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/soypat/pixfx"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestComposeDefaultIsIdentity(t *testing.T) {
	if got := Compose(DefaultParams()); got != pixfx.IdentityMatrix() {
		t.Fatalf("default params compose to %v, want identity", got)
	}
	// A zero Params has intensity 0 and the zero preset, also identity.
	if got := Compose(Params{}); got != pixfx.IdentityMatrix() {
		t.Fatalf("zero params compose to %v, want identity", got)
	}
	for _, a := range Adjustments() {
		if got := a.Matrix(a.Neutral()); got != pixfx.IdentityMatrix() {
			t.Errorf("%v at neutral = %v, want identity", a, got)
		}
	}
}

func TestComposeOrder(t *testing.T) {
	p := DefaultParams().With(Contrast, 1.5).With(Exposure, 0.2)
	got := Compose(p).Transform([4]float64{100, 100, 100, 255})
	// Contrast applies before exposure: 100*1.5 + 51.
	want := [4]float64{201, 201, 201, 255}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Fatalf("contrast then exposure (-want +got):\n%s", diff)
	}

	p = DefaultParams().With(Saturation, 0).With(Temperature, 1)
	got = Compose(p).Transform([4]float64{255, 0, 0, 255})
	// Desaturate first, then warm: gray 54.315 shifted by +25 red, -25 blue.
	want = [4]float64{54.315 + 25, 54.315, 54.315 - 25, 255}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Fatalf("saturation then temperature (-want +got):\n%s", diff)
	}
}

func TestComposePresetIntensity(t *testing.T) {
	p := DefaultParams()
	p.Preset = PresetVintage.Preset()
	p.Intensity = 0
	if got := Compose(p); got != pixfx.IdentityMatrix() {
		t.Errorf("intensity 0 composes to %v, want identity", got)
	}
	p.Intensity = MaxIntensity
	if diff := cmp.Diff(PresetVintage.Preset().Matrix, Compose(p), approx); diff != "" {
		t.Errorf("full intensity differs from preset (-want +got):\n%s", diff)
	}
	p.Intensity = 50
	want := PresetVintage.Preset().Matrix.LerpIdentity(0.5)
	if diff := cmp.Diff(want, Compose(p), approx); diff != "" {
		t.Errorf("half intensity (-want +got):\n%s", diff)
	}
	// Out of range intensity is clamped rather than extrapolated.
	p.Intensity = 250
	if diff := cmp.Diff(PresetVintage.Preset().Matrix, Compose(p), approx); diff != "" {
		t.Errorf("intensity 250 not clamped (-want +got):\n%s", diff)
	}
}

func TestComposeTemperature(t *testing.T) {
	tests := []struct {
		temp float64
		want [4]float64
	}{
		{0, [4]float64{100, 100, 100, 255}},
		{1, [4]float64{125, 100, 75, 255}},
		{-1, [4]float64{75, 100, 125, 255}},
		{0.5, [4]float64{112.5, 100, 87.5, 255}},
	}
	for _, tt := range tests {
		got := Compose(DefaultParams().With(Temperature, tt.temp)).Transform([4]float64{100, 100, 100, 255})
		if diff := cmp.Diff(tt.want, got, approx); diff != "" {
			t.Errorf("temperature %v (-want +got):\n%s", tt.temp, diff)
		}
	}
}

func TestComposePure(t *testing.T) {
	p := DefaultParams().With(Saturation, 1.3).With(Exposure, -0.1)
	p.Preset = PresetCinematic.Preset()
	p.Intensity = 70
	first := Compose(p)
	for i := 0; i < 5; i++ {
		if got := Compose(p); got != first {
			t.Fatal("Compose not deterministic")
		}
	}
}

func TestParamsSet(t *testing.T) {
	p := DefaultParams()
	if v := p.Value(Contrast); v != 1 {
		t.Errorf("unset contrast = %v, want 1", v)
	}
	if v := p.Value(Exposure); v != 0 {
		t.Errorf("unset exposure = %v, want 0", v)
	}

	p.Set(Contrast, 1.2)
	snapshot := p.Clone()
	shared := p
	p.Set(Contrast, 0.8)
	if v := snapshot.Value(Contrast); v != 1.2 {
		t.Errorf("clone changed to %v", v)
	}
	if v := shared.Value(Contrast); v != 1.2 {
		t.Errorf("shallow copy changed to %v after Set", v)
	}

	p.Set(Contrast, 9)
	if v := p.Value(Contrast); v != 1.5 {
		t.Errorf("contrast clamped to %v, want 1.5", v)
	}
	p.Set(Saturation, -1)
	if v := p.Value(Saturation); v != 0 {
		t.Errorf("saturation clamped to %v, want 0", v)
	}
	p.SetIntensity(130)
	if p.Intensity != MaxIntensity {
		t.Errorf("intensity clamped to %v", p.Intensity)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("clamped params invalid: %v", err)
	}

	p.Preset = PresetWarm.Preset()
	p.SetIntensity(40)
	p.Reset()
	if v := p.Value(Contrast); v != 1 {
		t.Errorf("contrast after reset = %v", v)
	}
	if p.Preset.Name != "Warm" || p.Intensity != 40 {
		t.Errorf("reset touched preset or intensity: %+v", p)
	}
	p.ResetIntensity()
	if p.Intensity != MaxIntensity {
		t.Errorf("intensity after ResetIntensity = %v", p.Intensity)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Params
		wantErr bool
	}{
		{"default", DefaultParams(), false},
		{"negative intensity", Params{Intensity: -1}, true},
		{"large intensity", Params{Intensity: 101}, true},
		{"exposure out of range", Params{Intensity: 10, Values: map[Adjustment]float64{Exposure: 0.6}}, true},
		{"unknown adjustment", Params{Values: map[Adjustment]float64{Adjustment(42): 0}}, true},
		{"edges", Params{Intensity: 0, Values: map[Adjustment]float64{Contrast: 0.5, Temperature: 1}}, false},
		{"nan intensity", Params{Intensity: math.NaN()}, true},
		{"inf intensity", Params{Intensity: math.Inf(1)}, true},
		{"nan contrast", Params{Intensity: 50, Values: map[Adjustment]float64{Contrast: math.NaN()}}, true},
		{"-inf exposure", Params{Intensity: 50, Values: map[Adjustment]float64{Exposure: math.Inf(-1)}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseAdjustment(t *testing.T) {
	for _, a := range Adjustments() {
		got, err := ParseAdjustment(a.String())
		if err != nil || got != a {
			t.Errorf("ParseAdjustment(%q) = %v, %v", a.String(), got, err)
		}
	}
	if got, err := ParseAdjustment("temperature"); err != nil || got != Temperature {
		t.Errorf("lowercase parse = %v, %v", got, err)
	}
	if _, err := ParseAdjustment("gamma"); err == nil {
		t.Error("unknown adjustment parsed")
	}
	if Adjustment(7).Valid() {
		t.Error("Adjustment(7) reported valid")
	}
}

func TestAdjustmentRanges(t *testing.T) {
	for _, a := range Adjustments() {
		lo, hi := a.Range()
		if n := a.Neutral(); n < lo || n > hi {
			t.Errorf("%v neutral %v outside %v..%v", a, n, lo, hi)
		}
		if a.Description() == "" {
			t.Errorf("%v missing description", a)
		}
	}
}

func TestParamsNonFinite(t *testing.T) {
	p := DefaultParams().With(Contrast, 1.2)
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		p.Set(Contrast, v)
		p.SetIntensity(v)
	}
	if got := p.Value(Contrast); got != 1.2 {
		t.Errorf("contrast = %v after non-finite Set, want 1.2", got)
	}
	if p.Intensity != MaxIntensity {
		t.Errorf("intensity = %v after non-finite SetIntensity", p.Intensity)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("params invalid after ignored writes: %v", err)
	}

	// Fields written directly bypass the setters; Compose must stay finite.
	raw := Params{
		Preset:    PresetVintage.Preset(),
		Intensity: math.NaN(),
		Values:    map[Adjustment]float64{Exposure: math.NaN(), Saturation: math.Inf(1)},
	}
	m := Compose(raw)
	for i, c := range m {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			t.Fatalf("coefficient %d = %v", i, c)
		}
	}
	// Intensity falls back to full strength and adjustments to neutral.
	if diff := cmp.Diff(PresetVintage.Preset().Matrix, m, approx); diff != "" {
		t.Errorf("non-finite fields not replaced by defaults (-want +got):\n%s", diff)
	}
}
