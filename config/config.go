// Package config loads editing sessions from YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/soypat/pixfx/effects"
	"github.com/soypat/pixfx/imageio"
)

/* Example config file ...

output:
  dir: exports
  format: jpeg
  quality: 95
  name: edited

editing:
  preset: Cinematic
  intensity: 80
  presetlibrary: presets.yaml
  adjustments:
    contrast: 1.2
    exposure: 0.1
    temperature: -0.3

rendering:
  workers: 0
  previewmaxdim: 1080
  budgetms: 100

*/

type OutputOptions struct {
	Dir     string `yaml:"dir"`
	Format  string `yaml:"format"`
	Quality int    `yaml:"quality"`
	Name    string `yaml:"name"`
}

type EditOptions struct {
	Preset        string             `yaml:"preset"`
	Intensity     float64            `yaml:"intensity"`
	PresetLibrary string             `yaml:"presetlibrary"`
	Adjustments   map[string]float64 `yaml:"adjustments"`
}

type RenderOptions struct {
	Workers       int `yaml:"workers"`
	PreviewMaxDim int `yaml:"previewmaxdim"`
	BudgetMS      int `yaml:"budgetms"`
}

type Configuration struct {
	Output    OutputOptions `yaml:"output"`
	Editing   EditOptions   `yaml:"editing"`
	Rendering RenderOptions `yaml:"rendering"`

	// Values we derive in FinalizeConfiguration.
	Format  imageio.Format   `yaml:"-"`
	Presets []effects.Preset `yaml:"-"` // Custom presets from the library file.
	Params  effects.Params   `yaml:"-"`
	Budget  time.Duration    `yaml:"-"`

	baseDir string
}

// NewConfiguration returns the defaults: JPEG at quality 95 into the
// working directory, no preset at full intensity, neutral adjustments.
func NewConfiguration() Configuration {
	return Configuration{
		Output: OutputOptions{
			Dir:     ".",
			Format:  "jpeg",
			Quality: imageio.DefaultJPEGQuality,
			Name:    "pixfx",
		},
		Editing: EditOptions{
			Preset:    effects.PresetNone.String(),
			Intensity: effects.MaxIntensity,
		},
		Rendering: RenderOptions{
			PreviewMaxDim: 1080,
			BudgetMS:      100,
		},
	}
}

// LoadConfiguration reads a YAML file on top of the defaults and finalizes it.
// A relative preset library path is resolved against the file's directory.
func LoadConfiguration(filename string) (Configuration, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return NewConfiguration(), fmt.Errorf("config read %s: %w", filename, err)
	}
	c, err := parse(contents, filepath.Dir(filename))
	if err != nil {
		return c, fmt.Errorf("config %s: %w", filename, err)
	}
	return c, nil
}

// NewConfigurationFromYaml parses contents on top of the defaults and finalizes it.
func NewConfigurationFromYaml(contents []byte) (Configuration, error) {
	return parse(contents, "")
}

func parse(contents []byte, baseDir string) (Configuration, error) {
	c := NewConfiguration()
	c.baseDir = baseDir
	if err := yaml.Unmarshal(contents, &c); err != nil {
		return c, fmt.Errorf("parse: %w", err)
	}
	return c, c.FinalizeConfiguration()
}

// FinalizeConfiguration does sanity checks and computes the derived values.
// It must be called again after fields are overridden.
func (c *Configuration) FinalizeConfiguration() (err error) {
	if c.Format, err = imageio.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output quality %d outside 1..100", c.Output.Quality)
	} else if c.Output.Name == "" {
		return fmt.Errorf("empty output name")
	} else if c.Rendering.Workers < 0 {
		return fmt.Errorf("negative worker count %d", c.Rendering.Workers)
	} else if c.Rendering.BudgetMS < 0 {
		return fmt.Errorf("negative budget %dms", c.Rendering.BudgetMS)
	}
	c.Budget = time.Duration(c.Rendering.BudgetMS) * time.Millisecond

	c.Presets = nil
	if lib := c.Editing.PresetLibrary; lib != "" {
		if !filepath.IsAbs(lib) && c.baseDir != "" {
			lib = filepath.Join(c.baseDir, lib)
		}
		if c.Presets, err = effects.LoadLibrary(lib); err != nil {
			return err
		}
	}

	p := effects.DefaultParams()
	if p.Preset, err = effects.FindPreset(c.Editing.Preset, c.Presets); err != nil {
		return err
	}
	if err := effects.CheckIntensity(c.Editing.Intensity); err != nil {
		return err
	}
	p.Intensity = c.Editing.Intensity
	for name, v := range c.Editing.Adjustments {
		a, err := effects.ParseAdjustment(name)
		if err != nil {
			return err
		}
		if err := a.Check(v); err != nil {
			return err
		}
		p.Set(a, v)
	}
	c.Params = p
	return nil
}

// AsYaml renders the user facing part of the configuration.
func (c Configuration) AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("# marshal error: %v\n", err)
	}
	return string(b)
}
