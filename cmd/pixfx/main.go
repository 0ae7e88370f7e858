package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/soypat/pixfx"
	"github.com/soypat/pixfx/config"
	"github.com/soypat/pixfx/effects"
	"github.com/soypat/pixfx/filters"
	"github.com/soypat/pixfx/histogram"
	"github.com/soypat/pixfx/imageio"
	"github.com/soypat/pixfx/pipeline"
)

var (
	fVerbosity   int
	fConfig      string
	fPreset      string
	fLibrary     string
	fIntensity   float64
	fContrast    float64
	fExposure    float64
	fSaturation  float64
	fTemperature float64
	fOutputDir   string
	fFormat      string
	fName        string
	fHistogram   string
	fThumbsDir   string
	fPreview     bool
	fWorkers     int
	fGPU         bool
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get (0 warn, 1 info, 2 debug)")
	flag.StringVar(&fConfig, "config", "", "YAML session configuration file")
	flag.StringVar(&fPreset, "preset", "", "preset name: "+presetNames())
	flag.StringVar(&fLibrary, "library", "", "YAML file with custom presets")
	flag.Float64Var(&fIntensity, "intensity", effects.MaxIntensity, "preset intensity 0..100")
	flag.Float64Var(&fContrast, "contrast", effects.Contrast.Neutral(), "contrast 0.5..1.5")
	flag.Float64Var(&fExposure, "exposure", effects.Exposure.Neutral(), "exposure -0.5..0.5")
	flag.Float64Var(&fSaturation, "saturation", effects.Saturation.Neutral(), "saturation 0..2")
	flag.Float64Var(&fTemperature, "temperature", effects.Temperature.Neutral(), "temperature -1..1")
	flag.StringVar(&fOutputDir, "o", "", "output directory")
	flag.StringVar(&fFormat, "format", "", "output format: jpeg, png or tiff")
	flag.StringVar(&fName, "name", "", "suggested output name")
	flag.StringVar(&fHistogram, "hist", "", "write a histogram plot of the result to this PNG file")
	flag.StringVar(&fThumbsDir, "thumbs", "", "write one thumbnail per preset into this directory")
	flag.BoolVar(&fPreview, "preview", false, "also render a downscaled preview through the live renderer")
	flag.IntVar(&fWorkers, "workers", 0, "goroutines per transform, 0 for GOMAXPROCS")
	flag.BoolVar(&fGPU, "gpu", false, "apply color matrices with WebGPU compute, falling back to the CPU")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: pixfx [flags] image\n")
		flag.PrintDefaults()
	}
}

func presetNames() string {
	var names []string
	for _, id := range effects.PresetIDs() {
		names = append(names, id.String())
	}
	return strings.Join(names, ", ")
}

func main() {
	flag.Parse()
	level := slog.LevelWarn
	switch {
	case fVerbosity >= 2:
		level = slog.LevelDebug
	case fVerbosity == 1:
		level = slog.LevelInfo
	}
	pixfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(context.Background(), flag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, filename string) error {
	cfg := config.NewConfiguration()
	if fConfig != "" {
		var err error
		if cfg, err = config.LoadConfiguration(fConfig); err != nil {
			return err
		}
	}
	if err := applyFlags(&cfg); err != nil {
		return err
	}
	if fVerbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", cfg.AsYaml())
	}

	src, meta, err := imageio.Load(filename)
	if err != nil {
		return err
	}
	pixfx.Logger().Info("source loaded", "file", filename, "format", meta.Format, "model", meta.Model)

	var ap pipeline.Applier = filters.Transformer{Workers: cfg.Rendering.Workers}
	if fGPU {
		gpu, release, err := openGPU()
		if err != nil {
			pixfx.Logger().Warn("gpu unavailable, using cpu", "err", err)
		} else {
			defer release()
			ap = gpu
		}
	}
	if fPreview {
		if err := preview(ctx, cfg, src, ap); err != nil {
			return err
		}
	}

	sink := &imageio.FileSink{Dir: cfg.Output.Dir, Format: cfg.Format, Quality: cfg.Output.Quality}
	location, res, err := pipeline.Export(ctx, sink, src, cfg.Params, cfg.Output.Name, ap)
	if err != nil {
		return err
	}
	log.Printf("output written '%s'\n", location)

	if fHistogram != "" {
		if err := histogram.SavePlot(&res.Histogram, fHistogram, 512, 200); err != nil {
			return fmt.Errorf("histogram plot: %w", err)
		}
	}

	if fThumbsDir != "" {
		presets := append(effects.BuiltinPresets(), cfg.Presets...)
		thumbs, err := pipeline.Thumbnails(ctx, src, presets, 128)
		if err != nil {
			return err
		}
		thumbSink := &imageio.FileSink{Dir: fThumbsDir, Format: imageio.FormatPNG}
		for i, thumb := range thumbs {
			if _, err := thumbSink.Save(ctx, thumb, thumbName(presets[i].Name)); err != nil {
				return fmt.Errorf("%w: %w", pixfx.ErrPersistence, err)
			}
		}
	}
	return nil
}

// applyFlags overrides the configuration with flags given explicitly on the command line.
func applyFlags(cfg *config.Configuration) error {
	values := map[string]float64{
		"contrast":    fContrast,
		"exposure":    fExposure,
		"saturation":  fSaturation,
		"temperature": fTemperature,
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "preset":
			cfg.Editing.Preset = fPreset
		case "library":
			// Flags are relative to the working directory, not the config file.
			if abs, err := filepath.Abs(fLibrary); err == nil {
				cfg.Editing.PresetLibrary = abs
			} else {
				cfg.Editing.PresetLibrary = fLibrary
			}
		case "intensity":
			cfg.Editing.Intensity = fIntensity
		case "o":
			cfg.Output.Dir = fOutputDir
		case "format":
			cfg.Output.Format = fFormat
		case "name":
			cfg.Output.Name = fName
		case "workers":
			cfg.Rendering.Workers = fWorkers
		}
		if v, ok := values[f.Name]; ok {
			if cfg.Editing.Adjustments == nil {
				cfg.Editing.Adjustments = make(map[string]float64)
			}
			for k := range cfg.Editing.Adjustments {
				if strings.EqualFold(k, f.Name) {
					delete(cfg.Editing.Adjustments, k)
				}
			}
			cfg.Editing.Adjustments[f.Name] = v
		}
	})
	return cfg.FinalizeConfiguration()
}

// preview runs the live renderer once on a downscaled source, the way an
// interactive editor would on every slider change.
func preview(ctx context.Context, cfg config.Configuration, src *pixfx.Buffer, ap pipeline.Applier) error {
	small := imageio.Downscale(src, cfg.Rendering.PreviewMaxDim)
	r, err := pipeline.NewRenderer(small, pipeline.Options{Applier: ap, Budget: cfg.Budget})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	seq := r.Submit(cfg.Params)
	for res := range r.Results() {
		if res.Err != nil {
			return res.Err
		}
		if res.Seq != seq {
			continue
		}
		sink := &imageio.FileSink{Dir: cfg.Output.Dir, Format: imageio.FormatPNG}
		if _, err := sink.Save(ctx, res.Image, cfg.Output.Name+"-preview"); err != nil {
			return fmt.Errorf("%w: %w", pixfx.ErrPersistence, err)
		}
		break
	}
	cancel()
	<-done
	s := r.Latency().Summary()
	log.Printf("preview renders %d, p50 %v, p99 %v\n", s.Count, s.P50, s.P99)
	return nil
}

func openGPU() (*filters.ColorMatrixGPU, func(), error) {
	device, queue, releaseDevice, err := filters.OpenDevice()
	if err != nil {
		return nil, nil, err
	}
	f, err := filters.NewColorMatrixGPU(device, queue)
	if err != nil {
		releaseDevice()
		return nil, nil, err
	}
	return f, func() {
		f.Cleanup()
		releaseDevice()
	}, nil
}

func thumbName(preset string) string {
	return "thumb-" + strings.NewReplacer("&", "", " ", "_", string(filepath.Separator), "_").Replace(strings.ToLower(preset))
}
