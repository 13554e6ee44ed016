// Package config loads the vose command configuration: defaults, then an
// optional YAML file, then VOSE_* environment variables (a .env file in the
// working directory is read first when present).
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-vose/dsp/core"
	"github.com/cwbudde/algo-vose/dsp/crossfade"
	"github.com/cwbudde/algo-vose/dsp/dither"
	"github.com/cwbudde/algo-vose/dsp/interp"
	"github.com/cwbudde/algo-vose/dsp/resample"
	"github.com/cwbudde/algo-vose/dsp/signal"
	"github.com/cwbudde/algo-vose/voice/render"
	"github.com/cwbudde/algo-vose/voice/wavio"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VOSE"

type VoiceConfig struct {
	// Bank is a voice bank directory; empty selects the oscillator voice.
	Bank            string `yaml:"bank" split_words:"true"`
	Waveform        string `yaml:"waveform" split_words:"true"`
	ResampleQuality string `yaml:"resample_quality" split_words:"true"`
}

type RenderConfig struct {
	FadeMs        float64 `yaml:"fade_ms" split_words:"true"`
	BendRange     float64 `yaml:"bend_range" split_words:"true"`
	BlockSize     int     `yaml:"block_size" split_words:"true"`
	Stretch       string  `yaml:"stretch" split_words:"true"`
	Interpolation string  `yaml:"interpolation" split_words:"true"`
	Crossfade     string  `yaml:"crossfade" split_words:"true"`
	LeadMaxRatio  float64 `yaml:"lead_max_ratio" split_words:"true"`
}

type OutputConfig struct {
	BitDepth int    `yaml:"bit_depth" split_words:"true"`
	Dither   string `yaml:"dither" split_words:"true"`
	Shaping  string `yaml:"shaping" split_words:"true"`
	Seed     uint64 `yaml:"seed" split_words:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level" split_words:"true"`
	Pretty bool   `yaml:"pretty" split_words:"true"`
}

type MetricsConfig struct {
	// Textfile receives node-exporter formatted metrics after each run.
	Textfile string `yaml:"textfile" split_words:"true"`
}

type Config struct {
	SampleRate int           `yaml:"sample_rate" split_words:"true"`
	Voice      VoiceConfig   `yaml:"voice" split_words:"true"`
	Render     RenderConfig  `yaml:"render" split_words:"true"`
	Output     OutputConfig  `yaml:"output" split_words:"true"`
	Log        LogConfig     `yaml:"log" split_words:"true"`
	Metrics    MetricsConfig `yaml:"metrics" split_words:"true"`
}

func Default() Config {
	proc := core.DefaultProcessorConfig()
	ro := render.DefaultOptions()
	wo := wavio.DefaultOptions()
	return Config{
		SampleRate: int(proc.SampleRate),
		Voice: VoiceConfig{
			Waveform:        signal.WaveSine.String(),
			ResampleQuality: resample.QualityBalanced.String(),
		},
		Render: RenderConfig{
			FadeMs:        proc.FadeMs,
			BendRange:     proc.BendRange,
			BlockSize:     proc.BlockSize,
			Stretch:       ro.Stretch.String(),
			Interpolation: ro.Interpolation.String(),
			Crossfade:     ro.Curve.String(),
			LeadMaxRatio:  ro.LeadMaxRatio,
		},
		Output: OutputConfig{
			BitDepth: wo.BitDepth,
			Dither:   wo.Dither.String(),
			Shaping:  wo.Shaping.String(),
			Seed:     wo.Seed,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks ranges and that every named mode exists.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be > 0: %d", c.SampleRate)
	}
	if err := core.ApplyProcessorOptions(c.ProcessorOptions()...).Validate(); err != nil {
		return err
	}
	if c.Render.FadeMs < 0 || c.Render.BendRange <= 0 || c.Render.BlockSize <= 0 {
		return errors.New("render: fade_ms must be >= 0, bend_range and block_size > 0")
	}
	if _, err := c.RenderOptions(); err != nil {
		return err
	}
	if _, err := c.SinkOptions(); err != nil {
		return err
	}
	if _, err := c.Waveform(); err != nil {
		return err
	}
	if _, err := resample.ParseQuality(c.Voice.ResampleQuality); err != nil {
		return err
	}
	return nil
}

// ProcessorOptions returns the renderer's sample-rate independent settings.
func (c Config) ProcessorOptions() []core.ProcessorOption {
	return []core.ProcessorOption{
		core.WithSampleRate(float64(c.SampleRate)),
		core.WithFadeMs(c.Render.FadeMs),
		core.WithBendRange(c.Render.BendRange),
		core.WithBlockSize(c.Render.BlockSize),
	}
}

// RenderOptions parses the render section.
func (c Config) RenderOptions() (render.Options, error) {
	o := render.DefaultOptions()
	var err error
	if o.Stretch, err = render.ParseStretch(c.Render.Stretch); err != nil {
		return o, err
	}
	if o.Curve, err = crossfade.ParseCurve(c.Render.Crossfade); err != nil {
		return o, err
	}
	o.Interpolation = interp.ParseMode(c.Render.Interpolation)
	o.LeadMaxRatio = c.Render.LeadMaxRatio
	return o, o.Validate()
}

// SinkOptions parses the output section.
func (c Config) SinkOptions() ([]wavio.Option, error) {
	dt, err := dither.ParseDitherType(c.Output.Dither)
	if err != nil {
		return nil, err
	}
	shaping, err := dither.ParsePreset(c.Output.Shaping)
	if err != nil {
		return nil, err
	}
	switch c.Output.BitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("output: bit_depth must be 16, 24 or 32: %d", c.Output.BitDepth)
	}
	return []wavio.Option{
		wavio.WithBitDepth(c.Output.BitDepth),
		wavio.WithDither(dt),
		wavio.WithShaping(shaping),
		wavio.WithSeed(c.Output.Seed),
	}, nil
}

// Waveform parses the oscillator waveform.
func (c Config) Waveform() (signal.Waveform, error) {
	return signal.ParseWaveform(c.Voice.Waveform)
}

// ResampleQuality parses the voice bank conversion quality.
func (c Config) ResampleQuality() resample.Quality {
	q, _ := resample.ParseQuality(c.Voice.ResampleQuality)
	return q
}
