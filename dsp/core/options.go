package core

import (
	"errors"
	"fmt"
	"math"
)

// DefaultBendRangeSemitones is the pitch-bend full-scale deflection.
// A bend value of -8192 lowers the pitch by this many semitones and
// +8191 raises it by (almost) the same amount.
const DefaultBendRangeSemitones = 2.0

// ErrInvalidSampleRate indicates a non-positive or non-finite sample rate.
var ErrInvalidSampleRate = errors.New("core: invalid sample rate")

// ProcessorConfig defines the synthesis settings shared by all render stages.
type ProcessorConfig struct {
	SampleRate float64
	// BlockSize is the stride at which pitch-bend multipliers are evaluated
	// exactly; samples in between are linearly interpolated.
	BlockSize int
	// FadeMs is the crossfade window at every segment join.
	FadeMs float64
	// BendRange is the bend full-scale deflection in semitones.
	BendRange float64
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the offline rendering defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 44100,
		BlockSize:  64,
		FadeMs:     10,
		BendRange:  DefaultBendRangeSemitones,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the bend evaluation block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithFadeMs sets the crossfade window length in milliseconds.
// Zero disables crossfading.
func WithFadeMs(ms float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if ms >= 0 && !math.IsInf(ms, 0) {
			cfg.FadeMs = ms
		}
	}
}

// WithBendRange sets the pitch-bend range in semitones.
func WithBendRange(semitones float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if semitones > 0 && semitones <= 48 {
			cfg.BendRange = semitones
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports whether the configuration can drive a render.
func (c ProcessorConfig) Validate() error {
	if c.SampleRate <= 0 || math.IsNaN(c.SampleRate) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("core: block size must be > 0: %d", c.BlockSize)
	}
	if c.FadeMs < 0 {
		return fmt.Errorf("core: fade must be >= 0 ms: %v", c.FadeMs)
	}
	if c.BendRange <= 0 {
		return fmt.Errorf("core: bend range must be > 0: %v", c.BendRange)
	}
	return nil
}

// FadeSamples returns the crossfade window in samples.
func (c ProcessorConfig) FadeSamples() int {
	return MsToSamples(c.FadeMs, c.SampleRate)
}
