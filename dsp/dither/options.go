package dither

import (
	"fmt"
	"math"
)

const (
	defaultBitDepth        = 16
	defaultDitherAmplitude = 1.0
	minBitDepth            = 8
	maxBitDepth            = 32
)

type config struct {
	bitDepth        int
	ditherType      DitherType
	ditherAmplitude float64
	limit           bool
	shaper          NoiseShaper
	seed            uint64
}

func defaultConfig() config {
	return config{
		bitDepth:        defaultBitDepth,
		ditherType:      DitherTriangular,
		ditherAmplitude: defaultDitherAmplitude,
		limit:           true,
		shaper:          NewFIRShaper(Preset9FC.Coefficients()),
		seed:            1,
	}
}

// Option configures a [Quantizer].
type Option func(*config) error

// WithBitDepth sets the target bit depth (8-32, default 16).
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		if bits < minBitDepth || bits > maxBitDepth {
			return fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", minBitDepth, maxBitDepth, bits)
		}
		cfg.bitDepth = bits
		return nil
	}
}

// WithDitherType sets the dither noise PDF (default [DitherTriangular]).
func WithDitherType(dt DitherType) Option {
	return func(cfg *config) error {
		if !dt.Valid() {
			return fmt.Errorf("dither: invalid dither type: %d", dt)
		}
		cfg.ditherType = dt
		return nil
	}
}

// WithDitherAmplitude sets the dither amplitude in LSB (default 1.0).
func WithDitherAmplitude(amp float64) Option {
	return func(cfg *config) error {
		if amp < 0 || math.IsNaN(amp) || math.IsInf(amp, 0) {
			return fmt.Errorf("dither: amplitude must be >= 0 and finite: %f", amp)
		}
		cfg.ditherAmplitude = amp
		return nil
	}
}

// WithLimit enables or disables clamping to the bit-depth range (default true).
func WithLimit(enabled bool) Option {
	return func(cfg *config) error {
		cfg.limit = enabled
		return nil
	}
}

// WithNoiseShaper sets a custom [NoiseShaper].
func WithNoiseShaper(ns NoiseShaper) Option {
	return func(cfg *config) error {
		if ns == nil {
			ns = NewFIRShaper(nil)
		}
		cfg.shaper = ns
		return nil
	}
}

// WithFIRPreset selects a predefined shaping filter (default [Preset9FC]).
func WithFIRPreset(p Preset) Option {
	return func(cfg *config) error {
		if !p.Valid() {
			return fmt.Errorf("dither: invalid preset: %d", p)
		}
		cfg.shaper = NewFIRShaper(p.Coefficients())
		return nil
	}
}

// WithSeed seeds the dither noise generator. Equal seeds give equal output
// for equal input.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}
