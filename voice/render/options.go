package render

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-vose/dsp/buffer"
	"github.com/cwbudde/algo-vose/dsp/crossfade"
	"github.com/cwbudde/algo-vose/dsp/interp"
)

// Stretch selects how a segment's duration is changed.
type Stretch int

const (
	// StretchPitchSync repeats or drops whole pitch periods of voiced
	// samples, so the timbre keeps its period structure.
	StretchPitchSync Stretch = iota
	// StretchLinear splices voiced samples at arbitrary points, repeating
	// or dropping their middle with crossfaded seams.
	StretchLinear
)

// String returns the configuration name of the mode.
func (s Stretch) String() string {
	if s == StretchLinear {
		return "linear"
	}
	return "pitch-sync"
}

// ParseStretch maps a configuration name to a Stretch.
func ParseStretch(name string) (Stretch, error) {
	switch name {
	case "", "pitch-sync":
		return StretchPitchSync, nil
	case "linear":
		return StretchLinear, nil
	default:
		return StretchPitchSync, fmt.Errorf("render: unknown stretch mode %q", name)
	}
}

// Options are the renderer settings that do not depend on the sample rate.
type Options struct {
	Stretch       Stretch
	Interpolation interp.Mode
	// LeadMaxRatio caps the share of a note taken by all phonemes but the
	// last; the last phoneme always fills the remainder.
	LeadMaxRatio float64
	Curve        crossfade.Curve
}

// DefaultOptions returns pitch-synchronous stretching, linear reads, a
// leading-phoneme cap of half the note and a linear crossfade.
func DefaultOptions() Options {
	return Options{
		Stretch:       StretchPitchSync,
		Interpolation: interp.ModeLinear,
		LeadMaxRatio:  0.5,
		Curve:         crossfade.CurveLinear,
	}
}

// Validate reports settings the renderer cannot honour.
func (o Options) Validate() error {
	if o.Stretch != StretchPitchSync && o.Stretch != StretchLinear {
		return fmt.Errorf("render: stretch mode %d", int(o.Stretch))
	}
	if o.Curve != crossfade.CurveLinear && o.Curve != crossfade.CurveRaisedCosine {
		return fmt.Errorf("render: crossfade curve %d", int(o.Curve))
	}
	if math.IsNaN(o.LeadMaxRatio) || o.LeadMaxRatio < 0 || o.LeadMaxRatio >= 1 {
		return fmt.Errorf("render: lead ratio %v outside [0, 1)", o.LeadMaxRatio)
	}
	return nil
}

type settings struct {
	Options
	logger zerolog.Logger
	pool   *buffer.Pool
}

// Option configures a Renderer.
type Option func(*settings)

// WithOptions replaces all rendering settings at once.
func WithOptions(o Options) Option {
	return func(s *settings) { s.Options = o }
}

// WithStretch sets the stretch mode.
func WithStretch(m Stretch) Option {
	return func(s *settings) { s.Stretch = m }
}

// WithInterpolation sets the fractional read used when warping segments.
func WithInterpolation(m interp.Mode) Option {
	return func(s *settings) { s.Interpolation = m }
}

// WithLeadMaxRatio sets the leading-phoneme cap.
func WithLeadMaxRatio(r float64) Option {
	return func(s *settings) { s.LeadMaxRatio = r }
}

// WithCurve sets the crossfade curve.
func WithCurve(c crossfade.Curve) Option {
	return func(s *settings) { s.Curve = c }
}

// WithLogger sets the logger for per-note debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithPool shares a scratch buffer pool with the renderer.
func WithPool(p *buffer.Pool) Option {
	return func(s *settings) {
		if p != nil {
			s.pool = p
		}
	}
}
