package signal

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/cwbudde/algo-vose/dsp/core"
)

// Waveform selects a periodic oscillator shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
)

var waveformNames = []string{"sine", "square", "sawtooth", "triangle"}

// String returns the configuration name of the waveform.
func (w Waveform) String() string {
	if w >= 0 && int(w) < len(waveformNames) {
		return waveformNames[w]
	}
	return fmt.Sprintf("Waveform(%d)", int(w))
}

// ParseWaveform maps a configuration name to a Waveform.
func ParseWaveform(name string) (Waveform, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return WaveSine, nil
	}
	if name == "saw" {
		return WaveSawtooth, nil
	}
	for i, n := range waveformNames {
		if n == name {
			return Waveform(i), nil
		}
	}
	return WaveSine, fmt.Errorf("signal: unknown waveform %q", name)
}

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a configured signal generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Periodic generates samples of waveform w at freqHz, starting at phase zero.
// Square and sawtooth are naive (not band-limited) shapes.
func (g *Generator) Periodic(w Waveform, freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("%s samples must be > 0: %d", w, samples)
	}
	if g.cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("%s sample rate must be > 0: %f", w, g.cfg.SampleRate)
	}
	if freqHz <= 0 || freqHz >= g.cfg.SampleRate/2 {
		return nil, fmt.Errorf("%s frequency must be in (0, %g): %f", w, g.cfg.SampleRate/2, freqHz)
	}

	out := make([]float64, samples)
	cycles := freqHz / g.cfg.SampleRate
	for i := range out {
		_, phase := math.Modf(cycles * float64(i))
		out[i] = amplitude * shape(w, phase)
	}
	return out, nil
}

// shape evaluates one cycle of w at phase in [0, 1).
func shape(w Waveform, phase float64) float64 {
	switch w {
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveSawtooth:
		if phase < 0.5 {
			return 2 * phase
		}
		return 2*phase - 2
	case WaveTriangle:
		switch {
		case phase < 0.25:
			return 4 * phase
		case phase < 0.75:
			return 2 - 4*phase
		default:
			return 4*phase - 4
		}
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// FadeEdges applies linear fade-in and fade-out ramps of n samples in place.
func FadeEdges(data []float64, n int) {
	n = min(n, len(data)/2)
	for i := 0; i < n; i++ {
		g := float64(i) / float64(n)
		data[i] *= g
		data[len(data)-1-i] *= g
	}
}
