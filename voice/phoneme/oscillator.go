package phoneme

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vose/dsp/core"
	"github.com/cwbudde/algo-vose/dsp/freq"
	"github.com/cwbudde/algo-vose/dsp/signal"
)

const (
	oscillatorNote    = 57 // A3
	oscillatorSeconds = 0.5
	consonantSeconds  = 0.06
	oscillatorLevel   = 0.5
	consonantLevel    = 0.25
	edgeMs            = 5.0
	noiseSeed         = 7
)

var silentLabels = map[string]bool{"pau": true, "sil": true, "br": true, "cl": true}

// Oscillator is a synthetic voice that answers every label: vowels and
// voiced sounds are a periodic waveform, plain obstruent consonants are a
// short noise burst and pause labels ("pau", "sil", "br", "cl") are silence.
type Oscillator struct {
	wave      signal.Waveform
	voiced    *Sample
	consonant *Sample
	silence   *Sample
}

// NewOscillator builds the oscillator voice at sampleRate.
func NewOscillator(sampleRate float64, wave signal.Waveform) (*Oscillator, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("phoneme: oscillator: %w: %v", core.ErrInvalidSampleRate, sampleRate)
	}

	gen := signal.NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(sampleRate)},
		signal.WithSeed(noiseSeed),
	)
	hz := freq.NoteToHz(oscillatorNote)
	edge := core.MsToSamples(edgeMs, sampleRate)

	tone, err := gen.Periodic(wave, hz, oscillatorLevel, core.SecondsToSamples(oscillatorSeconds, sampleRate))
	if err != nil {
		return nil, fmt.Errorf("phoneme: oscillator: %w", err)
	}
	signal.FadeEdges(tone, edge)

	noise, err := gen.WhiteNoise(consonantLevel, core.SecondsToSamples(consonantSeconds, sampleRate))
	if err != nil {
		return nil, fmt.Errorf("phoneme: oscillator: %w", err)
	}
	signal.FadeEdges(noise, edge)

	return &Oscillator{
		wave:      wave,
		voiced:    &Sample{Data: tone, SampleRate: sampleRate, RecordedHz: hz},
		consonant: &Sample{Data: noise, SampleRate: sampleRate},
		silence:   &Sample{Data: make([]float64, len(noise)), SampleRate: sampleRate},
	}, nil
}

// Waveform returns the oscillator shape.
func (o *Oscillator) Waveform() signal.Waveform {
	return o.wave
}

// Lookup implements Source. Only the empty label is unknown.
func (o *Oscillator) Lookup(label string) (*Sample, error) {
	var base *Sample
	switch {
	case label == "":
		return nil, unknown(label)
	case silentLabels[strings.ToLower(label)]:
		base = o.silence
	case isObstruent(label):
		base = o.consonant
	default:
		base = o.voiced
	}
	s := *base
	s.Label = label
	return &s, nil
}

func isObstruent(label string) bool {
	for _, r := range strings.ToLower(label) {
		if !strings.ContainsRune("bcdfghjkpqstvxz", r) {
			return false
		}
	}
	return true
}
