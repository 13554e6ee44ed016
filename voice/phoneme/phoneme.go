// Package phoneme provides recorded phoneme samples to the renderer.
//
// The renderer only depends on the Source interface. Samples returned by a
// Source are shared and must be treated as read-only; every Source in this
// package is safe for concurrent lookups once constructed.
package phoneme

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownPhoneme is returned (wrapped) when a label has no sample.
var ErrUnknownPhoneme = errors.New("phoneme: unknown phoneme")

// Sample is one recorded phoneme.
type Sample struct {
	Label      string
	Data       []float64
	SampleRate float64
	// RecordedHz is the fundamental the sample was recorded at; zero marks
	// unvoiced material.
	RecordedHz float64
}

// Voiced reports whether the sample has a known fundamental.
func (s *Sample) Voiced() bool {
	return s.RecordedHz > 0
}

// Period returns the pitch period in samples, or 0 for unvoiced material.
func (s *Sample) Period() float64 {
	if !s.Voiced() || s.SampleRate <= 0 {
		return 0
	}
	return s.SampleRate / s.RecordedHz
}

// Seconds returns the sample's duration.
func (s *Sample) Seconds() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Data)) / s.SampleRate
}

// Source looks up phoneme samples by label.
type Source interface {
	Lookup(label string) (*Sample, error)
}

func unknown(label string) error {
	return fmt.Errorf("%w: %q", ErrUnknownPhoneme, label)
}

// MapSource is an in-memory Source keyed by label.
type MapSource map[string]*Sample

// Lookup implements Source.
func (m MapSource) Lookup(label string) (*Sample, error) {
	s, ok := m[label]
	if !ok || s == nil {
		return nil, unknown(label)
	}
	return s, nil
}

// Add stores s under its label.
func (m MapSource) Add(s *Sample) {
	m[s.Label] = s
}

// Labels returns the known labels in sorted order.
func (m MapSource) Labels() []string {
	out := make([]string, 0, len(m))
	for l := range m {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
