package signal

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-vose/dsp/core"
)

func TestPeriodicShapes(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(8))
	tests := []struct {
		w    Waveform
		want []float64
	}{
		{WaveSquare, []float64{1, 1, 1, 1, -1, -1, -1, -1}},
		{WaveSawtooth, []float64{0, 0.25, 0.5, 0.75, -1, -0.75, -0.5, -0.25}},
		{WaveTriangle, []float64{0, 0.5, 1, 0.5, 0, -0.5, -1, -0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.w.String(), func(t *testing.T) {
			x, err := g.Periodic(tt.w, 1, 1, 8)
			if err != nil {
				t.Fatalf("Periodic() error = %v", err)
			}
			for i := range tt.want {
				if math.Abs(x[i]-tt.want[i]) > 1e-12 {
					t.Fatalf("x = %v, want %v", x, tt.want)
				}
			}
		})
	}
}

func TestPeriodicValidation(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(1000))
	if _, err := g.Periodic(WaveSine, 600, 1, 10); err == nil {
		t.Fatal("expected error above Nyquist")
	}
	if _, err := g.Periodic(WaveSine, 0, 1, 10); err == nil {
		t.Fatal("expected error for zero frequency")
	}
	if _, err := g.Periodic(WaveSine, 10, 1, 0); err == nil {
		t.Fatal("expected error for zero samples")
	}
}

func TestParseWaveform(t *testing.T) {
	tests := []struct {
		in   string
		want Waveform
		ok   bool
	}{
		{"", WaveSine, true},
		{"Square", WaveSquare, true},
		{"saw", WaveSawtooth, true},
		{"triangle", WaveTriangle, true},
		{"pulse", WaveSine, false},
	}
	for _, tt := range tests {
		got, err := ParseWaveform(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseWaveform(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestWhiteNoiseDeterministic(t *testing.T) {
	g1 := NewGeneratorWithOptions(nil, WithSeed(42))
	g2 := NewGeneratorWithOptions(nil, WithSeed(42))
	a, _ := g1.WhiteNoise(0.5, 64)
	b, _ := g2.WhiteNoise(0.5, 64)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs", i)
		}
		if math.Abs(a[i]) > 0.5 {
			t.Fatalf("sample %d out of range: %v", i, a[i])
		}
	}
}

func TestFadeEdges(t *testing.T) {
	x := []float64{1, 1, 1, 1, 1, 1}
	FadeEdges(x, 2)
	want := []float64{0, 0.5, 1, 1, 0.5, 0}
	for i := range want {
		if x[i] != want[i] {
			t.Fatalf("FadeEdges() = %v, want %v", x, want)
		}
	}
}
