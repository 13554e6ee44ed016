// Package testutil holds signal fixtures and assertions shared by tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates amplitude*sin(2*pi*freqHz*i/sampleRate).
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	return ShiftedSine(freqHz, sampleRate, amplitude, 0, 0, length)
}

// ShiftedSine generates a sine starting at phase (radians) on top of a DC
// offset, so that its first and last samples are distinguishable from zero.
func ShiftedSine(freqHz, sampleRate, amplitude, phase, offset float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = offset + amplitude*math.Sin(step*float64(i)+phase)
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// CrossingHz estimates the frequency of a zero-mean periodic signal from
// its upward zero crossings, measured between the first and the last.
func CrossingHz(data []float64, sampleRate float64) float64 {
	first, last, count := -1.0, -1.0, 0
	for i := 1; i < len(data); i++ {
		if data[i-1] < 0 && data[i] >= 0 {
			// Sub-sample position of the crossing.
			x := float64(i-1) + data[i-1]/(data[i-1]-data[i])
			if first < 0 {
				first = x
			}
			last = x
			count++
		}
	}
	if count < 2 {
		return 0
	}
	return float64(count-1) * sampleRate / (last - first)
}
