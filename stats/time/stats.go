// Package time computes time-domain statistics of rendered audio.
package time

import "math"

// Stats holds time-domain signal statistics.
//
//nolint:revive
type Stats struct {
	Length        int
	DC            float64 // mean
	RMS           float64
	RMS_dB        float64
	Peak          float64 // max |x|
	PeakPos       int
	Peak_dB       float64
	CrestFactor   float64 // peak / RMS (linear)
	Clipped       int     // samples with |x| > 1
	MaxDelta      float64 // max |x[i] - x[i-1]|
	ZeroCrossings int
}

// ampTodB converts an amplitude value to decibels: 20 * log10(|value|).
// Returns -Inf for zero values.
func ampTodB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(a)
}

// Calculate computes all statistics in a single pass.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{RMS_dB: math.Inf(-1), Peak_dB: math.Inf(-1)}
	}

	var (
		sum, sumSq    float64
		peak          float64
		peakPos       int
		clipped       int
		maxDelta      float64
		zeroCrossings int
	)

	for i, x := range signal {
		sum += x
		sumSq += x * x

		a := math.Abs(x)
		if a > peak {
			peak = a
			peakPos = i
		}
		if a > 1 {
			clipped++
		}

		if i > 0 {
			maxDelta = math.Max(maxDelta, math.Abs(x-signal[i-1]))
			if signal[i-1]*x < 0 {
				zeroCrossings++
			}
		}
	}

	rms := math.Sqrt(sumSq / float64(n))

	var crest float64
	if rms > 0 {
		crest = peak / rms
	}

	return Stats{
		Length:        n,
		DC:            sum / float64(n),
		RMS:           rms,
		RMS_dB:        ampTodB(rms),
		Peak:          peak,
		PeakPos:       peakPos,
		Peak_dB:       ampTodB(peak),
		CrestFactor:   crest,
		Clipped:       clipped,
		MaxDelta:      maxDelta,
		ZeroCrossings: zeroCrossings,
	}
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	var peak float64
	for _, x := range signal {
		peak = math.Max(peak, math.Abs(x))
	}

	return peak
}

// MaxDelta returns the largest absolute difference between consecutive
// samples, the usual measure for clicks at segment joins.
func MaxDelta(signal []float64) float64 {
	var d float64
	for i := 1; i < len(signal); i++ {
		d = math.Max(d, math.Abs(signal[i]-signal[i-1]))
	}

	return d
}
