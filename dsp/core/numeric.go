package core

import "math"

// Clamp limits value to the inclusive range [lo, hi]. Swapped bounds are
// reordered.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Min(math.Max(value, lo), hi)
}

// SecondsToSamples converts a time in seconds to the nearest sample index.
// Non-positive or non-finite inputs map to 0.
func SecondsToSamples(seconds, sampleRate float64) int {
	if !(seconds > 0) || !(sampleRate > 0) || math.IsInf(seconds, 0) {
		return 0
	}
	return int(math.Round(seconds * sampleRate))
}

// MsToSamples converts milliseconds to the nearest whole number of samples.
func MsToSamples(ms, sampleRate float64) int {
	return SecondsToSamples(ms/1000, sampleRate)
}
