package resample

import (
	"math"

	"github.com/cwbudde/algo-vose/dsp/interp"
)

// Linear fills dst by linearly interpolating src across its whole length.
//
// Output index i reads source position i*(len(src)-1)/(len(dst)-1), so the
// first and last samples of dst equal the first and last samples of src.
// A single-sample src fills dst with that value, an empty src yields
// silence, a single-sample dst receives src[0] and an empty dst is a no-op.
func Linear(dst, src []float64) {
	switch {
	case len(dst) == 0:
		return
	case len(src) == 0:
		clear(dst)
		return
	case len(src) == 1:
		for i := range dst {
			dst[i] = src[0]
		}
		return
	case len(dst) == 1:
		dst[0] = src[0]
		return
	}

	last := len(src) - 1
	scale := float64(last) / float64(len(dst)-1)
	for i := range dst {
		p := float64(i) * scale
		k := int(p)
		if k >= last {
			dst[i] = src[last]
			continue
		}
		dst[i] = interp.Linear2(p-float64(k), src[k], src[k+1])
	}
	dst[len(dst)-1] = src[last]
}

// Warp reads src at a variable rate: output sample i+1 lies steps[i] source
// samples after output sample i. The accumulated positions are rescaled so
// that the read spans src exactly, which keeps Linear's endpoint guarantees;
// only the relative step sizes matter. steps needs len(dst)-1 entries; a
// short or nil steps slice is extended with its last value (or 1).
// Negative steps count as zero. With constant steps Warp matches Linear up
// to rounding.
func Warp(dst, src, steps []float64, mode interp.Mode) {
	if len(dst) <= 1 || len(src) <= 1 {
		Linear(dst, src)
		return
	}

	stepAt := func(i int) float64 {
		switch {
		case i < len(steps):
			return math.Max(0, steps[i])
		case len(steps) > 0:
			return math.Max(0, steps[len(steps)-1])
		default:
			return 1
		}
	}

	var total float64
	for i := 0; i < len(dst)-1; i++ {
		total += stepAt(i)
	}
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		Linear(dst, src)
		return
	}

	scale := float64(len(src)-1) / total
	pos := 0.0
	dst[0] = src[0]
	for i := 1; i < len(dst)-1; i++ {
		pos += stepAt(i - 1)
		dst[i] = interp.At(src, pos*scale, mode)
	}
	dst[len(dst)-1] = src[len(src)-1]
}

// Consumed returns how many source samples a Warp with these steps would
// span when reading src at its natural rate: round(sum(steps[:n-1])) + 1.
func Consumed(steps []float64, n int) int {
	if n <= 0 {
		return 0
	}
	var total float64
	for i := 0; i < n-1 && i < len(steps); i++ {
		total += math.Max(0, steps[i])
	}
	return int(math.Round(total)) + 1
}
