package resample

import (
	"math"

	"github.com/cwbudde/algo-vose/dsp/crossfade"
)

// FitPeriods changes the length of a voiced buffer while keeping its pitch.
//
// Whole periods of period samples are repeated or dropped from the middle
// of src, each splice smoothed by a crossfade of up to fade samples, and the
// assembled signal is then fitted to len(dst) with Linear. The first and
// last periods are copied verbatim, so dst starts and ends on the samples of
// src. When period is below two samples, src holds fewer than three periods
// or dst is shorter than one and a half periods, FitPeriods falls back to
// Linear.
func FitPeriods(dst, src []float64, period float64, fade int) {
	p := int(math.Round(period))
	n := len(src)
	if p < 2 || n < 3*p || len(dst)*2 < 3*p || math.IsNaN(period) {
		Linear(dst, src)
		return
	}

	chunks := max(2, int(math.Round(float64(len(dst))/float64(p))))
	fade = max(0, min(fade, p))

	// Middle chunks cycle through the periods between the first and last.
	middle := max(1, int(float64(n-2*p)/period))
	offsetOf := func(j int) int {
		m := 1
		if chunks > 3 {
			m = 1 + int(math.Round(float64((j-1)*(middle-1))/float64(chunks-3)))
		}
		return min(int(math.Round(float64(m)*period)), n-2*p)
	}

	fitted := make([]float64, chunks*p)
	copy(fitted, src[:p])
	pos := p
	for j := 1; j < chunks; j++ {
		off := n - p
		if j < chunks-1 {
			off = offsetOf(j)
		}
		lead := min(fade, off)
		pos = crossfade.Apply(fitted, pos, src[off-lead:off+p], lead)
	}

	Linear(dst, fitted[:pos])
}

// Splice fits src to len(dst) without resampling it, so the material keeps
// its natural rate. A shorter dst keeps the head and the tail of src and
// drops the middle; a longer one repeats the middle half of src as often as
// needed. Every seam is smoothed by a crossfade of up to fade samples, and
// dst starts and ends on the samples of src. Inputs too short to splice
// fall back to Linear.
func Splice(dst, src []float64, fade int) {
	n, m := len(src), len(dst)
	if n < 4 || m < 2 {
		Linear(dst, src)
		return
	}
	fade = max(0, fade)

	pos := copy(dst, src[:min(n, m)/2])
	add := func(start, end int) {
		lead := min(fade, start, pos)
		pos = crossfade.Apply(dst, pos, src[start-lead:end], lead)
	}
	if m > n {
		a, b := n/4, n-n/4
		for rest := m - n; rest > 0; {
			k := min(rest, b-a)
			add(a, a+k)
			rest -= k
		}
	}
	add(n-(m-pos), n)
}

// Extend continues seg past its end into tail. Voiced material
// (2 <= period <= len(seg)) repeats its last period, reading fractional
// periods by linear interpolation; anything else holds the final sample and
// decays it linearly to zero over the tail.
func Extend(tail, seg []float64, period float64) {
	if len(tail) == 0 {
		return
	}
	if len(seg) == 0 {
		clear(tail)
		return
	}

	n := len(seg)
	if period >= 2 && period <= float64(n) {
		at := func(i int) float64 {
			if i < n {
				return seg[i]
			}
			return tail[i-n]
		}
		for i := range tail {
			x := float64(n+i) - period
			k := int(x)
			v := at(k)
			if frac := x - float64(k); frac > 0 {
				v += frac * (at(k+1) - v)
			}
			tail[i] = v
		}
		return
	}

	last := seg[n-1]
	step := 1 / float64(len(tail)+1)
	for i := range tail {
		tail[i] = last * (1 - float64(i+1)*step)
	}
}
