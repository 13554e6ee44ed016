package crossfade

import (
	"fmt"

	"github.com/cwbudde/algo-vose/dsp/window"
)

// Curve selects the shape of the incoming weight ramp.
type Curve int

const (
	// CurveLinear ramps the incoming weight as i/n.
	CurveLinear Curve = iota
	// CurveRaisedCosine ramps the incoming weight along a half Hann window.
	CurveRaisedCosine
)

// String returns the configuration name of the curve.
func (c Curve) String() string {
	switch c {
	case CurveLinear:
		return "linear"
	case CurveRaisedCosine:
		return "raised-cosine"
	default:
		return fmt.Sprintf("Curve(%d)", int(c))
	}
}

// ParseCurve maps a configuration name to a Curve.
func ParseCurve(name string) (Curve, error) {
	switch name {
	case "", "linear":
		return CurveLinear, nil
	case "raised-cosine", "cosine", "hann":
		return CurveRaisedCosine, nil
	default:
		return CurveLinear, fmt.Errorf("crossfade: unknown curve %q", name)
	}
}

// Weights returns the incoming weights of an n-sample fade. The outgoing
// weight of sample i is 1 - w[i].
func Weights(n int, curve Curve) []float64 {
	if curve == CurveRaisedCosine {
		return window.Rise(window.TypeHann, n)
	}
	return window.Rise(window.TypeTriangle, n)
}

// Apply blends seg into out at a join.
//
// The window [pos-fade, pos) of out, which must already hold the earlier
// material, is mixed with seg[:fade] using a linear ramp; seg[fade:] is then
// written unblended starting at pos. fade is clamped to min(pos, len(seg)),
// and writes past the end of out are dropped. Apply returns the index one
// past the last sample of seg in out's coordinates (which may exceed len(out)).
func Apply(out []float64, pos int, seg []float64, fade int) int {
	return apply(out, pos, seg, ClampFade(fade, pos, len(seg)), nil)
}

// ClampFade limits a requested fade to what the join can provide.
func ClampFade(fade, pos, segLen int) int {
	return max(0, min(fade, pos, segLen))
}

// Fader applies crossfades with a fixed curve and caches the weight ramp
// for the most recent fade length. A Fader is not safe for concurrent use.
type Fader struct {
	curve   Curve
	weights []float64
}

// NewFader returns a Fader using curve.
func NewFader(curve Curve) *Fader {
	return &Fader{curve: curve}
}

// Curve returns the fader's curve.
func (f *Fader) Curve() Curve {
	return f.curve
}

// Apply is like the package-level Apply but uses the fader's curve.
func (f *Fader) Apply(out []float64, pos int, seg []float64, fade int) int {
	fade = ClampFade(fade, pos, len(seg))
	if fade > 0 && len(f.weights) != fade {
		f.weights = Weights(fade, f.curve)
	}
	return apply(out, pos, seg, fade, f.weights)
}

func apply(out []float64, pos int, seg []float64, fade int, weights []float64) int {
	start := pos - fade
	for i := 0; i < fade; i++ {
		j := start + i
		if j >= len(out) {
			break
		}
		var w float64
		if weights != nil {
			w = weights[i]
		} else {
			w = float64(i) / float64(fade)
		}
		out[j] = out[j]*(1-w) + seg[i]*w
	}
	if pos < len(out) && fade < len(seg) {
		copy(out[pos:], seg[fade:])
	}
	return pos + len(seg) - fade
}
