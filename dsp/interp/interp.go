package interp

import "math"

// Mode selects the fractional read algorithm.
type Mode int

const (
	// ModeLinear interpolates between the two bracketing samples.
	ModeLinear Mode = iota
	// ModeHermite uses 4-point cubic Hermite interpolation.
	ModeHermite
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeHermite:
		return "hermite"
	default:
		return "linear"
	}
}

// ParseMode maps a configuration name to a Mode. Unknown names select linear.
func ParseMode(name string) Mode {
	if name == "hermite" || name == "cubic" {
		return ModeHermite
	}
	return ModeLinear
}

// Linear2 interpolates from x0 to x1 at frac in [0,1].
func Linear2(frac, x0, x1 float64) float64 {
	return x0 + frac*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// At reads src at the fractional position pos. Positions outside the
// buffer clamp to the first or last sample; Hermite neighbours past the
// edges repeat the edge sample.
func At(src []float64, pos float64, mode Mode) float64 {
	n := len(src)
	if n == 0 {
		return 0
	}
	if pos <= 0 {
		return src[0]
	}
	last := float64(n - 1)
	if pos >= last {
		return src[n-1]
	}

	i := int(math.Floor(pos))
	frac := pos - float64(i)
	if frac == 0 {
		return src[i]
	}
	if mode != ModeHermite {
		return Linear2(frac, src[i], src[i+1])
	}

	xm1 := src[max(i-1, 0)]
	x2 := src[min(i+2, n-1)]
	return Hermite4(frac, xm1, src[i], src[i+1], x2)
}
