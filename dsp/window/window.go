package window

import (
	"errors"
	"fmt"
	"math"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeTriangle
	TypeKaiser
)

// ErrInvalidParameter is returned for empty windows and negative Kaiser beta.
var ErrInvalidParameter = errors.New("window: invalid parameter")

// Option configures window generation.
type Option func(*config)

type config struct {
	beta     float64
	periodic bool
}

// WithBeta sets the Kaiser shape parameter. Negative values are ignored.
func WithBeta(v float64) Option {
	return func(c *config) {
		if v >= 0 {
			c.beta = v
		}
	}
}

// WithPeriodic selects the periodic form instead of the symmetric one.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}
	cfg := applyOptions(opts)

	out := make([]float64, length)
	for i := range out {
		out[i] = eval(t, position(i, length, cfg.periodic), cfg)
	}
	return out
}

// Rise returns the rising half of window t sampled at n points:
// element i evaluates the window at relative position i/(2n), so the
// curve starts at the window edge and approaches its centre value (1)
// one step past the end. TypeTriangle yields the linear ramp i/n and
// TypeHann the raised-cosine ramp.
func Rise(t Type, n int, opts ...Option) []float64 {
	if n <= 0 {
		return nil
	}
	cfg := applyOptions(opts)

	out := make([]float64, n)
	for i := range out {
		out[i] = eval(t, 0.5*float64(i)/float64(n), cfg)
	}
	return out
}

// Kaiser returns symmetric Kaiser window coefficients.
func Kaiser(size int, beta float64) ([]float64, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidParameter, size)
	}
	if beta < 0 || math.IsNaN(beta) {
		return nil, fmt.Errorf("%w: kaiser beta %v", ErrInvalidParameter, beta)
	}
	return Generate(TypeKaiser, size, WithBeta(beta)), nil
}

func applyOptions(opts []Option) config {
	cfg := config{beta: 8.6}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func eval(t Type, x float64, cfg config) float64 {
	x = math.Min(math.Max(x, 0), 1)

	switch t {
	case TypeHann:
		return 0.5 - 0.5*math.Cos(2*math.Pi*x)
	case TypeTriangle:
		return 1 - math.Abs(2*x-1)
	case TypeKaiser:
		if cfg.beta == 0 {
			return 1
		}
		u := 2*x - 1
		return besselI0(cfg.beta*math.Sqrt(math.Max(0, 1-u*u))) / besselI0(cfg.beta)
	default:
		return 1
	}
}

func position(n, size int, periodic bool) float64 {
	switch {
	case size <= 1:
		return 0.5
	case periodic:
		return float64(n) / float64(size)
	default:
		return float64(n) / float64(size-1)
	}
}

// besselI0 evaluates the zeroth-order modified Bessel function by its
// power series.
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	x2 := x * x / 4
	for k := 1; k < 64; k++ {
		term *= x2 / float64(k*k)
		sum += term
		if term < 1e-16*sum {
			break
		}
	}
	return sum
}
