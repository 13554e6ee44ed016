// Package f0 estimates the fundamental frequency of recorded material.
//
// The estimator computes the autocorrelation of a centred analysis frame
// through the power spectrum (Wiener-Khinchin), normalizes it by the
// overlap length and picks the shortest lag whose peak comes close to the
// strongest one, refined with parabolic interpolation.
package f0

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

var (
	// ErrInvalidRate is returned for non-positive sample rates.
	ErrInvalidRate = errors.New("f0: invalid sample rate")
	// ErrInvalidRange is returned when the search range is empty or negative.
	ErrInvalidRange = errors.New("f0: invalid frequency range")
	// ErrTooShort is returned when the input cannot hold two periods of the lowest frequency searched.
	ErrTooShort = errors.New("f0: input too short")
)

const (
	defaultMinHz     = 50.0
	defaultMaxHz     = 1000.0
	defaultThreshold = 0.3
	defaultFrame     = 4096

	// peakTolerance selects the first lag whose normalized correlation
	// reaches this share of the best one, which avoids octave-down picks.
	peakTolerance = 0.9
)

// Result describes one estimate.
type Result struct {
	Hz      float64
	Clarity float64 // normalized autocorrelation at the chosen lag
	Voiced  bool
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithRange limits the search to [minHz, maxHz].
func WithRange(minHz, maxHz float64) Option {
	return func(e *Estimator) {
		e.minHz = minHz
		e.maxHz = maxHz
	}
}

// WithThreshold sets the clarity below which input is reported unvoiced.
func WithThreshold(v float64) Option {
	return func(e *Estimator) {
		if v > 0 && v < 1 {
			e.threshold = v
		}
	}
}

// WithFrameSize sets the analysis frame length in samples.
func WithFrameSize(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.frame = n
		}
	}
}

// Estimator finds the pitch of mono buffers at a fixed sample rate.
type Estimator struct {
	sampleRate float64
	minHz      float64
	maxHz      float64
	threshold  float64
	frame      int
}

// New creates an Estimator for sampleRate.
func New(sampleRate float64, opts ...Option) (*Estimator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, ErrInvalidRate
	}

	e := &Estimator{
		sampleRate: sampleRate,
		minHz:      defaultMinHz,
		maxHz:      defaultMaxHz,
		threshold:  defaultThreshold,
		frame:      defaultFrame,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.minHz <= 0 || e.maxHz <= e.minHz || e.maxHz >= sampleRate/2 {
		return nil, fmt.Errorf("%w: [%g, %g] Hz at %g Hz", ErrInvalidRange, e.minHz, e.maxHz, sampleRate)
	}

	return e, nil
}

// Estimate analyses the centre frame of x.
func (e *Estimator) Estimate(x []float64) (Result, error) {
	n := min(len(x), e.frame)
	start := (len(x) - n) / 2
	frame := x[start : start+n]

	minLag := max(2, int(math.Floor(e.sampleRate/e.maxHz)))
	maxLag := min(n/2, int(math.Ceil(e.sampleRate/e.minHz)))
	if maxLag <= minLag+1 {
		return Result{}, fmt.Errorf("%w: %d samples", ErrTooShort, len(x))
	}

	acf, err := autocorrelate(frame)
	if err != nil {
		return Result{}, err
	}
	if acf[0] <= 1e-12 {
		return Result{}, nil
	}

	// Unbiased normalization: a periodic input scores close to 1 at every
	// multiple of its period.
	norm := make([]float64, maxLag+2)
	for lag := range norm {
		norm[lag] = acf[lag] * float64(n) / (acf[0] * float64(n-lag))
	}

	best := math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		if isPeak(norm, lag) && norm[lag] > best {
			best = norm[lag]
		}
	}
	if best < e.threshold {
		return Result{Clarity: math.Max(0, best)}, nil
	}

	for lag := minLag; lag <= maxLag; lag++ {
		if !isPeak(norm, lag) || norm[lag] < peakTolerance*best {
			continue
		}
		shift := parabolic(norm[lag-1], norm[lag], norm[lag+1])
		return Result{
			Hz:      e.sampleRate / (float64(lag) + shift),
			Clarity: norm[lag],
			Voiced:  true,
		}, nil
	}

	return Result{Clarity: best}, nil
}

// Estimate returns the fundamental of x in Hz, or 0 if x is unvoiced,
// using the default search range.
func Estimate(x []float64, sampleRate float64) (float64, error) {
	e, err := New(sampleRate)
	if err != nil {
		return 0, err
	}
	r, err := e.Estimate(x)
	if err != nil {
		return 0, err
	}
	return r.Hz, nil
}

func autocorrelate(x []float64) ([]float64, error) {
	size := nextPowerOf2(2 * len(x))

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("f0: failed to create FFT plan: %w", err)
	}

	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))

	buf := make([]complex128, size)
	for i, v := range x {
		buf[i] = complex(v-mean, 0)
	}
	spec := make([]complex128, size)
	if err := plan.Forward(spec, buf); err != nil {
		return nil, fmt.Errorf("f0: forward FFT failed: %w", err)
	}

	re := make([]float64, size)
	im := make([]float64, size)
	for i, c := range spec {
		re[i] = real(c)
		im[i] = imag(c)
	}
	power := make([]float64, size)
	vecmath.Power(power, re, im)

	for i, p := range power {
		spec[i] = complex(p, 0)
	}
	if err := plan.Inverse(buf, spec); err != nil {
		return nil, fmt.Errorf("f0: inverse FFT failed: %w", err)
	}

	out := make([]float64, len(x))
	for i := range out {
		out[i] = real(buf[i])
	}
	return out, nil
}

func isPeak(v []float64, i int) bool {
	return i > 0 && i+1 < len(v) && v[i] >= v[i-1] && v[i] >= v[i+1]
}

func parabolic(a, b, c float64) float64 {
	den := a - 2*b + c
	if den == 0 {
		return 0
	}
	return math.Max(-0.5, math.Min(0.5, 0.5*(a-c)/den))
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
