package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vose/dsp/window"
)

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input/output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// Quality controls default anti-aliasing filter settings.
type Quality int

const (
	// QualityFast prioritizes lower CPU usage.
	QualityFast Quality = iota
	// QualityBalanced is the default quality/performance trade-off.
	QualityBalanced
	// QualityBest prioritizes stopband attenuation and passband flatness.
	QualityBest
)

// String returns the configuration name of the quality mode.
func (q Quality) String() string {
	switch q {
	case QualityFast:
		return "fast"
	case QualityBest:
		return "best"
	default:
		return "balanced"
	}
}

// ParseQuality maps a configuration name to a Quality.
func ParseQuality(name string) (Quality, error) {
	switch name {
	case "fast":
		return QualityFast, nil
	case "", "balanced":
		return QualityBalanced, nil
	case "best":
		return QualityBest, nil
	default:
		return QualityBalanced, fmt.Errorf("resample: unknown quality %q", name)
	}
}

type profile struct {
	tapsPerPhase int
	cutoffScale  float64
	kaiserBeta   float64
}

func qualityProfile(q Quality) profile {
	switch q {
	case QualityFast:
		return profile{tapsPerPhase: 16, cutoffScale: 0.88, kaiserBeta: 5.0}
	case QualityBest:
		return profile{tapsPerPhase: 64, cutoffScale: 0.96, kaiserBeta: 9.0}
	default:
		return profile{tapsPerPhase: 32, cutoffScale: 0.92, kaiserBeta: 7.5}
	}
}

type config struct {
	quality Quality
	maxDen  int
}

// Option configures the polyphase resampler.
type Option func(*config)

// WithQuality selects a predefined anti-aliasing quality mode.
func WithQuality(q Quality) Option {
	return func(cfg *config) {
		cfg.quality = q
	}
}

// WithMaxDenominator caps denominator size for rate-ratio approximation.
func WithMaxDenominator(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDen = n
		}
	}
}

func applyOptions(opts []Option) config {
	cfg := config{quality: QualityBalanced, maxDen: 4096}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Resampler performs rational sample-rate conversion using a polyphase FIR.
// Voice banks recorded at a different rate than the engine are converted
// with it once, at load time.
type Resampler struct {
	up   int
	down int

	nTaps      int
	phases     [][]float64
	maxPhaseLn int

	phase      int
	inputIndex int
	totalIn    int
	history    []float64
}

// NewRational creates a resampler for ratio up/down.
func NewRational(up, down int, opts ...Option) (*Resampler, error) {
	if up <= 0 || down <= 0 {
		return nil, ErrInvalidRatio
	}

	g := gcd(up, down)
	up /= g
	down /= g

	cfg := applyOptions(opts)
	nTaps, phases, maxPhaseLn, err := designPolyphaseFIR(up, down, qualityProfile(cfg.quality))
	if err != nil {
		return nil, err
	}

	return &Resampler{
		up:         up,
		down:       down,
		nTaps:      nTaps,
		phases:     phases,
		maxPhaseLn: maxPhaseLn,
		history:    make([]float64, 0, max(0, maxPhaseLn-1)),
	}, nil
}

// NewForRates creates a resampler by approximating outRate/inRate as a ratio.
func NewForRates(inRate, outRate float64, opts ...Option) (*Resampler, error) {
	if inRate <= 0 || outRate <= 0 || math.IsNaN(inRate) || math.IsNaN(outRate) {
		return nil, ErrInvalidRate
	}

	cfg := applyOptions(opts)
	up, down := approximateRatio(outRate/inRate, cfg.maxDen)

	return NewRational(up, down, opts...)
}

// Convert resamples a complete buffer from inRate to outRate. The filter
// delay is compensated, so the output is time-aligned with src and holds
// round(len(src)*outRate/inRate) samples. Equal rates return a copy.
func Convert(src []float64, inRate, outRate float64, opts ...Option) ([]float64, error) {
	if inRate <= 0 || outRate <= 0 || math.IsNaN(inRate) || math.IsNaN(outRate) {
		return nil, ErrInvalidRate
	}
	if inRate == outRate || len(src) == 0 {
		return append([]float64(nil), src...), nil
	}

	r, err := NewForRates(inRate, outRate, opts...)
	if err != nil {
		return nil, fmt.Errorf("resample: convert %.0f Hz to %.0f Hz: %w", inRate, outRate, err)
	}

	want := int(math.Round(float64(len(src)) * float64(r.up) / float64(r.down)))
	delay := r.Delay()
	pad := (delay+1)*r.down/r.up + r.maxPhaseLn + 1

	out := r.Process(src)
	out = append(out, r.Process(make([]float64, pad))...)
	if delay >= len(out) {
		return make([]float64, want), nil
	}
	out = out[delay:]
	if len(out) >= want {
		return out[:want:want], nil
	}
	return append(out, make([]float64, want-len(out))...), nil
}

// Reset clears internal filter state.
func (r *Resampler) Reset() {
	r.phase = 0
	r.inputIndex = 0
	r.totalIn = 0
	r.history = r.history[:0]
}

// Process converts an input block and preserves internal state for streaming.
func (r *Resampler) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	out := make([]float64, 0, r.PredictOutputLen(len(input)))

	work := make([]float64, len(r.history)+len(input))
	copy(work, r.history)
	copy(work[len(r.history):], input)

	baseIndex := r.totalIn - len(r.history)
	lastAvail := r.totalIn + len(input) - 1

	for r.inputIndex <= lastAvail {
		var y float64
		for k, c := range r.phases[r.phase] {
			idx := r.inputIndex - k
			if idx < baseIndex || idx > lastAvail {
				continue
			}
			y += c * work[idx-baseIndex]
		}
		out = append(out, y)

		r.phase += r.down
		r.inputIndex += r.phase / r.up
		r.phase %= r.up
	}

	r.totalIn += len(input)

	keep := min(max(0, r.maxPhaseLn-1), len(work))
	r.history = append(r.history[:0], work[len(work)-keep:]...)

	return out
}

// PredictOutputLen returns the number of samples the next Process call
// produces for inputLen input samples.
func (r *Resampler) PredictOutputLen(inputLen int) int {
	if inputLen <= 0 {
		return 0
	}

	lastAvail := r.totalIn + inputLen - 1
	i := r.inputIndex
	phase := r.phase

	count := 0
	for i <= lastAvail {
		count++
		phase += r.down
		i += phase / r.up
		phase %= r.up
	}

	return count
}

// Ratio returns reduced up/down conversion factors.
func (r *Resampler) Ratio() (up, down int) {
	return r.up, r.down
}

// Delay returns the filter's group delay in output samples, rounded.
func (r *Resampler) Delay() int {
	return int(math.Round(float64(r.nTaps-1) / float64(2*r.down)))
}

func designPolyphaseFIR(up, down int, p profile) (int, [][]float64, int, error) {
	nTaps := p.tapsPerPhase * up

	fc := (0.5 / float64(max(up, down))) * p.cutoffScale
	if fc <= 0 || fc >= 0.5 {
		return 0, nil, 0, fmt.Errorf("resample: invalid cutoff %.6f", fc)
	}

	taps, err := window.Kaiser(nTaps, p.kaiserBeta)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("resample: design window: %w", err)
	}

	center := 0.5 * float64(nTaps-1)
	var sum float64
	for n := range taps {
		taps[n] *= 2 * fc * sinc(2*fc*(float64(n)-center))
		sum += taps[n]
	}
	if sum == 0 {
		return 0, nil, 0, errors.New("resample: designed zero-sum filter")
	}

	scale := float64(up) / sum
	phases := make([][]float64, up)
	maxPhaseLn := 0
	for ph := range up {
		branch := make([]float64, 0, (nTaps-ph+up-1)/up)
		for i := ph; i < nTaps; i += up {
			branch = append(branch, taps[i]*scale)
		}
		maxPhaseLn = max(maxPhaseLn, len(branch))
		phases[ph] = branch
	}

	return nTaps, phases, maxPhaseLn, nil
}

func approximateRatio(v float64, maxDen int) (num, den int) {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1, 1
	}

	p0, q0 := 1.0, 0.0
	p1, q1 := math.Floor(v), 1.0
	x := v

	for {
		frac := x - math.Floor(x)
		if frac == 0 {
			break
		}

		x = 1 / frac
		a := math.Floor(x)
		p2 := a*p1 + p0
		q2 := a*q1 + q0
		if q2 > float64(maxDen) {
			break
		}

		p0, q0 = p1, q1
		p1, q1 = p2, q2
	}

	num = int(math.Round(p1))
	den = int(math.Round(q1))
	if den <= 0 || num <= 0 {
		return 1, 1
	}

	g := gcd(num, den)

	return num / g, den / g
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}
	pix := math.Pi * x
	return math.Sin(pix) / pix
}
