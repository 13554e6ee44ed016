package dither

import (
	"math"
	"math/rand/v2"
)

// Quantizer performs bit-depth quantization with optional dither noise
// and noise shaping. It carries shaper and noise state between calls and
// is not safe for concurrent use.
type Quantizer struct {
	bitDepth        int
	ditherType      DitherType
	ditherAmplitude float64
	limit           bool
	shaper          NoiseShaper
	seed            uint64
	rng             *rand.Rand

	bitMul  float64
	limitLo int
	limitHi int
}

// NewQuantizer creates a Quantizer. The default configuration is 16-bit,
// triangular dither of 1 LSB, limiting enabled, 9th-order F-weighted FIR
// noise shaping and seed 1.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	q := &Quantizer{
		bitDepth:        cfg.bitDepth,
		ditherType:      cfg.ditherType,
		ditherAmplitude: cfg.ditherAmplitude,
		limit:           cfg.limit,
		shaper:          cfg.shaper,
		seed:            cfg.seed,
	}
	q.bitMul = math.Exp2(float64(q.bitDepth-1)) - 0.5
	q.limitLo = -int(math.Round(q.bitMul + 0.5))
	q.limitHi = int(math.Round(q.bitMul - 0.5))
	q.Reset()

	return q, nil
}

// ProcessInteger quantizes input (expected in [-1, +1]) to an integer in
// the bit-depth range.
func (q *Quantizer) ProcessInteger(input float64) int {
	shaped := q.shaper.Shape(q.bitMul * input)
	result := q.quantize(shaped)
	if q.limit {
		result = max(q.limitLo, min(q.limitHi, result))
	}
	q.shaper.RecordError(float64(result) - shaped)
	return result
}

// Quantize converts src into dst, which must be at least as long as src.
// It returns the number of input samples outside [-1, 1].
func (q *Quantizer) Quantize(dst []int, src []float64) int {
	clipped := 0
	for i, v := range src {
		dst[i] = q.ProcessInteger(v)
		if math.Abs(v) > 1 {
			clipped++
		}
	}
	return clipped
}

// Reset clears the noise-shaper history and restarts the noise sequence
// from the configured seed.
func (q *Quantizer) Reset() {
	q.shaper.Reset()
	q.rng = rand.New(rand.NewPCG(q.seed, q.seed^0x9e3779b97f4a7c15))
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// DitherType returns the dither noise type.
func (q *Quantizer) DitherType() DitherType { return q.ditherType }

// quantize adds dither noise and truncates. The floor maps [-1, 1) onto the
// full two's complement range.
func (q *Quantizer) quantize(input float64) int {
	switch q.ditherType {
	case DitherRectangular:
		return int(math.Floor(input + q.ditherAmplitude*(q.rng.Float64()*2-1)))
	case DitherTriangular:
		return int(math.Floor(input + q.ditherAmplitude*(q.rng.Float64()-q.rng.Float64())))
	default:
		return int(math.Floor(input))
	}
}
