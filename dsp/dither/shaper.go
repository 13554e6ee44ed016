package dither

// NoiseShaper applies spectral shaping to quantization error via feedback filtering.
// The usage cycle per sample is:
//  1. shaped := shaper.Shape(scaledInput)
//  2. quantized := floor(shaped + dither)
//  3. shaper.RecordError(float64(quantized) - shaped)
type NoiseShaper interface {
	Shape(input float64) float64
	RecordError(quantizationError float64)
	Reset()
}

// FIRShaper implements error-feedback noise shaping with FIR coefficients
// and a circular buffer for quantization error history.
type FIRShaper struct {
	coeffs  []float64
	history []float64
	pos     int
}

// NewFIRShaper creates an FIR noise shaper. A nil or empty slice creates a
// pass-through.
func NewFIRShaper(coeffs []float64) *FIRShaper {
	s := &FIRShaper{coeffs: append([]float64(nil), coeffs...)}
	if len(coeffs) > 0 {
		s.history = make([]float64, len(coeffs))
	}
	return s
}

// Shape subtracts weighted past quantization errors from input.
func (s *FIRShaper) Shape(input float64) float64 {
	order := len(s.coeffs)
	if order == 0 {
		return input
	}
	for i, c := range s.coeffs {
		input -= c * s.history[(order+s.pos-i)%order]
	}
	s.pos = (s.pos + 1) % order
	return input
}

// RecordError stores the quantization error of the current sample.
// It must be called once after each Shape call.
func (s *FIRShaper) RecordError(quantizationError float64) {
	if len(s.coeffs) == 0 {
		return
	}
	s.history[s.pos] = quantizationError
}

// Reset clears the error history.
func (s *FIRShaper) Reset() {
	clear(s.history)
	s.pos = 0
}
