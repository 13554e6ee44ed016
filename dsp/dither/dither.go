// Package dither converts floating-point audio to integer PCM.
//
// A Quantizer scales samples to the target bit depth, adds dither noise and
// feeds the quantization error back through an FIR noise shaper so the
// requantization noise moves towards less audible frequencies.
package dither

import (
	"fmt"
	"strings"
)

// DitherType selects the probability distribution used for dither noise.
type DitherType int

const (
	// DitherNone applies no dither (plain truncation).
	DitherNone DitherType = iota
	// DitherRectangular uses a uniform (rectangular) PDF.
	DitherRectangular
	// DitherTriangular uses a triangular PDF (TPDF), the most common choice.
	DitherTriangular

	ditherTypeCount
)

var ditherTypeNames = [ditherTypeCount]string{"none", "rectangular", "triangular"}

// String returns the name of the dither type.
func (dt DitherType) String() string {
	if dt.Valid() {
		return ditherTypeNames[dt]
	}
	return fmt.Sprintf("DitherType(%d)", dt)
}

// Valid reports whether dt is a known dither type.
func (dt DitherType) Valid() bool {
	return dt >= 0 && dt < ditherTypeCount
}

// ParseDitherType maps a configuration name ("none", "rectangular",
// "triangular" or "tpdf") to a DitherType.
func ParseDitherType(name string) (DitherType, error) {
	switch strings.ToLower(name) {
	case "none", "off":
		return DitherNone, nil
	case "rectangular", "rpdf":
		return DitherRectangular, nil
	case "", "triangular", "tpdf":
		return DitherTriangular, nil
	default:
		return DitherNone, fmt.Errorf("dither: unknown dither type %q", name)
	}
}
