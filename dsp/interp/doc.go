// Package interp provides the fractional-read primitives used by the
// resampler.
//
// Available methods, from cheapest to highest quality:
//
//   - [Linear2]:  2-point linear interpolation (default)
//   - [Hermite4]: 4-point cubic Hermite
//
// [At] reads a buffer at a fractional position with the selected [Mode].
package interp
