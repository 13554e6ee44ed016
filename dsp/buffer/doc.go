// Package buffer provides the render buffer type and a scratch pool.
//
// A render call owns exactly one [Buffer] sized to the timeline and borrows
// short-lived scratch buffers from a [Pool] for each resampled segment.
// All DSP functions accept raw []float64 slices; Buffer only manages
// allocation, bounds and ownership hand-off.
package buffer
