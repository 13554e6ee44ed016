// Package crossfade blends the tail of already-written audio with the head
// of a new segment.
//
// Over a window of n samples the existing material is weighted 1-w[i] and
// the incoming material w[i], where w rises from 0 towards 1. The two
// weights always sum to exactly one, so a join between identical signals
// is transparent and a join between different ones never overshoots their
// envelope.
package crossfade
