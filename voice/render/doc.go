// Package render turns a note timeline into a mono sample buffer.
//
// A Renderer walks the notes in start-time order. For every phoneme segment
// it looks the sample up in a phoneme.Source, fits it to the segment length
// at the note's bent target pitch and joins it to the material already
// written with a short crossfade. Failures are reported as *Error values
// carrying a Kind plus the note index and phoneme label involved.
package render
