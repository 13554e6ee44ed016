// Package freq maps note numbers to fundamental frequencies and turns
// pitch-bend control points into frequency multipliers.
//
// Notes use the equal-tempered MIDI convention (69 = A4 = 440 Hz). Bend
// values span -8192..8191 and map to a multiplicative ratio through a
// fixed semitone range, see [BendRatio].
package freq
