package freq

import "math"

const (
	// ReferenceNote is the note number tuned to ReferenceHz.
	ReferenceNote = 69
	// ReferenceHz is the concert pitch of ReferenceNote.
	ReferenceHz = 440.0

	// MinBend and MaxBend bound pitch-bend values.
	MinBend = -8192
	MaxBend = 8191

	bendScale = 8192.0
)

// NoteToHz returns the equal-tempered frequency of a note number.
// Values outside 0..127 are computed algebraically, not clamped.
func NoteToHz(note int) float64 {
	return ReferenceHz * math.Exp2(float64(note-ReferenceNote)/12)
}

// HzToNote returns the fractional note number of frequency hz.
// It returns NaN for non-positive input.
func HzToNote(hz float64) float64 {
	if hz <= 0 {
		return math.NaN()
	}
	return ReferenceNote + 12*math.Log2(hz/ReferenceHz)
}

// ClampBend limits v to the valid bend range.
func ClampBend(v float64) float64 {
	if v < MinBend {
		return MinBend
	}
	if v > MaxBend {
		return MaxBend
	}
	return v
}

// BendRatio maps a bend value to a frequency multiplier given the full-scale
// range in semitones: -8192 lowers by rangeSemitones, 0 is unity.
func BendRatio(value, rangeSemitones float64) float64 {
	return math.Exp2(ClampBend(value) / bendScale * rangeSemitones / 12)
}
