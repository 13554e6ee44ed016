package score

import (
	"math"

	"github.com/cwbudde/algo-vose/dsp/freq"
)

const (
	// MaxLyricLength is the maximum lyric size in bytes.
	MaxLyricLength = 256
	// MaxPhonemes is the maximum number of phoneme labels per note.
	MaxPhonemes = 32
	// MaxNoteNumber is the highest valid note number.
	MaxNoteNumber = 127
	// MaxVelocity is the highest velocity; it maps to unity gain.
	MaxVelocity = 127
	// DefaultVelocity is used for notes read without an explicit velocity.
	DefaultVelocity = 100
	// DefaultTempoBPM is the tempo assumed when a source carries none.
	DefaultTempoBPM = 120.0
	// DefaultLyric is sung by imported notes that carry no lyric.
	DefaultLyric = "a"
)

// PitchEvent is one pitch-bend control point.
type PitchEvent = freq.PitchEvent

// NoteEvent is one note to render. Times are in seconds.
type NoteEvent struct {
	NoteNumber int      `json:"pitch"`
	Start      float64  `json:"start"`
	Duration   float64  `json:"duration"`
	Velocity   int      `json:"velocity"`
	Lyrics     string   `json:"lyrics"`
	Phonemes   []string `json:"phonemes,omitempty"`
	// PitchBend is relative to Start. When empty the timeline bend applies.
	PitchBend []PitchEvent `json:"pitch_bend,omitempty"`
}

// End returns Start + Duration.
func (n NoteEvent) End() float64 {
	return n.Start + n.Duration
}

// Contributes reports whether the note produces audio. Notes with zero,
// negative or non-finite durations are skipped by the renderer.
func (n NoteEvent) Contributes() bool {
	return n.Duration > 0 && !math.IsInf(n.Duration, 0)
}

// Labels returns the phoneme lookup keys of the note: its phonemes, or the
// lyric itself when no phonemes are given.
func (n NoteEvent) Labels() []string {
	if len(n.Phonemes) > 0 {
		return n.Phonemes
	}
	if n.Lyrics == "" {
		return nil
	}
	return []string{n.Lyrics}
}

// Gain returns the linear amplitude for the note's velocity.
func (n NoteEvent) Gain() float64 {
	return float64(n.Velocity) / MaxVelocity
}

// Timeline is an unordered collection of notes plus timeline-wide settings.
type Timeline struct {
	Notes []NoteEvent
	// PitchBend uses absolute times and applies to notes without their own bend.
	PitchBend []PitchEvent
	// PitchScale multiplies every target frequency. Zero means 1.
	PitchScale float64
	// TempoBPM is informational; note times are already in seconds.
	TempoBPM float64
}

// Scale returns the effective pitch scale.
func (tl Timeline) Scale() float64 {
	if tl.PitchScale <= 0 || math.IsNaN(tl.PitchScale) {
		return 1
	}
	return tl.PitchScale
}

// Duration returns the end time of the last contributing note.
func (tl Timeline) Duration() float64 {
	var end float64
	for _, n := range tl.Notes {
		if n.Contributes() {
			end = math.Max(end, n.End())
		}
	}
	return end
}
