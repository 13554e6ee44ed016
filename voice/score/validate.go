package score

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidNote reports a note that violates the timeline contract.
var ErrInvalidNote = errors.New("score: invalid note")

// NoteError describes the offending note. Index is the note's position in
// Timeline.Notes, or -1 for timeline-level data.
type NoteError struct {
	Index  int
	Reason string
}

func (e *NoteError) Error() string {
	if e.Index < 0 {
		return "score: timeline: " + e.Reason
	}
	return fmt.Sprintf("score: note %d: %s", e.Index, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidNote) hold.
func (e *NoteError) Unwrap() error {
	return ErrInvalidNote
}

func noteErr(index int, format string, args ...any) error {
	return &NoteError{Index: index, Reason: fmt.Sprintf(format, args...)}
}

// Indexed pairs a note with its index in Timeline.Notes.
type Indexed struct {
	Index int
	Note  NoteEvent
}

// Ordered returns all notes stably sorted by start time.
func (tl Timeline) Ordered() []Indexed {
	out := make([]Indexed, len(tl.Notes))
	for i, n := range tl.Notes {
		out[i] = Indexed{Index: i, Note: n}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Note.Start < out[b].Note.Start
	})
	return out
}

// Validate checks every note and the single-voice contract. Notes that do
// not contribute audio are only range-checked.
func (tl Timeline) Validate() error {
	if err := validateBend(tl.PitchBend); err != nil {
		return noteErr(-1, "pitch bend: %v", err)
	}
	if math.IsNaN(tl.PitchScale) || math.IsInf(tl.PitchScale, 0) || tl.PitchScale < 0 {
		return noteErr(-1, "pitch scale %v", tl.PitchScale)
	}

	for i, n := range tl.Notes {
		if err := validateNote(n); err != nil {
			return &NoteError{Index: i, Reason: err.Error()}
		}
	}

	var prev *Indexed
	for _, cur := range tl.Ordered() {
		if !cur.Note.Contributes() {
			continue
		}
		if prev != nil {
			if cur.Note.Start == prev.Note.Start {
				return noteErr(cur.Index, "starts together with note %d (polyphony)", prev.Index)
			}
			if cur.Note.End() <= prev.Note.End() {
				return noteErr(cur.Index, "lies inside note %d (polyphony)", prev.Index)
			}
		}
		c := cur
		prev = &c
	}

	return nil
}

func validateNote(n NoteEvent) error {
	switch {
	case n.NoteNumber < 0 || n.NoteNumber > MaxNoteNumber:
		return fmt.Errorf("note number %d outside 0..%d", n.NoteNumber, MaxNoteNumber)
	case n.Velocity < 0 || n.Velocity > MaxVelocity:
		return fmt.Errorf("velocity %d outside 0..%d", n.Velocity, MaxVelocity)
	case n.Start < 0 || math.IsNaN(n.Start) || math.IsInf(n.Start, 0):
		return fmt.Errorf("start time %v", n.Start)
	case math.IsInf(n.Duration, 0):
		return fmt.Errorf("duration %v", n.Duration)
	case len(n.Lyrics) > MaxLyricLength:
		return fmt.Errorf("lyric of %d bytes exceeds %d", len(n.Lyrics), MaxLyricLength)
	case len(n.Phonemes) > MaxPhonemes:
		return fmt.Errorf("%d phonemes exceed %d", len(n.Phonemes), MaxPhonemes)
	}

	for i, p := range n.Phonemes {
		if p == "" {
			return fmt.Errorf("phoneme %d is empty", i)
		}
	}
	if n.Contributes() && len(n.Labels()) == 0 {
		return errors.New("no lyric and no phonemes")
	}
	if err := validateBend(n.PitchBend); err != nil {
		return fmt.Errorf("pitch bend: %w", err)
	}
	return nil
}

func validateBend(events []PitchEvent) error {
	for i, ev := range events {
		if math.IsNaN(ev.Time) || math.IsInf(ev.Time, 0) {
			return fmt.Errorf("event %d has time %v", i, ev.Time)
		}
		if i > 0 && ev.Time < events[i-1].Time {
			return fmt.Errorf("event %d at %gs precedes event %d at %gs", i, ev.Time, i-1, events[i-1].Time)
		}
	}
	return nil
}
