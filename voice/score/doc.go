// Package score holds the note timeline that the renderer consumes.
//
// A Timeline is a list of NoteEvents plus optional timeline-wide pitch
// bend. Timelines come from project files (ReadProject), Standard MIDI
// Files (ReadMIDI) or plain text (FromText), or are built directly by the
// caller. Validate checks a timeline against the engine's limits and the
// single-voice contract; Ordered returns the notes in time order together
// with their caller-side indices.
package score
