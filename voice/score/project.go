package score

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Project is the on-disk project document written by the editor.
type Project struct {
	TempoBPM   float64      `json:"tempo_bpm"`
	Notes      []NoteEvent  `json:"notes"`
	PitchData  []PitchEvent `json:"pitch_data,omitempty"`
	PitchScale float64      `json:"pitch_scale,omitempty"`
}

// UnmarshalJSON fills in DefaultVelocity when a note omits its velocity.
func (n *NoteEvent) UnmarshalJSON(data []byte) error {
	type plain NoteEvent
	v := plain{Velocity: DefaultVelocity}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = NoteEvent(v)
	return nil
}

// Timeline converts the project to a render timeline.
func (p Project) Timeline() Timeline {
	tempo := p.TempoBPM
	if tempo <= 0 {
		tempo = DefaultTempoBPM
	}
	return Timeline{
		Notes:      p.Notes,
		PitchBend:  p.PitchData,
		PitchScale: p.PitchScale,
		TempoBPM:   tempo,
	}
}

// ProjectFrom converts a timeline back to its project document.
func ProjectFrom(tl Timeline) Project {
	return Project{
		TempoBPM:   tl.TempoBPM,
		Notes:      tl.Notes,
		PitchData:  tl.PitchBend,
		PitchScale: tl.PitchScale,
	}
}

// ReadProject decodes a project document.
func ReadProject(r io.Reader) (Timeline, error) {
	var p Project
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Timeline{}, fmt.Errorf("score: decode project: %w", err)
	}
	return p.Timeline(), nil
}

// ReadProjectFile reads a project document from path.
func ReadProjectFile(path string) (Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return Timeline{}, fmt.Errorf("score: open project: %w", err)
	}
	defer f.Close()

	return ReadProject(f)
}

// WriteProject encodes tl as an indented project document.
func WriteProject(w io.Writer, tl Timeline) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ProjectFrom(tl)); err != nil {
		return fmt.Errorf("score: encode project: %w", err)
	}
	return nil
}
