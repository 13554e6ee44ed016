package score

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type tempoChange struct {
	tick uint64
	bpm  float64
}

type lyricAt struct {
	tick uint64
	text string
}

type openNote struct {
	tick     uint64
	velocity uint8
}

type tickNote struct {
	start, end uint64
	key        uint8
	velocity   uint8
	lyric      string
}

// ReadMIDI imports a Standard MIDI File.
//
// The tempo map is honoured, note-on/note-off pairs are matched per channel
// and key, and each lyric meta event is attached to the first note starting
// at or after it; notes left without one sing DefaultLyric. Chords are
// reduced to a single line: of notes starting together the highest is kept,
// and notes lying inside an earlier one are dropped.
func ReadMIDI(r io.Reader) (Timeline, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return Timeline{}, fmt.Errorf("score: read midi: %w", err)
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return Timeline{}, fmt.Errorf("score: read midi: unsupported time format %v", s.TimeFormat)
	}

	var (
		tempos []tempoChange
		lyrics []lyricAt
		notes  []tickNote
	)
	for _, track := range s.Tracks {
		var abs uint64
		open := map[[2]uint8][]openNote{}
		for _, ev := range track {
			abs += uint64(ev.Delta)

			var (
				bpm          float64
				text         string
				ch, key, vel uint8
			)
			msg := midi.Message(ev.Message)
			switch {
			case ev.Message.GetMetaTempo(&bpm):
				tempos = append(tempos, tempoChange{tick: abs, bpm: bpm})
			case ev.Message.GetMetaLyric(&text):
				lyrics = append(lyrics, lyricAt{tick: abs, text: text})
			case msg.GetNoteStart(&ch, &key, &vel):
				k := [2]uint8{ch, key}
				open[k] = append(open[k], openNote{tick: abs, velocity: vel})
			case msg.GetNoteEnd(&ch, &key):
				k := [2]uint8{ch, key}
				if len(open[k]) == 0 {
					continue
				}
				on := open[k][0]
				open[k] = open[k][1:]
				if abs > on.tick {
					notes = append(notes, tickNote{start: on.tick, end: abs, key: key, velocity: on.velocity})
				}
			}
		}
	}

	sort.SliceStable(tempos, func(a, b int) bool { return tempos[a].tick < tempos[b].tick })
	sort.SliceStable(lyrics, func(a, b int) bool { return lyrics[a].tick < lyrics[b].tick })
	notes = monophonic(notes)
	attachLyrics(notes, lyrics)

	tm := tempoMap{ticks: ticks, changes: tempos}
	tl := Timeline{TempoBPM: tm.initialBPM()}
	for _, n := range notes {
		start := tm.seconds(n.start)
		if n.lyric == "" {
			n.lyric = DefaultLyric
		}
		tl.Notes = append(tl.Notes, NoteEvent{
			NoteNumber: int(n.key),
			Start:      start,
			Duration:   tm.seconds(n.end) - start,
			Velocity:   int(n.velocity),
			Lyrics:     n.lyric,
		})
	}
	return tl, nil
}

// ReadMIDIFile imports the Standard MIDI File at path.
func ReadMIDIFile(path string) (Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return Timeline{}, fmt.Errorf("score: open midi: %w", err)
	}
	defer f.Close()

	return ReadMIDI(f)
}

func monophonic(notes []tickNote) []tickNote {
	sort.SliceStable(notes, func(a, b int) bool {
		if notes[a].start != notes[b].start {
			return notes[a].start < notes[b].start
		}
		return notes[a].key > notes[b].key
	})

	out := notes[:0]
	for _, n := range notes {
		if len(out) > 0 {
			last := out[len(out)-1]
			if n.start == last.start || n.end <= last.end {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func attachLyrics(notes []tickNote, lyrics []lyricAt) {
	i := 0
	for _, l := range lyrics {
		for i < len(notes) && notes[i].start < l.tick {
			i++
		}
		if i == len(notes) {
			return
		}
		if notes[i].lyric == "" {
			notes[i].lyric = l.text
		}
	}
}

type tempoMap struct {
	ticks   smf.MetricTicks
	changes []tempoChange
}

func (m tempoMap) initialBPM() float64 {
	if len(m.changes) > 0 && m.changes[0].tick == 0 {
		return m.changes[0].bpm
	}
	return DefaultTempoBPM
}

// seconds converts an absolute tick position using the tempo map.
func (m tempoMap) seconds(tick uint64) float64 {
	var (
		sec  float64
		last uint64
		bpm  = DefaultTempoBPM
	)
	for _, c := range m.changes {
		if c.tick >= tick {
			break
		}
		sec += m.ticks.Duration(bpm, uint32(c.tick-last)).Seconds()
		last, bpm = c.tick, c.bpm
	}
	return sec + m.ticks.Duration(bpm, uint32(tick-last)).Seconds()
}
