package score

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// SyllableSeconds is the talk-path syllable length at speed 1.
	SyllableSeconds = 0.12
	// TalkNote is the note number every talk syllable is spoken at.
	TalkNote = 60
	// TalkVelocity is the velocity of talk syllables.
	TalkVelocity = 100
)

// FromText turns plain text into a timeline of spoken syllables.
//
// Every syllable becomes one note of SyllableSeconds/speed at TalkNote.
// Latin words are split into onset-nucleus syllables with trailing
// consonants attached to the last syllable; its phonemes are the onset, the
// vowels and any coda. Other letters (kana, for instance) are one syllable
// each and are looked up by their lyric. Punctuation inserts a pause of one
// syllable. pitch becomes the timeline's PitchScale.
func FromText(text string, speed, pitch float64) (Timeline, error) {
	if !(speed > 0) {
		return Timeline{}, fmt.Errorf("score: talk speed must be > 0: %v", speed)
	}
	if !(pitch > 0) {
		return Timeline{}, fmt.Errorf("score: talk pitch must be > 0: %v", pitch)
	}

	step := SyllableSeconds / speed
	tl := Timeline{PitchScale: pitch, TempoBPM: DefaultTempoBPM}
	var at float64

	add := func(syl syllable) {
		tl.Notes = append(tl.Notes, NoteEvent{
			NoteNumber: TalkNote,
			Start:      at,
			Duration:   step,
			Velocity:   TalkVelocity,
			Lyrics:     syl.lyric(),
			Phonemes:   syl.phonemes(),
		})
		at += step
	}

	var word []rune
	flush := func() {
		for _, syl := range syllabify(word) {
			add(syl)
		}
		word = word[:0]
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case isLatin(r):
			word = append(word, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flush()
			add(syllable{nucleus: string(r)})
		case unicode.IsPunct(r):
			flush()
			at += step
		default:
			flush()
		}
	}
	flush()

	return tl, nil
}

type syllable struct {
	onset, nucleus, coda string
	latin                bool
}

func (s syllable) lyric() string {
	return s.onset + s.nucleus + s.coda
}

func (s syllable) phonemes() []string {
	if !s.latin {
		return nil
	}
	var out []string
	for _, p := range []string{s.onset, s.nucleus, s.coda} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func syllabify(word []rune) []syllable {
	var (
		out       []syllable
		consonant []rune
	)
	for i := 0; i < len(word); {
		if !isVowel(word[i]) {
			consonant = append(consonant, word[i])
			i++
			continue
		}
		j := i
		for j < len(word) && isVowel(word[j]) {
			j++
		}
		out = append(out, syllable{onset: string(consonant), nucleus: string(word[i:j]), latin: true})
		consonant = consonant[:0]
		i = j
	}

	if len(consonant) > 0 {
		if len(out) == 0 {
			return []syllable{{nucleus: string(consonant), latin: true}}
		}
		out[len(out)-1].coda = string(consonant)
	}
	return out
}

func isLatin(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isVowel(r rune) bool {
	return strings.ContainsRune("aeiou", r)
}
