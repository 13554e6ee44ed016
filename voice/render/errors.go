package render

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies render failures.
type Kind int

const (
	// KindUnknown is reported by KindOf for errors that carry no kind.
	KindUnknown Kind = iota
	// KindInvalidConfiguration covers bad sample rates and lifecycle misuse.
	KindInvalidConfiguration
	// KindUnknownPhoneme is a lookup miss in the phoneme source.
	KindUnknownPhoneme
	// KindInvalidNote is a note or timeline that breaks the input contract.
	KindInvalidNote
	// KindIOFailure is a sink or source that could not be read or written.
	KindIOFailure
)

// Sentinels matched by errors.Is for each kind.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrUnknownPhoneme       = errors.New("unknown phoneme")
	ErrInvalidNote          = errors.New("invalid note")
	ErrIOFailure            = errors.New("i/o failure")
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalidConfiguration:
		return "invalid configuration"
	case KindUnknownPhoneme:
		return "unknown phoneme"
	case KindInvalidNote:
		return "invalid note"
	case KindIOFailure:
		return "i/o failure"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidConfiguration:
		return ErrInvalidConfiguration
	case KindUnknownPhoneme:
		return ErrUnknownPhoneme
	case KindInvalidNote:
		return ErrInvalidNote
	case KindIOFailure:
		return ErrIOFailure
	default:
		return nil
	}
}

// Error is a structured render failure.
type Error struct {
	Kind Kind
	// Op names the failing step, e.g. "validate", "lookup", "write".
	Op string
	// NoteIndex is the position in Timeline.Notes, or -1.
	NoteIndex int
	// Label is the phoneme involved, if any.
	Label string
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("render")
	if e.Op != "" {
		b.WriteString(" " + e.Op)
	}
	if e.NoteIndex >= 0 {
		fmt.Fprintf(&b, " note %d", e.NoteIndex)
	}
	if e.Label != "" {
		fmt.Fprintf(&b, " phoneme %q", e.Label)
	}
	b.WriteString(": " + e.Kind.String())
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the kind of err, looking through wrapping.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	for _, k := range []Kind{KindInvalidConfiguration, KindUnknownPhoneme, KindInvalidNote, KindIOFailure} {
		if errors.Is(err, k.sentinel()) {
			return k
		}
	}
	return KindUnknown
}

func configErr(op string, err error) *Error {
	return &Error{Kind: KindInvalidConfiguration, Op: op, NoteIndex: -1, Err: err}
}
