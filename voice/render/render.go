package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-vose/dsp/buffer"
	"github.com/cwbudde/algo-vose/dsp/core"
	"github.com/cwbudde/algo-vose/dsp/crossfade"
	"github.com/cwbudde/algo-vose/dsp/freq"
	"github.com/cwbudde/algo-vose/dsp/resample"
	"github.com/cwbudde/algo-vose/voice/phoneme"
	"github.com/cwbudde/algo-vose/voice/score"
)

// Result is a finished render. Samples belongs to the caller.
type Result struct {
	Samples    []float64
	SampleRate float64
	Report     Report
}

// Renderer renders timelines against one phoneme source at a fixed sample
// rate. A Renderer is not safe for concurrent use; phoneme samples are only
// read and may be shared between renderers.
type Renderer struct {
	cfg    core.ProcessorConfig
	opts   Options
	source phoneme.Source
	pool   *buffer.Pool
	fader  *crossfade.Fader
	logger zerolog.Logger
}

// New returns a Renderer. The processor config supplies the sample rate,
// fade window, bend range and bend block size.
func New(source phoneme.Source, cfg core.ProcessorConfig, opts ...Option) (*Renderer, error) {
	if source == nil {
		return nil, configErr("new", errors.New("nil phoneme source"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, configErr("new", err)
	}

	s := settings{Options: DefaultOptions(), logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if err := s.Options.Validate(); err != nil {
		return nil, configErr("new", err)
	}
	if s.pool == nil {
		s.pool = buffer.NewPool()
	}

	return &Renderer{
		cfg:    cfg,
		opts:   s.Options,
		source: source,
		pool:   s.pool,
		fader:  crossfade.NewFader(s.Curve),
		logger: s.logger,
	}, nil
}

// Config returns the processor configuration.
func (r *Renderer) Config() core.ProcessorConfig {
	return r.cfg
}

// Options returns the rendering options.
func (r *Renderer) Options() Options {
	return r.opts
}

type span struct {
	score.Indexed
	start, end int
}

// Render validates tl and renders it. The output holds
// round(end*sampleRate) samples for the latest note end; a timeline without
// audible notes renders zero samples. Any lookup failure aborts the render.
func (r *Renderer) Render(tl score.Timeline) (*Result, error) {
	if err := tl.Validate(); err != nil {
		idx := -1
		var ne *score.NoteError
		if errors.As(err, &ne) {
			idx = ne.Index
		}
		return nil, &Error{Kind: KindInvalidNote, Op: "validate", NoteIndex: idx, Err: err}
	}

	sr := r.cfg.SampleRate
	var rep Report
	spans := make([]span, 0, len(tl.Notes))
	total := 0
	for _, in := range tl.Ordered() {
		start := int(math.Round(in.Note.Start * sr))
		end := int(math.Round(in.Note.End() * sr))
		if !in.Note.Contributes() || end <= start {
			rep.Skipped++
			continue
		}
		spans = append(spans, span{Indexed: in, start: start, end: end})
		total = max(total, end)
	}

	out := buffer.New(total)
	w := &writer{out: out.Samples(), fade: r.cfg.FadeSamples(), fader: r.fader}
	bend := freq.NewCurve(tl.PitchBend, 0, r.cfg.BendRange)
	scale := tl.Scale()

	for i, sp := range spans {
		next := math.MaxInt
		if i+1 < len(spans) {
			next = spans[i+1].start
		}
		segs, err := r.renderNote(w, sp, next, scale, bend)
		if err != nil {
			return nil, err
		}
		rep.Notes++
		rep.Segments += segs
	}

	rep.measure(out.Samples(), sr)
	return &Result{Samples: out.Samples(), SampleRate: sr, Report: rep}, nil
}

func (r *Renderer) renderNote(w *writer, sp span, next int, scale float64, fallback *freq.Curve) (int, error) {
	n := sp.Note
	labels := n.Labels()
	samples := make([]*phoneme.Sample, len(labels))
	for k, label := range labels {
		s, err := r.lookup(label)
		if err != nil {
			err.NoteIndex = sp.Index
			return 0, err
		}
		samples[k] = s
	}

	curve := fallback
	if len(n.PitchBend) > 0 {
		curve = freq.NewCurve(n.PitchBend, n.Start, r.cfg.BendRange)
	}
	hz := freq.NoteToHz(n.NoteNumber) * scale
	lengths := r.split(samples, sp.end-sp.start)

	pos, segs := sp.start, 0
	for k, s := range samples {
		length := lengths[k]
		if length <= 0 {
			continue
		}
		following := next
		if k < len(samples)-1 {
			following = pos + length
		}
		r.writeSegment(w, s, pos, length, following, hz, n.Gain(), curve)
		pos += length
		segs++
	}

	r.logger.Debug().
		Int("note", sp.Index).
		Int("pitch", n.NoteNumber).
		Float64("hz", hz).
		Strs("phonemes", labels).
		Int("start", sp.start).
		Int("samples", sp.end-sp.start).
		Msg("note rendered")
	return segs, nil
}

func (r *Renderer) lookup(label string) (*phoneme.Sample, *Error) {
	s, err := r.source.Lookup(label)
	switch {
	case errors.Is(err, phoneme.ErrUnknownPhoneme):
		return nil, &Error{Kind: KindUnknownPhoneme, Op: "lookup", Label: label, Err: err}
	case err != nil:
		return nil, &Error{Kind: KindIOFailure, Op: "lookup", Label: label, Err: err}
	case s == nil:
		return nil, &Error{Kind: KindUnknownPhoneme, Op: "lookup", Label: label, Err: phoneme.ErrUnknownPhoneme}
	case !(s.SampleRate > 0) || math.IsInf(s.SampleRate, 0):
		return nil, &Error{
			Kind: KindInvalidConfiguration, Op: "lookup", Label: label,
			Err: fmt.Errorf("%w: %v", core.ErrInvalidSampleRate, s.SampleRate),
		}
	}
	return s, nil
}

// split divides n samples among the phonemes of a note. Leading phonemes
// keep their natural length, scaled down together to at most LeadMaxRatio
// of the note; the last phoneme takes the rest.
func (r *Renderer) split(samples []*phoneme.Sample, n int) []int {
	lengths := make([]int, len(samples))
	last := len(samples) - 1
	lead := 0
	for k := 0; k < last; k++ {
		lengths[k] = int(math.Round(samples[k].Seconds() * r.cfg.SampleRate))
		lead += lengths[k]
	}
	if limit := int(float64(n) * r.opts.LeadMaxRatio); lead > limit {
		scaled := 0
		for k := 0; k < last; k++ {
			lengths[k] = lengths[k] * limit / lead
			scaled += lengths[k]
		}
		lead = scaled
	}
	lengths[last] = n - lead
	return lengths
}

// writeSegment renders one phoneme into [pos, pos+length) and, when the
// following segment starts no later than this one ends, a continuation tail
// the following segment crossfades against.
func (r *Renderer) writeSegment(w *writer, s *phoneme.Sample, pos, length, following int, hz, gain float64, curve *freq.Curve) {
	sr := r.cfg.SampleRate
	segEnd := pos + length
	tailLen := 0
	if following <= segEnd {
		tailLen = max(0, min(w.fade, following+w.fade-segEnd, len(w.out)-segEnd))
	}

	seg := r.pool.Get(length + tailLen)
	defer r.pool.Put(seg)
	steps := r.pool.Get(length)
	defer r.pool.Put(steps)

	// Source samples advanced per output sample.
	st := steps.Samples()
	rate := s.SampleRate / sr
	if s.Voiced() {
		curve.Fill(st, float64(pos)/sr, sr, r.cfg.BlockSize)
		vecmath.ScaleBlock(st, st, rate*hz/s.RecordedHz)
	} else {
		for i := range st {
			st[i] = rate
		}
	}

	fitted := r.pool.Get(resample.Consumed(st, length))
	defer r.pool.Put(fitted)
	switch {
	case !s.Voiced():
		resample.Linear(fitted.Samples(), s.Data)
	case r.opts.Stretch == StretchPitchSync:
		resample.FitPeriods(fitted.Samples(), s.Data, s.Period(), w.fade)
	default:
		resample.Splice(fitted.Samples(), s.Data, w.fade)
	}

	out := seg.Samples()
	body := out[:length]
	resample.Warp(body, fitted.Samples(), st, r.opts.Interpolation)

	var period float64
	if s.Voiced() {
		period = sr / (hz * curve.Multiplier(float64(segEnd)/sr))
	}
	resample.Extend(out[length:], body, period)

	vecmath.ScaleBlock(out, out, gain)
	w.write(pos, out, length)
}

// writer owns the render buffer for one render.
type writer struct {
	out   []float64
	fade  int
	fader *crossfade.Fader
	// end is one past the last sample holding earlier material, tails included.
	end int
}

// write places seg (body of length samples plus an optional tail) at pos.
// Earlier material overlapping the body head is crossfaded; leftovers of an
// earlier tail past seg are cleared so the later note wins.
func (w *writer) write(pos int, seg []float64, length int) {
	fade := 0
	if w.end > pos {
		fade = min(w.fade, w.end-pos, length)
	}
	w.fader.Apply(w.out, pos+fade, seg, fade)

	segEnd := min(pos+len(seg), len(w.out))
	if w.end > segEnd {
		clear(w.out[segEnd:w.end])
	}
	w.end = segEnd
}
