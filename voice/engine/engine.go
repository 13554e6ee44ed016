// Package engine owns the synthesis lifecycle: an Engine is created by Init
// at a fixed sample rate, renders timelines one at a time and is released
// by Terminate.
//
// Two call paths share the same renderer. The bulk path renders a whole
// timeline (RenderTimeline, RenderToSink, RenderToFile). The staged path
// keeps a frequency and a phoneme set by SetFrequency and PreparePhoneme and
// renders them as a single note with Preview. Talk turns plain text into a
// spoken timeline.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-vose/dsp/buffer"
	"github.com/cwbudde/algo-vose/dsp/core"
	"github.com/cwbudde/algo-vose/dsp/freq"
	"github.com/cwbudde/algo-vose/dsp/signal"
	"github.com/cwbudde/algo-vose/voice/phoneme"
	"github.com/cwbudde/algo-vose/voice/render"
	"github.com/cwbudde/algo-vose/voice/score"
	"github.com/cwbudde/algo-vose/voice/wavio"
)

var (
	// ErrNotInitialized is returned by every call on a terminated engine.
	ErrNotInitialized = errors.New("engine: not initialized")
	// ErrBusy is returned when a render is already running on the engine.
	ErrBusy = errors.New("engine: render in progress")
)

// Sink receives a finished render.
type Sink interface {
	Write(samples []float64, sampleRate int) error
}

// Metrics observes every render attempt.
type Metrics interface {
	ObserveRender(op string, elapsed time.Duration, rep render.Report, err error)
}

// state is the engine-scoped data. Staged fields are only read under the
// engine lock; the rest is fixed at Init.
type state struct {
	cfg        core.ProcessorConfig
	source     phoneme.Source
	pool       *buffer.Pool
	renderOpts []render.Option
	sinkOpts   []wavio.Option

	stagedHz    float64
	stagedLabel string
}

// Engine is a synthesis handle. Its methods are safe to call from several
// goroutines, but at most one render runs at a time; a second concurrent
// render fails with ErrBusy.
type Engine struct {
	mu      sync.Mutex
	st      *state
	busy    bool
	logger  zerolog.Logger
	metrics Metrics
}

// Init creates an engine rendering at sampleRate. Without WithSource the
// engine sings with the built-in sine oscillator voice.
func Init(sampleRate int, opts ...Option) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, configErr("init", fmt.Errorf("%w: %d", core.ErrInvalidSampleRate, sampleRate))
	}

	c := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	procOpts := append(append([]core.ProcessorOption(nil), c.procOpts...), core.WithSampleRate(float64(sampleRate)))
	cfg := core.ApplyProcessorOptions(procOpts...)
	if err := cfg.Validate(); err != nil {
		return nil, configErr("init", err)
	}

	src := c.source
	if src == nil {
		osc, err := phoneme.NewOscillator(cfg.SampleRate, signal.WaveSine)
		if err != nil {
			return nil, configErr("init", err)
		}
		src = osc
	}

	st := &state{
		cfg:        cfg,
		source:     src,
		pool:       buffer.NewPool(),
		renderOpts: c.renderOpts,
		sinkOpts:   c.sinkOpts,
		stagedHz:   freq.ReferenceHz,
	}
	if _, err := st.renderer(zerolog.Nop()); err != nil {
		return nil, err
	}

	e := &Engine{st: st, logger: c.logger, metrics: c.metrics}
	e.logger.Info().
		Int("sample_rate", sampleRate).
		Float64("fade_ms", cfg.FadeMs).
		Float64("bend_range", cfg.BendRange).
		Msg("engine initialized")
	return e, nil
}

func (s *state) renderer(l zerolog.Logger) (*render.Renderer, error) {
	opts := append(append([]render.Option(nil), s.renderOpts...), render.WithLogger(l), render.WithPool(s.pool))
	return render.New(s.source, s.cfg, opts...)
}

func configErr(op string, err error) error {
	return &render.Error{Kind: render.KindInvalidConfiguration, Op: op, NoteIndex: -1, Err: err}
}

// SampleRate returns the engine rate, or 0 after Terminate.
func (e *Engine) SampleRate() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st == nil {
		return 0
	}
	return int(e.st.cfg.SampleRate)
}

// Terminate releases the engine state. Later calls fail with
// ErrNotInitialized; calling Terminate again does nothing. A render already
// running finishes on the state it started with.
func (e *Engine) Terminate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st == nil {
		return
	}
	e.st = nil
	e.logger.Info().Msg("engine terminated")
}

// acquire marks the engine busy and returns a snapshot of its state.
func (e *Engine) acquire(op string) (state, func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.st == nil:
		return state{}, nil, configErr(op, ErrNotInitialized)
	case e.busy:
		return state{}, nil, configErr(op, ErrBusy)
	}
	e.busy = true
	return *e.st, func() {
		e.mu.Lock()
		e.busy = false
		e.mu.Unlock()
	}, nil
}

// SetFrequency stages the pitch used by Preview.
func (e *Engine) SetFrequency(hz float64) error {
	if !(hz > 0) || math.IsInf(hz, 0) {
		return configErr("set_frequency", fmt.Errorf("frequency must be > 0: %v", hz))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st == nil {
		return configErr("set_frequency", ErrNotInitialized)
	}
	e.st.stagedHz = hz
	return nil
}

// PreparePhoneme stages the phoneme used by Preview. An unknown label is
// reported and leaves the staged phoneme unchanged.
func (e *Engine) PreparePhoneme(label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st == nil {
		return configErr("prepare_phoneme", ErrNotInitialized)
	}
	if _, err := e.st.source.Lookup(label); err != nil {
		kind := render.KindIOFailure
		if errors.Is(err, phoneme.ErrUnknownPhoneme) {
			kind = render.KindUnknownPhoneme
		}
		return &render.Error{Kind: kind, Op: "prepare_phoneme", NoteIndex: -1, Label: label, Err: err}
	}
	e.st.stagedLabel = label
	return nil
}

// Preview renders the staged phoneme at the staged frequency for seconds.
// The frequency is realised as the nearest note plus a pitch scale.
func (e *Engine) Preview(seconds float64) ([]float64, error) {
	st, release, err := e.acquire("preview")
	if err != nil {
		return nil, err
	}
	defer release()

	if st.stagedLabel == "" {
		return nil, configErr("preview", errors.New("no phoneme prepared"))
	}
	if !(seconds > 0) || math.IsInf(seconds, 0) {
		return nil, &render.Error{
			Kind: render.KindInvalidNote, Op: "preview", NoteIndex: -1,
			Err: fmt.Errorf("duration must be > 0: %v", seconds),
		}
	}

	note := int(core.Clamp(math.Round(freq.HzToNote(st.stagedHz)), 0, score.MaxNoteNumber))
	tl := score.Timeline{
		PitchScale: st.stagedHz / freq.NoteToHz(note),
		Notes: []score.NoteEvent{{
			NoteNumber: note,
			Duration:   seconds,
			Velocity:   score.MaxVelocity,
			Lyrics:     st.stagedLabel,
		}},
	}
	res, err := e.run("preview", &st, tl, nil)
	if err != nil {
		return nil, err
	}
	return res.Samples, nil
}

// RenderTimeline renders tl and returns the samples with a report.
func (e *Engine) RenderTimeline(tl score.Timeline) (*render.Result, error) {
	st, release, err := e.acquire("render")
	if err != nil {
		return nil, err
	}
	defer release()
	return e.run("render", &st, tl, nil)
}

// RenderToSink renders tl and hands the samples to sink. Sink failures are
// reported with render.KindIOFailure.
func (e *Engine) RenderToSink(sink Sink, tl score.Timeline) (render.Report, error) {
	if sink == nil {
		return render.Report{}, configErr("render_to_sink", errors.New("nil sink"))
	}
	st, release, err := e.acquire("render_to_sink")
	if err != nil {
		return render.Report{}, err
	}
	defer release()

	res, err := e.run("render_to_sink", &st, tl, sink)
	if err != nil {
		return render.Report{}, err
	}
	return res.Report, nil
}

// RenderToFile renders tl into a WAV file at path using the engine's sink
// options. Nothing is written when rendering fails.
func (e *Engine) RenderToFile(path string, tl score.Timeline) (render.Report, error) {
	if path == "" {
		return render.Report{}, configErr("render_to_file", errors.New("empty output path"))
	}
	st, release, err := e.acquire("render_to_file")
	if err != nil {
		return render.Report{}, err
	}
	defer release()

	res, err := e.run("render_to_file", &st, tl, wavio.NewFileSink(path, st.sinkOpts...))
	if err != nil {
		return render.Report{}, err
	}
	return res.Report, nil
}

// Talk speaks text: every syllable becomes a short note at a fixed pitch,
// speed scales the syllable rate and pitch scales the frequency.
func (e *Engine) Talk(text string, speed, pitch float64) ([]float64, error) {
	tl, err := score.FromText(text, speed, pitch)
	if err != nil {
		return nil, configErr("talk", err)
	}
	st, release, err := e.acquire("talk")
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := e.run("talk", &st, tl, nil)
	if err != nil {
		return nil, err
	}
	return res.Samples, nil
}

func (e *Engine) run(op string, st *state, tl score.Timeline, sink Sink) (*render.Result, error) {
	log := e.logger.With().Str("render_id", uuid.NewString()).Str("op", op).Logger()
	began := time.Now()

	var res *render.Result
	r, err := st.renderer(log)
	if err == nil {
		res, err = r.Render(tl)
	}
	if err == nil && sink != nil {
		if werr := sink.Write(res.Samples, int(st.cfg.SampleRate)); werr != nil {
			err = &render.Error{Kind: render.KindIOFailure, Op: "write", NoteIndex: -1, Err: werr}
		}
	}

	elapsed := time.Since(began)
	var rep render.Report
	if err == nil {
		rep = res.Report
	}
	if e.metrics != nil {
		e.metrics.ObserveRender(op, elapsed, rep, err)
	}
	if err != nil {
		log.Error().Err(err).Str("kind", render.KindOf(err).String()).Msg("render failed")
		return nil, err
	}

	log.Info().
		Int("notes", rep.Notes).
		Int("skipped", rep.Skipped).
		Int("segments", rep.Segments).
		Float64("seconds", rep.Seconds).
		Float64("peak_db", rep.PeakDB).
		Int("clipped", rep.Clipped).
		Dur("elapsed", elapsed).
		Msg("render finished")
	return res, nil
}
