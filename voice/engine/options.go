package engine

import (
	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-vose/dsp/core"
	"github.com/cwbudde/algo-vose/voice/phoneme"
	"github.com/cwbudde/algo-vose/voice/render"
	"github.com/cwbudde/algo-vose/voice/wavio"
)

type options struct {
	source     phoneme.Source
	logger     zerolog.Logger
	metrics    Metrics
	procOpts   []core.ProcessorOption
	renderOpts []render.Option
	sinkOpts   []wavio.Option
}

// Option configures Init.
type Option func(*options)

// WithSource sets the phoneme source (a voice bank, for instance).
func WithSource(src phoneme.Source) Option {
	return func(o *options) { o.source = src }
}

// WithLogger sets the engine logger. Render summaries are logged at info,
// per-note detail at debug.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics registers a render observer.
func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithProcessorOptions adjusts fade, bend range and bend block size. The
// sample rate always comes from Init.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(o *options) { o.procOpts = append(o.procOpts, opts...) }
}

// WithRenderOptions passes options to every renderer the engine builds.
func WithRenderOptions(opts ...render.Option) Option {
	return func(o *options) { o.renderOpts = append(o.renderOpts, opts...) }
}

// WithSinkOptions sets the WAV encoding used by RenderToFile.
func WithSinkOptions(opts ...wavio.Option) Option {
	return func(o *options) { o.sinkOpts = append(o.sinkOpts, opts...) }
}
