// Package wavio reads and writes mono PCM WAV files.
//
// Encoding converts float samples through a dither.Quantizer with a fixed
// seed, so equal input always yields byte-identical files.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-vose/dsp/dither"
)

// ErrInvalidFile is returned for input that is not a PCM WAV file.
var ErrInvalidFile = errors.New("wavio: invalid wav file")

// Options configures encoding.
type Options struct {
	BitDepth int
	Dither   dither.DitherType
	Shaping  dither.Preset
	Seed     uint64
}

// DefaultOptions returns 16-bit output with triangular dither and
// 9th-order noise shaping.
func DefaultOptions() Options {
	return Options{BitDepth: 16, Dither: dither.DitherTriangular, Shaping: dither.Preset9FC, Seed: 1}
}

// Option mutates Options.
type Option func(*Options)

// WithBitDepth selects 16, 24 or 32-bit output.
func WithBitDepth(bits int) Option {
	return func(o *Options) { o.BitDepth = bits }
}

// WithDither selects the dither noise type.
func WithDither(dt dither.DitherType) Option {
	return func(o *Options) { o.Dither = dt }
}

// WithShaping selects the noise-shaping preset.
func WithShaping(p dither.Preset) Option {
	return func(o *Options) { o.Shaping = p }
}

// WithSeed sets the dither seed.
func WithSeed(seed uint64) Option {
	return func(o *Options) { o.Seed = seed }
}

func (o Options) validate() error {
	switch o.BitDepth {
	case 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("wavio: unsupported bit depth %d", o.BitDepth)
	}
}

// Encode writes samples as a mono WAV stream. It returns the number of
// input samples outside [-1, 1], which are clamped.
func Encode(w io.WriteSeeker, samples []float64, sampleRate int, opts ...Option) (int, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := o.validate(); err != nil {
		return 0, err
	}
	if sampleRate <= 0 {
		return 0, fmt.Errorf("wavio: invalid sample rate %d", sampleRate)
	}

	q, err := dither.NewQuantizer(
		dither.WithBitDepth(o.BitDepth),
		dither.WithDitherType(o.Dither),
		dither.WithFIRPreset(o.Shaping),
		dither.WithSeed(o.Seed),
	)
	if err != nil {
		return 0, fmt.Errorf("wavio: %w", err)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: o.BitDepth,
	}
	clipped := q.Quantize(buf.Data, samples)

	enc := wav.NewEncoder(w, sampleRate, o.BitDepth, 1, 1)
	if err := enc.Write(buf); err != nil {
		return clipped, fmt.Errorf("wavio: write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return clipped, fmt.Errorf("wavio: close wav encoder: %w", err)
	}
	return clipped, nil
}

// FileSink writes each render to a WAV file at Path.
type FileSink struct {
	Path    string
	Options []Option

	// Clipped holds the clamped-sample count of the last write.
	Clipped int
}

// NewFileSink returns a sink writing to path.
func NewFileSink(path string, opts ...Option) *FileSink {
	return &FileSink{Path: path, Options: opts}
}

// Write encodes samples into the sink's file, creating parent directories.
// A failed write removes the partial file.
func (s *FileSink) Write(samples []float64, sampleRate int) (err error) {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("wavio: create output dir: %w", err)
		}
	}

	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("wavio: create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("wavio: close output: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(s.Path)
		}
	}()

	s.Clipped, err = Encode(f, samples, sampleRate, s.Options...)
	return err
}

// Decode reads a PCM WAV stream and returns its samples mixed down to mono
// in [-1, 1] together with the sample rate.
func Decode(r io.ReadSeeker) ([]float64, int, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, 0, ErrInvalidFile
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wavio: decode pcm: %w", err)
	}

	bitDepth := int(d.SampleBitDepth())
	channels := buf.Format.NumChannels
	if bitDepth == 0 || channels <= 0 {
		return nil, 0, fmt.Errorf("%w: %d-bit, %d channels", ErrInvalidFile, bitDepth, channels)
	}

	scale := 1 / math.Exp2(float64(bitDepth-1))
	var offset int
	if bitDepth == 8 {
		// 8-bit PCM is unsigned.
		offset = 128
	}

	frames := len(buf.Data) / channels
	out := make([]float64, frames)
	for i := range out {
		var sum int
		for c := 0; c < channels; c++ {
			sum += buf.Data[i*channels+c] - offset
		}
		out[i] = float64(sum) * scale / float64(channels)
	}

	return out, buf.Format.SampleRate, nil
}

// DecodeFile reads the WAV file at path.
func DecodeFile(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("wavio: open: %w", err)
	}
	defer f.Close()

	return Decode(f)
}
