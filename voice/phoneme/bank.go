package phoneme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-vose/dsp/f0"
	"github.com/cwbudde/algo-vose/dsp/resample"
	"github.com/cwbudde/algo-vose/voice/wavio"
)

// ManifestName is the optional manifest file inside a bank directory.
const ManifestName = "voicebank.yaml"

// Manifest describes a voice bank.
type Manifest struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Phonemes    map[string]Entry `yaml:"phonemes"`
}

// Entry maps one label to its WAV file. A missing recorded_hz is estimated
// from the audio; an explicit 0 marks the phoneme unvoiced.
type Entry struct {
	File       string   `yaml:"file"`
	RecordedHz *float64 `yaml:"recorded_hz"`
}

// Bank is a voice ("character") loaded from a directory of WAV phonemes.
type Bank struct {
	name    string
	samples MapSource
}

type bankConfig struct {
	targetRate float64
	logger     zerolog.Logger
	quality    resample.Quality
}

// BankOption configures LoadBank.
type BankOption func(*bankConfig)

// WithTargetRate converts every sample to rate at load time.
func WithTargetRate(rate float64) BankOption {
	return func(c *bankConfig) { c.targetRate = rate }
}

// WithBankLogger logs per-phoneme load details at debug level.
func WithBankLogger(l zerolog.Logger) BankOption {
	return func(c *bankConfig) { c.logger = l }
}

// WithResampleQuality selects the rate-conversion filter.
func WithResampleQuality(q resample.Quality) BankOption {
	return func(c *bankConfig) { c.quality = q }
}

// LoadBank reads the bank in dir. With a voicebank.yaml manifest only the
// listed phonemes are loaded; otherwise every *.wav file is loaded under its
// base name.
func LoadBank(dir string, opts ...BankOption) (*Bank, error) {
	cfg := bankConfig{logger: zerolog.Nop(), quality: resample.QualityBalanced}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	m, err := readManifest(dir)
	if err != nil {
		return nil, err
	}
	if len(m.Phonemes) == 0 {
		return nil, fmt.Errorf("phoneme: bank %s has no phonemes", dir)
	}

	b := &Bank{name: m.Name, samples: MapSource{}}
	labels := make([]string, 0, len(m.Phonemes))
	for l := range m.Phonemes {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	for _, label := range labels {
		s, err := loadSample(dir, label, m.Phonemes[label], cfg)
		if err != nil {
			return nil, err
		}
		cfg.logger.Debug().
			Str("label", label).
			Float64("recorded_hz", s.RecordedHz).
			Float64("seconds", s.Seconds()).
			Msg("phoneme loaded")
		b.samples.Add(s)
	}

	return b, nil
}

func readManifest(dir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	switch {
	case err == nil:
		var m Manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Manifest{}, fmt.Errorf("phoneme: parse %s: %w", ManifestName, err)
		}
		if m.Name == "" {
			m.Name = filepath.Base(dir)
		}
		return m, nil
	case !errors.Is(err, os.ErrNotExist):
		return Manifest{}, fmt.Errorf("phoneme: read manifest: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.wav"))
	if err != nil {
		return Manifest{}, fmt.Errorf("phoneme: scan bank: %w", err)
	}
	m := Manifest{Name: filepath.Base(dir), Phonemes: map[string]Entry{}}
	for _, f := range files {
		base := filepath.Base(f)
		m.Phonemes[strings.TrimSuffix(base, filepath.Ext(base))] = Entry{File: base}
	}
	return m, nil
}

func loadSample(dir, label string, e Entry, cfg bankConfig) (*Sample, error) {
	file := e.File
	if file == "" {
		file = label + ".wav"
	}
	data, rate, err := wavio.DecodeFile(filepath.Join(dir, file))
	if err != nil {
		return nil, fmt.Errorf("phoneme: load %q: %w", label, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("phoneme: load %q: empty sample", label)
	}

	s := &Sample{Label: label, Data: data, SampleRate: float64(rate)}
	if e.RecordedHz != nil {
		s.RecordedHz = max(0, *e.RecordedHz)
	} else {
		est, err := f0.New(s.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("phoneme: estimate %q: %w", label, err)
		}
		res, err := est.Estimate(data)
		switch {
		case errors.Is(err, f0.ErrTooShort):
			// Too short to carry a pitch; treated as unvoiced.
		case err != nil:
			return nil, fmt.Errorf("phoneme: estimate %q: %w", label, err)
		default:
			s.RecordedHz = res.Hz
		}
	}

	if cfg.targetRate > 0 && cfg.targetRate != s.SampleRate {
		converted, err := resample.Convert(s.Data, s.SampleRate, cfg.targetRate, resample.WithQuality(cfg.quality))
		if err != nil {
			return nil, fmt.Errorf("phoneme: convert %q: %w", label, err)
		}
		s.Data = converted
		s.SampleRate = cfg.targetRate
	}
	return s, nil
}

// Name returns the bank's display name.
func (b *Bank) Name() string {
	return b.name
}

// Labels returns the loaded labels in sorted order.
func (b *Bank) Labels() []string {
	return b.samples.Labels()
}

// Lookup implements Source.
func (b *Bank) Lookup(label string) (*Sample, error) {
	return b.samples.Lookup(label)
}
