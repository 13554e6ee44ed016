package core

import (
	"errors"
	"testing"
)

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(96000), WithBlockSize(32), WithFadeMs(5), WithBendRange(12))
	if cfg.SampleRate != 96000 {
		t.Fatalf("sample rate = %v, want 96000", cfg.SampleRate)
	}
	if cfg.BlockSize != 32 {
		t.Fatalf("block size = %d, want 32", cfg.BlockSize)
	}
	if cfg.FadeMs != 5 {
		t.Fatalf("fade = %v, want 5", cfg.FadeMs)
	}
	if cfg.BendRange != 12 {
		t.Fatalf("bend range = %v, want 12", cfg.BendRange)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(0), WithBlockSize(-1), WithFadeMs(-3), WithBendRange(0))
	def := DefaultProcessorConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultProcessorConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	cfg := DefaultProcessorConfig()
	cfg.SampleRate = -1
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("Validate() error = %v, want ErrInvalidSampleRate", err)
	}
}

func TestFadeSamples(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(48000), WithFadeMs(10))
	if got := cfg.FadeSamples(); got != 480 {
		t.Fatalf("FadeSamples() = %d, want 480", got)
	}
	cfg = ApplyProcessorOptions(WithFadeMs(0))
	if got := cfg.FadeSamples(); got != 0 {
		t.Fatalf("FadeSamples() = %d, want 0", got)
	}
}
