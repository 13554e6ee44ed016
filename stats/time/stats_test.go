package time

import (
	"math"
	"testing"
)

func TestCalculateEmpty(t *testing.T) {
	s := Calculate(nil)
	if s.Length != 0 || !math.IsInf(s.Peak_dB, -1) || !math.IsInf(s.RMS_dB, -1) {
		t.Fatalf("Calculate(nil) = %+v", s)
	}
}

func TestCalculate(t *testing.T) {
	s := Calculate([]float64{0.5, -1.5, 0.25, 0.25})

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"dc", s.DC, -0.125},
		{"peak", s.Peak, 1.5},
		{"peak dB", s.Peak_dB, 20 * math.Log10(1.5)},
		{"rms", s.RMS, math.Sqrt((0.25 + 2.25 + 0.0625 + 0.0625) / 4)},
		{"max delta", s.MaxDelta, 2},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-12 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if s.PeakPos != 1 {
		t.Errorf("PeakPos = %d, want 1", s.PeakPos)
	}
	if s.Clipped != 1 {
		t.Errorf("Clipped = %d, want 1", s.Clipped)
	}
	if s.ZeroCrossings != 2 {
		t.Errorf("ZeroCrossings = %d, want 2", s.ZeroCrossings)
	}
	if math.Abs(s.CrestFactor-1.5/s.RMS) > 1e-12 {
		t.Errorf("CrestFactor = %v", s.CrestFactor)
	}
}

func TestHelpersAgreeWithCalculate(t *testing.T) {
	x := make([]float64, 257)
	for i := range x {
		x[i] = math.Sin(float64(i) * 0.37)
	}
	s := Calculate(x)
	if RMS(x) != s.RMS {
		t.Errorf("RMS() = %v, want %v", RMS(x), s.RMS)
	}
	if Peak(x) != s.Peak {
		t.Errorf("Peak() = %v, want %v", Peak(x), s.Peak)
	}
	if MaxDelta(x) != s.MaxDelta {
		t.Errorf("MaxDelta() = %v, want %v", MaxDelta(x), s.MaxDelta)
	}
	if RMS(nil) != 0 || Peak(nil) != 0 || MaxDelta([]float64{1}) != 0 {
		t.Error("empty helpers should return 0")
	}
}
