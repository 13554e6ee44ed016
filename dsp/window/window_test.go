package window

import (
	"errors"
	"math"
	"testing"
)

func TestGenerateFinite(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeTriangle, TypeKaiser} {
		w := Generate(typ, 64)
		if len(w) != 64 {
			t.Fatalf("type %d: len=%d, want 64", typ, len(w))
		}
		for i, v := range w {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("type %d: coefficient[%d] invalid: %v", typ, i, v)
			}
		}
	}
}

func TestGenerateSymmetric(t *testing.T) {
	w := Generate(TypeHann, 33)
	for i := range w {
		if d := math.Abs(w[i] - w[len(w)-1-i]); d > 1e-12 {
			t.Fatalf("asymmetry at %d: %v", i, d)
		}
	}
	if math.Abs(w[16]-1) > 1e-12 {
		t.Fatalf("centre = %v, want 1", w[16])
	}
}

func TestPeriodicHann(t *testing.T) {
	w := Generate(TypeHann, 8, WithPeriodic())
	if w[0] != 0 {
		t.Fatalf("w[0] = %v, want 0", w[0])
	}
	if math.Abs(w[4]-1) > 1e-12 {
		t.Fatalf("w[4] = %v, want 1", w[4])
	}
}

func TestRiseCurves(t *testing.T) {
	const n = 16
	lin := Rise(TypeTriangle, n)
	cos := Rise(TypeHann, n)
	for i := 0; i < n; i++ {
		want := float64(i) / n
		if math.Abs(lin[i]-want) > 1e-12 {
			t.Fatalf("linear[%d] = %v, want %v", i, lin[i], want)
		}
		wantCos := 0.5 - 0.5*math.Cos(math.Pi*want)
		if math.Abs(cos[i]-wantCos) > 1e-12 {
			t.Fatalf("raised cosine[%d] = %v, want %v", i, cos[i], wantCos)
		}
		if i > 0 && cos[i] < cos[i-1] {
			t.Fatalf("raised cosine not monotone at %d", i)
		}
	}
}

func TestKaiser(t *testing.T) {
	for _, tt := range []struct {
		size int
		beta float64
	}{{0, 5}, {16, -1}, {16, math.NaN()}} {
		if _, err := Kaiser(tt.size, tt.beta); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("Kaiser(%d, %v) error = %v, want ErrInvalidParameter", tt.size, tt.beta, err)
		}
	}

	flat, err := Kaiser(17, 0)
	if err != nil {
		t.Fatalf("Kaiser() error = %v", err)
	}
	for i, v := range flat {
		if v != 1 {
			t.Fatalf("beta=0 coefficient[%d] = %v, want 1", i, v)
		}
	}

	w, _ := Kaiser(17, 8)
	if math.Abs(w[8]-1) > 1e-12 || w[0] >= w[4] || w[0] <= 0 {
		t.Fatalf("kaiser shape = %v", w)
	}
}
