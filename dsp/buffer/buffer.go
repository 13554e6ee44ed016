package buffer

// Buffer wraps a float64 slice with reuse-friendly semantics.
// DSP functions accept raw []float64; use Samples() to bridge.
type Buffer struct {
	samples []float64
}

// New returns a zero-filled Buffer of the given length.
func New(length int) *Buffer {
	if length < 0 {
		length = 0
	}
	return &Buffer{samples: make([]float64, length)}
}

// FromSlice wraps an existing slice without copying.
// Mutations to the slice are visible through the Buffer and vice versa.
func FromSlice(s []float64) *Buffer {
	return &Buffer{samples: s}
}

// Samples returns the underlying slice.
func (b *Buffer) Samples() []float64 {
	return b.samples
}

// Len returns the current number of samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Cap returns the current capacity of the backing slice.
func (b *Buffer) Cap() int {
	return cap(b.samples)
}

// Resize sets the length to n, reusing existing capacity when possible.
// New elements beyond the previous length are zeroed.
func (b *Buffer) Resize(n int) {
	if n < 0 {
		n = 0
	}
	oldLen := len(b.samples)
	if n <= cap(b.samples) {
		b.samples = b.samples[:n]
	} else {
		s := make([]float64, n)
		copy(s, b.samples)
		b.samples = s
	}
	// The backing array may hold stale data from an earlier use.
	if n > oldLen {
		for i := oldLen; i < n; i++ {
			b.samples[i] = 0
		}
	}
}

// Zero sets all samples to 0.
func (b *Buffer) Zero() {
	for i := range b.samples {
		b.samples[i] = 0
	}
}

// ZeroRange sets samples in [start, end) to 0.
// Indices are clamped to valid bounds.
func (b *Buffer) ZeroRange(start, end int) {
	start, end = b.clampRange(start, end)
	for i := start; i < end; i++ {
		b.samples[i] = 0
	}
}

// Region returns the sub-slice [start, end) clamped to valid bounds.
// The result aliases the buffer.
func (b *Buffer) Region(start, end int) []float64 {
	start, end = b.clampRange(start, end)
	return b.samples[start:end]
}

// WriteAt overwrites samples starting at offset with src and returns the
// number of samples written. Samples falling outside the buffer are dropped.
func (b *Buffer) WriteAt(offset int, src []float64) int {
	if offset < 0 {
		if -offset >= len(src) {
			return 0
		}
		src = src[-offset:]
		offset = 0
	}
	if offset >= len(b.samples) {
		return 0
	}
	return copy(b.samples[offset:], src)
}

// Copy returns a deep copy of the buffer.
func (b *Buffer) Copy() *Buffer {
	s := make([]float64, len(b.samples))
	copy(s, b.samples)
	return &Buffer{samples: s}
}

// Detach returns the underlying slice and leaves the Buffer empty, handing
// ownership of the samples to the caller.
func (b *Buffer) Detach() []float64 {
	s := b.samples
	b.samples = nil
	return s
}

func (b *Buffer) clampRange(start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > len(b.samples) {
		end = len(b.samples)
	}
	if start > end {
		start = end
	}
	return start, end
}
