package freq

import "sort"

// PitchEvent is one pitch-bend control point.
type PitchEvent struct {
	// Time in seconds.
	Time float64 `json:"time" yaml:"time"`
	// Value in -8192..8191; 0 is no bend.
	Value int `json:"value" yaml:"value"`
}

// Curve is a piecewise-linear pitch-bend curve.
// Before the first and after the last event the curve holds the nearest
// defined value; an empty curve is flat at zero.
type Curve struct {
	events         []PitchEvent
	origin         float64
	rangeSemitones float64
}

// NewCurve builds a curve from events whose times are relative to origin.
// Events are copied; they are sorted by time if the caller did not.
func NewCurve(events []PitchEvent, origin, rangeSemitones float64) *Curve {
	ev := append([]PitchEvent(nil), events...)
	if !sort.SliceIsSorted(ev, func(i, j int) bool { return ev[i].Time < ev[j].Time }) {
		sort.SliceStable(ev, func(i, j int) bool { return ev[i].Time < ev[j].Time })
	}
	return &Curve{events: ev, origin: origin, rangeSemitones: rangeSemitones}
}

// Flat reports whether the curve never deviates from zero bend.
func (c *Curve) Flat() bool {
	if c == nil {
		return true
	}
	for _, e := range c.events {
		if e.Value != 0 {
			return false
		}
	}
	return true
}

// Value returns the interpolated bend value at absolute time t.
func (c *Curve) Value(t float64) float64 {
	if c == nil || len(c.events) == 0 {
		return 0
	}
	rel := t - c.origin
	ev := c.events
	if rel <= ev[0].Time {
		return ClampBend(float64(ev[0].Value))
	}
	last := ev[len(ev)-1]
	if rel >= last.Time {
		return ClampBend(float64(last.Value))
	}

	// First event strictly after rel; ev[i-1] brackets from below.
	i := sort.Search(len(ev), func(k int) bool { return ev[k].Time > rel })
	a, b := ev[i-1], ev[i]
	span := b.Time - a.Time
	if span <= 0 {
		return ClampBend(float64(b.Value))
	}
	frac := (rel - a.Time) / span
	return ClampBend(float64(a.Value) + frac*float64(b.Value-a.Value))
}

// Multiplier returns the frequency multiplier at absolute time t.
func (c *Curve) Multiplier(t float64) float64 {
	if c == nil {
		return 1
	}
	return BendRatio(c.Value(t), c.rangeSemitones)
}

// MultiplierAt returns the multiplier at sample index sampleIndex of a
// stream running at sampleRate whose index 0 is absolute time zero.
func (c *Curve) MultiplierAt(sampleIndex int, sampleRate float64) float64 {
	return c.Multiplier(float64(sampleIndex) / sampleRate)
}

// Fill writes per-sample multipliers for times t0 + i/sampleRate into dst.
// Exact values are computed every block samples and linearly interpolated
// in between; block <= 1 evaluates every sample.
func (c *Curve) Fill(dst []float64, t0, sampleRate float64, block int) {
	if len(dst) == 0 {
		return
	}
	if c.Flat() {
		for i := range dst {
			dst[i] = 1
		}
		return
	}
	if block <= 1 {
		for i := range dst {
			dst[i] = c.Multiplier(t0 + float64(i)/sampleRate)
		}
		return
	}

	n := len(dst)
	prev := c.Multiplier(t0)
	for start := 0; start < n; start += block {
		end := min(start+block, n)
		next := c.Multiplier(t0 + float64(end)/sampleRate)
		step := (next - prev) / float64(end-start)
		for i := start; i < end; i++ {
			dst[i] = prev + step*float64(i-start)
		}
		prev = next
	}
}
