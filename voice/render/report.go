package render

import (
	timestats "github.com/cwbudde/algo-vose/stats/time"
)

// Report summarises one render.
type Report struct {
	// Notes is the number of notes that produced audio.
	Notes int
	// Skipped counts notes with no duration.
	Skipped  int
	Segments int
	Samples  int
	Seconds  float64
	PeakDB   float64
	RMSDB    float64
	// Clipped counts samples outside [-1, 1].
	Clipped int
}

func (r *Report) measure(samples []float64, sampleRate float64) {
	st := timestats.Calculate(samples)
	r.Samples = st.Length
	r.Seconds = float64(st.Length) / sampleRate
	r.PeakDB = st.Peak_dB
	r.RMSDB = st.RMS_dB
	r.Clipped = st.Clipped
}
