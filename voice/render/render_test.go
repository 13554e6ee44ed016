package render

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-vose/dsp/buffer"
	"github.com/cwbudde/algo-vose/dsp/core"
	"github.com/cwbudde/algo-vose/dsp/crossfade"
	"github.com/cwbudde/algo-vose/dsp/interp"
	"github.com/cwbudde/algo-vose/dsp/signal"
	"github.com/cwbudde/algo-vose/internal/testutil"
	timestats "github.com/cwbudde/algo-vose/stats/time"
	"github.com/cwbudde/algo-vose/voice/phoneme"
	"github.com/cwbudde/algo-vose/voice/score"
)

func newRenderer(t *testing.T, src phoneme.Source, rate float64, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(src, core.ApplyProcessorOptions(core.WithSampleRate(rate)), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func sineSource(hz, rate, seconds float64) phoneme.MapSource {
	n := int(seconds * rate)
	return phoneme.MapSource{
		"a": {Label: "a", Data: testutil.DeterministicSine(hz, rate, 0.5, n), SampleRate: rate, RecordedHz: hz},
	}
}

func TestRenderSingleNote(t *testing.T) {
	const rate = 44100.0
	data := testutil.ShiftedSine(220, rate, 0.5, 0.4, 0.3, 22050)
	src := phoneme.MapSource{"a": {Label: "a", Data: data, SampleRate: rate, RecordedHz: 220}}

	for _, stretch := range []Stretch{StretchPitchSync, StretchLinear} {
		t.Run(stretch.String(), func(t *testing.T) {
			r := newRenderer(t, src, rate, WithStretch(stretch))
			res, err := r.Render(score.Timeline{Notes: []score.NoteEvent{
				{NoteNumber: 69, Duration: 1, Velocity: 127, Lyrics: "a"},
			}})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			out := res.Samples
			if len(out) != int(rate) {
				t.Fatalf("len = %d, want %d", len(out), int(rate))
			}
			if out[0] != data[0] || out[len(out)-1] != data[len(data)-1] {
				t.Fatalf("endpoints = (%v, %v), want (%v, %v)", out[0], out[len(out)-1], data[0], data[len(data)-1])
			}
			testutil.RequireFinite(t, out)
			if res.Report.Notes != 1 || res.Report.Segments != 1 || res.Report.Samples != len(out) {
				t.Fatalf("report = %+v", res.Report)
			}
		})
	}
}

func TestRenderPitch(t *testing.T) {
	const rate = 44100.0
	src := sineSource(440, rate, 0.5)

	tests := []struct {
		name  string
		tl    score.Timeline
		want  float64
		slack float64
	}{
		{"octave up", score.Timeline{Notes: []score.NoteEvent{{NoteNumber: 81, Duration: 1, Velocity: 127, Lyrics: "a"}}}, 880, 0.02},
		{"fifth down", score.Timeline{Notes: []score.NoteEvent{{NoteNumber: 62, Duration: 0.8, Velocity: 127, Lyrics: "a"}}}, freqOf(62), 0.02},
		{"pitch scale", score.Timeline{PitchScale: 1.5, Notes: []score.NoteEvent{{NoteNumber: 69, Duration: 1, Velocity: 127, Lyrics: "a"}}}, 660, 0.02},
		{"full bend", score.Timeline{
			PitchBend: []score.PitchEvent{{Time: 0, Value: 8191}},
			Notes:     []score.NoteEvent{{NoteNumber: 69, Duration: 1, Velocity: 127, Lyrics: "a"}},
		}, 440 * math.Exp2(8191.0/8192/6), 0.02},
	}
	for _, stretch := range []Stretch{StretchPitchSync, StretchLinear} {
		r := newRenderer(t, src, rate, WithStretch(stretch))
		for _, tt := range tests {
			t.Run(stretch.String()+"/"+tt.name, func(t *testing.T) {
				res, err := r.Render(tt.tl)
				if err != nil {
					t.Fatalf("Render() error = %v", err)
				}
				got := testutil.CrossingHz(res.Samples, rate)
				if math.Abs(got-tt.want)/tt.want > tt.slack {
					t.Fatalf("pitch = %.2f Hz, want %.2f Hz", got, tt.want)
				}
			})
		}
	}
}

func TestRenderPitchPerNote(t *testing.T) {
	const rate = 44100.0
	src := sineSource(233, rate, 0.5)
	tl := score.Timeline{Notes: []score.NoteEvent{
		{NoteNumber: 60, Start: 0, Duration: 0.5, Velocity: 127, Lyrics: "a"},
		{NoteNumber: 67, Start: 0.5, Duration: 0.5, Velocity: 127, Lyrics: "a"},
	}}

	for _, stretch := range []Stretch{StretchPitchSync, StretchLinear} {
		t.Run(stretch.String(), func(t *testing.T) {
			r := newRenderer(t, src, rate, WithStretch(stretch))
			res, err := r.Render(tl)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			// Skip the joins and measure each note body on its own.
			margin := 2205
			for i, note := range tl.Notes {
				from := int(note.Start*rate) + margin
				to := int((note.Start+note.Duration)*rate) - margin
				got := testutil.CrossingHz(res.Samples[from:to], rate)
				if want := freqOf(note.NoteNumber); math.Abs(got-want)/want > 0.02 {
					t.Fatalf("note %d pitch = %.2f Hz, want %.2f Hz", i, got, want)
				}
			}
		})
	}
}

func freqOf(note int) float64 {
	return 440 * math.Exp2(float64(note-69)/12)
}

func TestRenderIdempotent(t *testing.T) {
	osc, err := phoneme.NewOscillator(22050, signal.WaveSawtooth)
	if err != nil {
		t.Fatal(err)
	}
	r := newRenderer(t, osc, 22050, WithInterpolation(interp.ModeHermite))
	tl := score.Timeline{
		PitchBend: []score.PitchEvent{{Time: 0, Value: 0}, {Time: 1, Value: 4096}},
		Notes: []score.NoteEvent{
			{NoteNumber: 64, Start: 0.4, Duration: 0.5, Velocity: 90, Lyrics: "ri", Phonemes: []string{"r", "i"}},
			{NoteNumber: 60, Start: 0, Duration: 0.4, Velocity: 110, Lyrics: "ka", Phonemes: []string{"k", "a"}},
			{
				NoteNumber: 67, Start: 0.9, Duration: 0.3, Velocity: 127, Lyrics: "sa",
				PitchBend: []score.PitchEvent{{Time: 0, Value: -8192}, {Time: 0.2, Value: 0}},
			},
		},
	}

	first, err := r.Render(tl)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	second, err := r.Render(tl)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	testutil.RequireIdentical(t, second.Samples, first.Samples)
	if first.Report.Notes != 3 || first.Report.Segments != 5 {
		t.Fatalf("report = %+v", first.Report)
	}
}

func TestRenderSkipsEmptyNotes(t *testing.T) {
	r := newRenderer(t, sineSource(440, 44100, 0.1), 44100)

	tests := []struct {
		name    string
		notes   []score.NoteEvent
		wantLen int
		skipped int
	}{
		{"empty timeline", nil, 0, 0},
		{"zero duration", []score.NoteEvent{{NoteNumber: 69, Velocity: 127, Lyrics: "a"}}, 0, 1},
		{"negative duration", []score.NoteEvent{{NoteNumber: 69, Start: 1, Duration: -1, Velocity: 127, Lyrics: "a"}}, 0, 1},
		{"shorter than a sample", []score.NoteEvent{{NoteNumber: 69, Duration: 1e-6, Velocity: 127, Lyrics: "a"}}, 0, 1},
		{"mixed", []score.NoteEvent{
			{NoteNumber: 69, Duration: 0, Velocity: 127, Lyrics: "zz"},
			{NoteNumber: 69, Start: 0.5, Duration: 0.5, Velocity: 127, Lyrics: "a"},
		}, 44100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Render(score.Timeline{Notes: tt.notes})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if len(res.Samples) != tt.wantLen || res.Report.Skipped != tt.skipped {
				t.Fatalf("len = %d skipped = %d, want %d and %d", len(res.Samples), res.Report.Skipped, tt.wantLen, tt.skipped)
			}
		})
	}
}

func TestRenderLeadingSilence(t *testing.T) {
	r := newRenderer(t, sineSource(440, 44100, 0.2), 44100)
	res, err := r.Render(score.Timeline{Notes: []score.NoteEvent{
		{NoteNumber: 69, Start: 0.5, Duration: 0.25, Velocity: 127, Lyrics: "a"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Samples) != 33075 {
		t.Fatalf("len = %d, want 33075", len(res.Samples))
	}
	for i, v := range res.Samples[:22050] {
		if v != 0 {
			t.Fatalf("sample %d = %v before the note", i, v)
		}
	}
}

func TestRenderCrossfadeJoin(t *testing.T) {
	// 100-sample periods line up with every note boundary.
	const rate = 44000.0
	src := sineSource(440, rate, 0.5)
	limit := timestats.MaxDelta(src["a"].Data)

	r := newRenderer(t, src, rate)
	res, err := r.Render(score.Timeline{Notes: []score.NoteEvent{
		{NoteNumber: 69, Start: 0, Duration: 0.5, Velocity: 127, Lyrics: "a"},
		{NoteNumber: 69, Start: 0.5, Duration: 0.5, Velocity: 127, Lyrics: "a"},
	}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	fade := core.MsToSamples(10, rate)
	join := 22000
	region := res.Samples[join-1 : join+fade+1]
	if got := timestats.MaxDelta(region); got > limit+1e-9 {
		t.Fatalf("max delta in fade = %v, source max delta = %v", got, limit)
	}
	if got := timestats.MaxDelta(res.Samples); got > limit+1e-9 {
		t.Fatalf("max delta = %v, source max delta = %v", got, limit)
	}
}

func TestRenderCrossfadeJoinUnaligned(t *testing.T) {
	tests := []struct {
		name   string
		rate   float64
		hz     float64
		first  int
		second int
	}{
		{name: "fifth up", rate: 44100, hz: 233, first: 60, second: 67},
		{name: "same note", rate: 44100, hz: 233, first: 62, second: 62},
		{name: "step down", rate: 48000, hz: 196, first: 57, second: 55},
	}

	for _, stretch := range []Stretch{StretchPitchSync, StretchLinear} {
		for _, tt := range tests {
			t.Run(stretch.String()+"/"+tt.name, func(t *testing.T) {
				r := newRenderer(t, sineSource(tt.hz, tt.rate, 0.5), tt.rate, WithStretch(stretch))
				first := score.NoteEvent{NoteNumber: tt.first, Start: 0, Duration: 0.5, Velocity: 127, Lyrics: "a"}
				second := score.NoteEvent{NoteNumber: tt.second, Start: 0.5, Duration: 0.5, Velocity: 127, Lyrics: "a"}

				run := func(notes ...score.NoteEvent) []float64 {
					res, err := r.Render(score.Timeline{Notes: notes})
					if err != nil {
						t.Fatalf("Render() error = %v", err)
					}
					return res.Samples
				}
				both := run(first, second)
				alone := run(first)
				later := run(second)

				fade := core.MsToSamples(10, tt.rate)
				join := int(0.5 * tt.rate)
				peak := 0.0
				for _, v := range both {
					peak = max(peak, math.Abs(v))
				}
				// A crossfade never steps further than either side alone plus
				// the fade slope across the full peak-to-peak range.
				limit := max(timestats.MaxDelta(alone), timestats.MaxDelta(later[join:]))*1.02 + 2*peak/float64(fade)

				region := both[join-1 : join+fade+1]
				if got := timestats.MaxDelta(region); got > limit {
					t.Fatalf("max delta in fade = %v, limit %v", got, limit)
				}
			})
		}
	}
}

func TestRenderOverlapLaterNoteWins(t *testing.T) {
	const rate = 44100.0
	src := phoneme.MapSource{
		"a": {Label: "a", Data: testutil.DC(0.5, 4410), SampleRate: rate},
		"o": {Label: "o", Data: testutil.DC(-0.5, 4410), SampleRate: rate},
	}
	r := newRenderer(t, src, rate)
	res, err := r.Render(score.Timeline{Notes: []score.NoteEvent{
		{NoteNumber: 60, Start: 0, Duration: 0.5, Velocity: 127, Lyrics: "a"},
		{NoteNumber: 60, Start: 0.25, Duration: 0.5, Velocity: 127, Lyrics: "o"},
	}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	fade := core.MsToSamples(10, rate)
	start := int(0.25 * rate)
	if got := res.Samples[start-1]; got != 0.5 {
		t.Fatalf("before overlap = %v, want 0.5", got)
	}
	for i := start + fade; i < len(res.Samples); i++ {
		if res.Samples[i] != -0.5 {
			t.Fatalf("sample %d = %v, want -0.5 from the later note", i, res.Samples[i])
		}
	}
}

func TestRenderVelocity(t *testing.T) {
	const rate = 8000.0
	src := phoneme.MapSource{"a": {Label: "a", Data: testutil.DC(1, 800), SampleRate: rate}}
	r := newRenderer(t, src, rate)
	res, err := r.Render(score.Timeline{Notes: []score.NoteEvent{
		{NoteNumber: 60, Duration: 0.1, Velocity: 0, Lyrics: "a"},
		{NoteNumber: 60, Start: 0.2, Duration: 0.1, Velocity: 127, Lyrics: "a"},
		{NoteNumber: 60, Start: 0.4, Duration: 0.1, Velocity: 127, Lyrics: "a", Phonemes: []string{"a"}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Samples[400] != 0 || res.Samples[2000] != 1 || res.Samples[3600] != 1 {
		t.Fatalf("gains = %v %v %v", res.Samples[400], res.Samples[2000], res.Samples[3600])
	}

	half := score.Timeline{Notes: []score.NoteEvent{{NoteNumber: 60, Duration: 0.1, Velocity: 64, Lyrics: "a"}}}
	res, err = r.Render(half)
	if err != nil {
		t.Fatal(err)
	}
	if want := 64.0 / 127; math.Abs(res.Samples[10]-want) > 1e-15 {
		t.Fatalf("gain = %v, want %v", res.Samples[10], want)
	}
}

func TestRenderUnknownPhonemeAborts(t *testing.T) {
	r := newRenderer(t, sineSource(440, 44100, 0.1), 44100)
	res, err := r.Render(score.Timeline{Notes: []score.NoteEvent{
		{NoteNumber: 69, Start: 0, Duration: 0.2, Velocity: 127, Lyrics: "a"},
		{NoteNumber: 69, Start: 0.2, Duration: 0.2, Velocity: 127, Lyrics: "ka", Phonemes: []string{"k", "a"}},
	}})
	if res != nil {
		t.Fatal("expected no partial result")
	}
	if !errors.Is(err, ErrUnknownPhoneme) || !errors.Is(err, phoneme.ErrUnknownPhoneme) {
		t.Fatalf("error = %v, want unknown phoneme", err)
	}
	var re *Error
	if !errors.As(err, &re) || re.NoteIndex != 1 || re.Label != "k" || re.Kind != KindUnknownPhoneme {
		t.Fatalf("error detail = %#v", re)
	}
	if KindOf(err) != KindUnknownPhoneme {
		t.Fatalf("KindOf = %v", KindOf(err))
	}
}

func TestRenderReturnsScratch(t *testing.T) {
	pool := buffer.NewPool()
	r := newRenderer(t, sineSource(440, 44100, 0.1), 44100, WithPool(pool))

	if _, err := r.Render(score.Timeline{Notes: []score.NoteEvent{
		{NoteNumber: 60, Duration: 0.3, Velocity: 127, Lyrics: "a"},
		{NoteNumber: 64, Start: 0.25, Duration: 0.3, Velocity: 127, Lyrics: "a"},
	}}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := pool.Outstanding(); got != 0 {
		t.Fatalf("Outstanding() = %d after render, want 0", got)
	}

	if _, err := r.Render(score.Timeline{Notes: []score.NoteEvent{
		{NoteNumber: 60, Duration: 0.3, Velocity: 127, Lyrics: "a"},
		{NoteNumber: 60, Start: 0.3, Duration: 0.3, Velocity: 127, Lyrics: "o"},
	}}); err == nil {
		t.Fatal("expected unknown phoneme error")
	}
	if got := pool.Outstanding(); got != 0 {
		t.Fatalf("Outstanding() = %d after failed render, want 0", got)
	}
}

func TestRenderInvalidNotes(t *testing.T) {
	r := newRenderer(t, sineSource(440, 44100, 0.1), 44100)

	tests := []struct {
		name  string
		tl    score.Timeline
		index int
	}{
		{"note number", score.Timeline{Notes: []score.NoteEvent{{NoteNumber: 128, Duration: 1, Lyrics: "a"}}}, 0},
		{"same start", score.Timeline{Notes: []score.NoteEvent{
			{NoteNumber: 60, Duration: 1, Lyrics: "a"},
			{NoteNumber: 64, Duration: 0.5, Lyrics: "a"},
		}}, 1},
		{"contained", score.Timeline{Notes: []score.NoteEvent{
			{NoteNumber: 60, Start: 0, Duration: 1, Lyrics: "a"},
			{NoteNumber: 64, Start: 0.2, Duration: 0.5, Lyrics: "a"},
		}}, 1},
		{"timeline bend", score.Timeline{
			PitchBend: []score.PitchEvent{{Time: 1}, {Time: 0}},
			Notes:     []score.NoteEvent{{NoteNumber: 60, Duration: 1, Lyrics: "a"}},
		}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Render(tt.tl)
			var re *Error
			if !errors.As(err, &re) || re.Kind != KindInvalidNote || re.NoteIndex != tt.index {
				t.Fatalf("error = %v, want invalid note %d", err, tt.index)
			}
			if !errors.Is(err, score.ErrInvalidNote) || !errors.Is(err, ErrInvalidNote) {
				t.Fatalf("error chain = %v", err)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	const rate = 1000.0
	lead := &phoneme.Sample{Data: make([]float64, 100), SampleRate: rate}
	vowel := &phoneme.Sample{Data: make([]float64, 50), SampleRate: rate, RecordedHz: 100}
	r := newRenderer(t, phoneme.MapSource{}, rate)

	tests := []struct {
		name    string
		samples []*phoneme.Sample
		n       int
		want    []int
	}{
		{"single", []*phoneme.Sample{vowel}, 500, []int{500}},
		{"natural lead", []*phoneme.Sample{lead, vowel}, 500, []int{100, 400}},
		{"capped lead", []*phoneme.Sample{lead, vowel}, 100, []int{50, 50}},
		{"two capped leads", []*phoneme.Sample{lead, lead, vowel}, 300, []int{75, 75, 150}},
		{"one sample", []*phoneme.Sample{lead, vowel}, 1, []int{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.split(tt.samples, tt.n)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("split = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestNewErrors(t *testing.T) {
	src := phoneme.MapSource{}
	if _, err := New(nil, core.DefaultProcessorConfig()); KindOf(err) != KindInvalidConfiguration {
		t.Fatalf("nil source: %v", err)
	}
	bad := core.DefaultProcessorConfig()
	bad.SampleRate = 0
	if _, err := New(src, bad); !errors.Is(err, core.ErrInvalidSampleRate) || !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("zero rate: %v", err)
	}
	if _, err := New(src, core.DefaultProcessorConfig(), WithLeadMaxRatio(1)); KindOf(err) != KindInvalidConfiguration {
		t.Fatalf("lead ratio: %v", err)
	}
	if _, err := New(src, core.DefaultProcessorConfig(), WithStretch(Stretch(9))); err == nil {
		t.Fatal("expected error for unknown stretch mode")
	}
}

func TestSampleWithoutRate(t *testing.T) {
	r := newRenderer(t, phoneme.MapSource{"a": {Label: "a", Data: []float64{1}}}, 8000)
	_, err := r.Render(score.Timeline{Notes: []score.NoteEvent{{NoteNumber: 60, Duration: 0.1, Velocity: 1, Lyrics: "a"}}})
	if KindOf(err) != KindInvalidConfiguration {
		t.Fatalf("error = %v", err)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindUnknown},
		{errors.New("x"), KindUnknown},
		{&Error{Kind: KindIOFailure, NoteIndex: -1}, KindIOFailure},
		{ErrInvalidNote, KindInvalidNote},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}

	e := &Error{Kind: KindUnknownPhoneme, Op: "lookup", NoteIndex: 2, Label: "xa", Err: errors.New("missing")}
	if got, want := e.Error(), `render lookup note 2 phoneme "xa": unknown phoneme: missing`; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestParseStretch(t *testing.T) {
	for _, name := range []string{"", "pitch-sync", "linear"} {
		if _, err := ParseStretch(name); err != nil {
			t.Fatalf("ParseStretch(%q) error = %v", name, err)
		}
	}
	if _, err := ParseStretch("psola"); err == nil {
		t.Fatal("expected error")
	}
}

func TestWithCurve(t *testing.T) {
	const rate = 44100.0
	src := sineSource(233, rate, 0.5)
	tl := score.Timeline{Notes: []score.NoteEvent{
		{NoteNumber: 60, Start: 0, Duration: 0.5, Velocity: 127, Lyrics: "a"},
		{NoteNumber: 67, Start: 0.5, Duration: 0.5, Velocity: 127, Lyrics: "a"},
	}}

	outputs := make(map[crossfade.Curve][]float64)
	for _, c := range []crossfade.Curve{crossfade.CurveLinear, crossfade.CurveRaisedCosine} {
		r := newRenderer(t, src, rate, WithCurve(c))
		if got := r.Options().Curve; got != c {
			t.Fatalf("Options().Curve = %v, want %v", got, c)
		}
		res, err := r.Render(tl)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		testutil.RequireFinite(t, res.Samples)
		outputs[c] = res.Samples
	}

	lin, cos := outputs[crossfade.CurveLinear], outputs[crossfade.CurveRaisedCosine]
	fade := core.MsToSamples(10, rate)
	join := int(0.5 * rate)
	for i := range lin {
		inFade := i >= join && i < join+fade
		if !inFade && lin[i] != cos[i] {
			t.Fatalf("sample %d differs outside the fade: %v vs %v", i, lin[i], cos[i])
		}
	}
	differs := false
	for i := join + 1; i < join+fade-1; i++ {
		if lin[i] != cos[i] {
			differs = true
			break
		}
	}
	if !differs {
		t.Fatal("curve did not change the join")
	}
}
