// Command vose renders a sung timeline to a WAV file.
//
// Usage:
//
//	vose [flags] <project.json | song.mid>
//	vose [flags] -text "konnichiwa sekai"
//	vose [flags] -preview -phoneme a -hz 440
//
// Settings come from the optional -config YAML file, then VOSE_*
// environment variables, then flags.
//
// Examples:
//
//	vose -o song.wav song.json
//	vose -bank ./voices/alto -o song.wav song.mid
//	vose -text "la la la" -speed 1.5 -pitch 1.2 -o talk.wav
//	vose -export-project song.json song.mid
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-vose/internal/config"
	"github.com/cwbudde/algo-vose/internal/observability"
	"github.com/cwbudde/algo-vose/voice/engine"
	"github.com/cwbudde/algo-vose/voice/phoneme"
	"github.com/cwbudde/algo-vose/voice/render"
	"github.com/cwbudde/algo-vose/voice/score"
	"github.com/cwbudde/algo-vose/voice/wavio"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type flags struct {
	config   string
	out      string
	bank     string
	rate     int
	text     string
	speed    float64
	pitch    float64
	preview  bool
	phoneme  string
	hz       float64
	seconds  float64
	export   string
	labels   bool
	logLevel string
}

func parseFlags(args []string, stderr io.Writer) (flags, []string, error) {
	var f flags
	fs := flag.NewFlagSet("vose", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.config, "config", "", "YAML configuration file")
	fs.StringVar(&f.out, "o", "out.wav", "output WAV file")
	fs.StringVar(&f.bank, "bank", "", "voice bank directory (overrides config)")
	fs.IntVar(&f.rate, "rate", 0, "engine sample rate in Hz (overrides config)")
	fs.StringVar(&f.text, "text", "", "speak this text instead of rendering a score")
	fs.Float64Var(&f.speed, "speed", 1, "talk speed multiplier")
	fs.Float64Var(&f.pitch, "pitch", 1, "talk pitch multiplier")
	fs.BoolVar(&f.preview, "preview", false, "render one phoneme at a fixed frequency")
	fs.StringVar(&f.phoneme, "phoneme", "a", "phoneme for -preview")
	fs.Float64Var(&f.hz, "hz", 440, "frequency for -preview")
	fs.Float64Var(&f.seconds, "seconds", 1, "duration for -preview")
	fs.StringVar(&f.export, "export-project", "", "write the input score as a project JSON file and exit")
	fs.BoolVar(&f.labels, "labels", false, "list the voice bank's phoneme labels and exit")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (overrides config)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: vose [flags] <project.json | song.mid>\n\n")
		fmt.Fprintf(stderr, "Renders a note timeline with a concatenative voice to a WAV file.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return f, nil, err
	}
	return f, fs.Args(), nil
}

func run(args []string, stdout, stderr io.Writer) int {
	f, rest, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(f.config)
	if err != nil {
		fmt.Fprintf(stderr, "vose: %v\n", err)
		return 1
	}
	if f.bank != "" {
		cfg.Voice.Bank = f.bank
	}
	if f.rate > 0 {
		cfg.SampleRate = f.rate
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	logger := observability.NewLogger(stderr, cfg.Log.Level, cfg.Log.Pretty)

	if err := execute(f, rest, cfg, logger, stdout); err != nil {
		logger.Error().Err(err).Msg("vose failed")
		fmt.Fprintf(stderr, "vose: %v\n", err)
		return 1
	}
	return 0
}

func execute(f flags, rest []string, cfg config.Config, logger zerolog.Logger, stdout io.Writer) error {
	if f.export != "" {
		if len(rest) != 1 {
			return errors.New("-export-project needs exactly one input score")
		}
		return exportProject(rest[0], f.export)
	}

	src, err := loadSource(cfg, logger)
	if err != nil {
		return err
	}
	if f.labels {
		return printLabels(stdout, src)
	}

	ro, err := cfg.RenderOptions()
	if err != nil {
		return err
	}
	sinkOpts, err := cfg.SinkOptions()
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()
	e, err := engine.Init(cfg.SampleRate,
		engine.WithSource(src),
		engine.WithLogger(logger),
		engine.WithMetrics(metrics),
		engine.WithProcessorOptions(cfg.ProcessorOptions()...),
		engine.WithRenderOptions(render.WithOptions(ro)),
		engine.WithSinkOptions(sinkOpts...),
	)
	if err != nil {
		return err
	}
	defer e.Terminate()

	var rep render.Report
	switch {
	case f.preview:
		err = writeSamples(f.out, cfg.SampleRate, sinkOpts, func() ([]float64, error) {
			if err := e.SetFrequency(f.hz); err != nil {
				return nil, err
			}
			if err := e.PreparePhoneme(f.phoneme); err != nil {
				return nil, err
			}
			return e.Preview(f.seconds)
		})
	case f.text != "":
		err = writeSamples(f.out, cfg.SampleRate, sinkOpts, func() ([]float64, error) {
			return e.Talk(f.text, f.speed, f.pitch)
		})
	default:
		if len(rest) != 1 {
			return errors.New("expected exactly one input score (see -h)")
		}
		var tl score.Timeline
		if tl, err = readScore(rest[0]); err != nil {
			return err
		}
		if rep, err = e.RenderToFile(f.out, tl); err == nil {
			printReport(stdout, f.out, rep)
		}
	}

	if cfg.Metrics.Textfile != "" {
		if merr := metrics.WriteTextfile(cfg.Metrics.Textfile); merr != nil {
			logger.Warn().Err(merr).Str("path", cfg.Metrics.Textfile).Msg("metrics not written")
		}
	}
	return err
}

func loadSource(cfg config.Config, logger zerolog.Logger) (phoneme.Source, error) {
	if cfg.Voice.Bank == "" {
		wave, err := cfg.Waveform()
		if err != nil {
			return nil, err
		}
		return phoneme.NewOscillator(float64(cfg.SampleRate), wave)
	}

	bank, err := phoneme.LoadBank(cfg.Voice.Bank,
		phoneme.WithTargetRate(float64(cfg.SampleRate)),
		phoneme.WithResampleQuality(cfg.ResampleQuality()),
		phoneme.WithBankLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("bank", bank.Name()).Int("phonemes", len(bank.Labels())).Msg("voice bank loaded")
	return bank, nil
}

func readScore(path string) (score.Timeline, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi", ".smf":
		return score.ReadMIDIFile(path)
	default:
		return score.ReadProjectFile(path)
	}
}

func exportProject(in, out string) (err error) {
	tl, err := readScore(in)
	if err != nil {
		return err
	}
	fh, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fh.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return score.WriteProject(fh, tl)
}

func writeSamples(path string, rate int, opts []wavio.Option, produce func() ([]float64, error)) error {
	samples, err := produce()
	if err != nil {
		return err
	}
	return wavio.NewFileSink(path, opts...).Write(samples, rate)
}

func printLabels(w io.Writer, src phoneme.Source) error {
	lister, ok := src.(interface{ Labels() []string })
	if !ok {
		return errors.New("the oscillator voice accepts any label; use -bank to list a voice bank")
	}
	for _, l := range lister.Labels() {
		fmt.Fprintln(w, l)
	}
	return nil
}

func printReport(w io.Writer, path string, rep render.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "output\t%s\n", path)
	fmt.Fprintf(tw, "notes\t%d (skipped %d)\n", rep.Notes, rep.Skipped)
	fmt.Fprintf(tw, "segments\t%d\n", rep.Segments)
	fmt.Fprintf(tw, "duration\t%.3f s (%d samples)\n", rep.Seconds, rep.Samples)
	fmt.Fprintf(tw, "peak\t%.2f dBFS\n", rep.PeakDB)
	fmt.Fprintf(tw, "rms\t%.2f dBFS\n", rep.RMSDB)
	fmt.Fprintf(tw, "clipped\t%d\n", rep.Clipped)
	tw.Flush()
}
