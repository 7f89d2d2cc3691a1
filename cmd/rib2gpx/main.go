package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ribgpx/internal/config"
	"ribgpx/internal/diag"
	"ribgpx/internal/gpx"
	"ribgpx/internal/rib"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type inputKind int

const (
	inputRib inputKind = iota
	inputRawlog
	inputGPX
)

type options struct {
	inPath  string
	kind    inputKind
	mode    rib.Mode
	outPath string
	meta    gpx.Meta
	loc     *time.Location

	dumpPath    string
	plotPath    string
	plotWindow  int
	plotOffsets []int
	summary     bool
}

// usageError is reported with exit status 2.
type usageError struct {
	msg string
	err error
}

func (e usageError) Error() string { return e.msg }
func (e usageError) Unwrap() error { return e.err }

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rib2gpx", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		inPath     = fs.String("in", "", "Input .rib capture (.rawlog dumps and, with -summary, .gpx files are accepted too)")
		outPath    = fs.String("out", "", "Output .gpx path (default: input name with .gpx)")
		modeStr    = fs.String("mode", "", "Device mode: 1 (Snow2) or 2 (Zeal Optics Transcend)")
		configPath = fs.String("config", "", "Path to YAML config")
		name       = fs.String("name", "", "Track name written to the GPX file")
		tz         = fs.String("tz", "", "IANA time zone per-record timestamps are read in (default: Local)")
		plotPath   = fs.String("plot", "", "Write a diagnostic plot of raw record bytes (.png, .svg, .pdf)")
		dumpPath   = fs.String("dump", "", "Write raw records as a .rawlog text dump")
		summary    = fs.Bool("summary", false, "Print track statistics to stdout")
		quiet      = fs.Bool("quiet", false, "Suppress progress messages")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rib2gpx -in <capture.rib> -mode <1|2> [options]\n")
		fmt.Fprintf(stderr, "   or: rib2gpx -summary -in <track.gpx|capture.rawlog>\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *inPath == "" && fs.NArg() == 1 {
		*inPath = fs.Arg(0)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "config load failed: %v\n", err)
			return 2
		}
	}

	opts, err := resolveOptions(cfg, flagValues{
		inPath:   *inPath,
		outPath:  *outPath,
		mode:     *modeStr,
		name:     *name,
		tz:       *tz,
		plotPath: *plotPath,
		dumpPath: *dumpPath,
		summary:  *summary,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, rib.ErrUnknownMode) {
			printKnownModes(stderr)
		}
		return 2
	}

	logger := log.New(stderr, "", log.LstdFlags)
	if *quiet {
		logger.SetOutput(io.Discard)
	}

	if err := execute(opts, stdout, logger); err != nil {
		if errors.Is(err, rib.ErrInsufficientData) {
			fmt.Fprintln(stderr, "File did not contain any track points.")
			return 1
		}
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(stderr, ue.msg)
			return 2
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type flagValues struct {
	inPath   string
	outPath  string
	mode     string
	name     string
	tz       string
	plotPath string
	dumpPath string
	summary  bool
}

func resolveOptions(cfg config.Config, fv flagValues) (options, error) {
	in := strings.TrimSpace(fv.inPath)
	if in == "" {
		return options{}, usageError{msg: "Please provide an input file path."}
	}
	opts := options{
		inPath:      in,
		summary:     fv.summary,
		plotWindow:  cfg.Diag.Plot.Window,
		plotOffsets: cfg.Diag.Plot.Offsets,
		meta:        gpx.Meta{Name: cfg.Convert.TrackName, Creator: cfg.Convert.Creator},
	}
	if fv.name != "" {
		opts.meta.Name = fv.name
	}

	switch strings.ToLower(filepath.Ext(in)) {
	case ".rawlog":
		opts.kind = inputRawlog
	case ".gpx":
		opts.kind = inputGPX
		if !fv.summary {
			return options{}, usageError{msg: "GPX input is only supported with -summary."}
		}
		return opts, nil
	default:
		opts.kind = inputRib
	}

	modeStr := fv.mode
	if modeStr == "" {
		modeStr = cfg.Convert.Mode
	}
	if modeStr == "" && opts.kind == inputRib {
		return options{}, usageError{msg: "Please provide a mode.", err: rib.ErrUnknownMode}
	}
	if modeStr != "" {
		m, err := rib.ParseMode(modeStr)
		if err != nil {
			return options{}, usageError{msg: fmt.Sprintf("Unknown mode %q.", modeStr), err: err}
		}
		opts.mode = m
	}

	conv := cfg.Convert
	if fv.tz != "" {
		conv.Timezone = fv.tz
	}
	loc, err := conv.Location()
	if err != nil {
		return options{}, usageError{msg: fmt.Sprintf("Invalid time zone %q: %v", conv.Timezone, err), err: err}
	}
	opts.loc = loc

	opts.outPath = fv.outPath
	if opts.outPath == "" {
		opts.outPath = derivePath(in, cfg.Convert.OutDir, ".gpx")
	}

	opts.plotPath = fv.plotPath
	if opts.plotPath == "" && cfg.Diag.Plot.Enable {
		opts.plotPath = cfg.Diag.Plot.Path
		if opts.plotPath == "" {
			opts.plotPath = derivePath(in, cfg.Convert.OutDir, ".png")
		}
	}
	if opts.plotPath != "" && opts.kind == inputRib {
		if err := checkPlotOffsets(opts.mode, opts.plotOffsets); err != nil {
			return options{}, err
		}
	}

	opts.dumpPath = fv.dumpPath
	if opts.dumpPath == "" && cfg.Diag.Dump.Enable {
		opts.dumpPath = cfg.Diag.Dump.Path
		if opts.dumpPath == "" {
			opts.dumpPath = derivePath(in, cfg.Convert.OutDir, ".rawlog")
		}
	}
	return opts, nil
}

// checkPlotOffsets rejects plot offsets that do not fit a record of mode.
func checkPlotOffsets(mode rib.Mode, offsets []int) error {
	l, err := rib.LayoutFor(mode)
	if err != nil {
		return err
	}
	if err := diag.CheckOffsets(offsets, l.Size()); err != nil {
		return usageError{msg: fmt.Sprintf("Plot offsets do not fit %s records: %v", mode, err), err: err}
	}
	return nil
}

// derivePath names an output after the input: the base name up to its
// first '.', with ext, next to the input unless dir is set.
func derivePath(in, dir, ext string) string {
	base := filepath.Base(in)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if base == "" {
		base = "track"
	}
	if dir == "" {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, base+ext)
}

func printKnownModes(w io.Writer) {
	fmt.Fprintln(w, "The mode should be either 1 or 2.")
	fmt.Fprintln(w, "Known modes:")
	fmt.Fprintln(w, "Mode 1: Snow2 goggles")
	fmt.Fprintln(w, "Mode 2: Zeal Optics Transcend")
}
