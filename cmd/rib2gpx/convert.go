package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"ribgpx/internal/diag"
	"ribgpx/internal/gpx"
	"ribgpx/internal/rawlog"
	"ribgpx/internal/rib"
)

func execute(opts options, stdout io.Writer, logger *log.Logger) error {
	if opts.kind == inputGPX {
		return printGPXSummary(opts.inPath, stdout)
	}

	mode, raws, err := loadRaw(opts, logger)
	if err != nil {
		return err
	}
	logger.Printf("rib2gpx extracted path=%s mode=%s raw_records=%d", opts.inPath, mode, len(raws))
	if opts.plotPath != "" {
		if err := checkPlotOffsets(mode, opts.plotOffsets); err != nil {
			return err
		}
	}

	if opts.dumpPath != "" {
		if opts.kind == inputRawlog {
			logger.Printf("rib2gpx dump skipped: input is already a raw dump")
		} else {
			if err := os.MkdirAll(filepath.Dir(opts.dumpPath), 0o755); err != nil {
				return err
			}
			if err := rawlog.WriteFile(opts.dumpPath, mode, raws); err != nil {
				return fmt.Errorf("write raw dump: %w", err)
			}
			logger.Printf("rib2gpx wrote raw dump path=%s records=%d", opts.dumpPath, len(raws))
		}
	}

	tr, err := rib.Interpreter{Location: opts.loc}.FromRaw(mode, raws)
	if err != nil {
		return err
	}
	logger.Printf("rib2gpx decoded points=%d", len(tr.Points))

	if err := writeGPXFile(opts.outPath, opts.meta, tr.Points); err != nil {
		return fmt.Errorf("write gpx: %w", err)
	}
	logger.Printf("rib2gpx wrote gpx path=%s", opts.outPath)

	if opts.plotPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.plotPath), 0o755); err != nil {
			return err
		}
		if err := diag.PlotBytes(opts.plotPath, tr.Raw, opts.plotOffsets, opts.plotWindow); err != nil {
			return err
		}
		logger.Printf("rib2gpx wrote plot path=%s offsets=%v window=%d", opts.plotPath, opts.plotOffsets, opts.plotWindow)
	}

	if opts.summary {
		pts := make([]gpx.Point, len(tr.Points))
		for i, r := range tr.Points {
			pts[i] = gpx.PointFromRecord(r)
		}
		return printTrackSummary(opts.inPath, opts.meta.Name, pts, stdout)
	}
	return nil
}

// loadRaw returns every raw record of the input, lead-in included.
func loadRaw(opts options, logger *log.Logger) (rib.Mode, []rib.RawRecord, error) {
	if opts.kind == inputRawlog {
		lg, err := rawlog.ReadFile(opts.inPath)
		if err != nil {
			return 0, nil, err
		}
		if len(lg.Records) > 0 && !lg.HasLeadIn() {
			return 0, nil, fmt.Errorf("raw dump starts at index %d: lead-in record 0 is missing", lg.Indexes[0])
		}
		if opts.mode != 0 && opts.mode != lg.Mode {
			logger.Printf("rib2gpx raw dump mode=%s overrides requested mode=%s", lg.Mode, opts.mode)
		}
		return lg.Mode, lg.Records, nil
	}

	buf, err := os.ReadFile(opts.inPath)
	if err != nil {
		return 0, nil, err
	}
	raws, err := rib.Extract(buf, opts.mode)
	if err != nil {
		return 0, nil, err
	}
	return opts.mode, raws, nil
}

// writeGPXFile replaces path only once the whole document is written, so a
// failed conversion never leaves a partial file behind.
func writeGPXFile(path string, meta gpx.Meta, points []rib.Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := gpx.Write(tmp, meta, points); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
