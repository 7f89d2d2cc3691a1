// Package diag renders diagnostic views of raw rib records, used while
// working out what the undocumented record bytes mean.
package diag

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"ribgpx/internal/rib"
)

const (
	panelWidth  = 10 * vg.Inch
	panelHeight = 3 * vg.Inch
)

// ByteSeries returns the value of byte offset in each of the first window
// records, indexed by record position.
func ByteSeries(raws []rib.RawRecord, offset, window int) (plotter.XYs, error) {
	n := min(len(raws), window)
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if offset < 0 || offset >= len(raws[i]) {
			return nil, fmt.Errorf("diag: offset %d beyond %d-byte record", offset, len(raws[i]))
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: float64(raws[i][offset])})
	}
	return pts, nil
}

// CheckOffsets reports the first offset that does not index a record of
// recordSize bytes.
func CheckOffsets(offsets []int, recordSize int) error {
	for _, off := range offsets {
		if off < 0 || off >= recordSize {
			return fmt.Errorf("diag: offset %d beyond %d-byte record", off, recordSize)
		}
	}
	return nil
}

// PlotBytes draws one panel per offset, stacked top to bottom, and saves
// the figure to path. The image format follows the extension (png, svg,
// pdf, ...).
func PlotBytes(path string, raws []rib.RawRecord, offsets []int, window int) error {
	if len(offsets) == 0 {
		return fmt.Errorf("diag: no offsets to plot")
	}
	if window <= 0 {
		return fmt.Errorf("diag: window must be > 0")
	}
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		return fmt.Errorf("diag: plot path %q has no extension", path)
	}

	rows := make([][]*plot.Plot, 0, len(offsets))
	for _, off := range offsets {
		pts, err := ByteSeries(raws, off, window)
		if err != nil {
			return err
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("byte at index %d", off)
		p.X.Label.Text = "record index"
		p.Y.Label.Text = "byte value"
		p.X.Min, p.X.Max = 0, float64(window)
		p.Y.Min, p.Y.Max = 0, 255
		p.Add(plotter.NewGrid())

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("diag: offset %d: %w", off, err)
		}
		line.Width = vg.Points(1)
		p.Add(line)

		rows = append(rows, []*plot.Plot{p})
	}

	c, err := draw.NewFormattedCanvas(panelWidth, panelHeight*vg.Length(len(rows)), format)
	if err != nil {
		return fmt.Errorf("diag: %w", err)
	}
	tiles := draw.Tiles{
		Rows:      len(rows),
		Cols:      1,
		PadY:      vg.Millimeter * 8,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(rows, tiles, draw.New(c))
	for i := range rows {
		rows[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
