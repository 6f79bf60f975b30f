// Package plotting renders imported tables as X/Y line plots.
package plotting

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/tabimport/internal/table"
)

// Canvas sizes in points. Raster output is rendered at 96 dpi, so the
// maximum is a 4000x4000 pixel image.
const (
	DefaultWidth  = 800
	DefaultHeight = 400
	MaxWidth      = 3000
	MaxHeight     = 3000
)

var (
	// ErrNotNumeric is returned for tables with text columns.
	ErrNotNumeric = errors.New("table is not numeric")
	// ErrTooFewColumns is returned when there is no Y column to plot.
	ErrTooFewColumns = errors.New("need an X column and at least one Y column")
	// ErrNoPoints is returned when every Y series is empty after dropping invalid cells.
	ErrNoPoints = errors.New("no valid points to plot")
	// ErrUnsupported is returned for unknown image formats.
	ErrUnsupported = errors.New("unsupported image format")
	// ErrBadSize is returned for negative, non-finite or oversized canvases.
	ErrBadSize = errors.New("invalid plot size")
)

var formats = map[string]bool{"png": true, "svg": true, "pdf": true, "jpg": true, "jpeg": true, "tif": true, "tiff": true, "eps": true}

// FormatFromPath returns the image format implied by a file extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !formats[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(path))
	}
	return ext, nil
}

// Series returns the (x, y) points of column y against column x, skipping rows
// where either cell is invalid.
func Series(x, y *table.Column) plotter.XYs {
	n := min(x.Len(), y.Len())
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if x.IsInvalid(i) || y.IsInvalid(i) {
			continue
		}
		a, b := x.Numbers[i], y.Numbers[i]
		if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: a, Y: b})
	}
	return pts
}

// New builds a plot with one line per Y column against the first column.
func New(t *table.Table) (*plot.Plot, error) {
	if t.NumCols() < 2 {
		return nil, ErrTooFewColumns
	}
	if !t.IsNumeric() {
		return nil, ErrNotNumeric
	}
	p := plot.New()
	p.Title.Text = t.Name
	x := t.Columns[0]
	p.X.Label.Text = x.Name
	if t.NumCols() == 2 {
		p.Y.Label.Text = t.Columns[1].Name
	}
	p.Add(plotter.NewGrid())

	plotted := 0
	for i, y := range t.Columns[1:] {
		pts := Series(x, y)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("create line for %s: %w", y.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(y.Name, line)
		plotted++
	}
	if plotted == 0 {
		return nil, ErrNoPoints
	}
	p.Legend.Top = true
	return p, nil
}

// CheckSize validates a canvas size in points and fills in the defaults for
// zero values.
func CheckSize(width, height float64) (float64, float64, error) {
	check := func(v, def, limit float64, name string) (float64, error) {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0) || v < 0:
			return 0, fmt.Errorf("%w: %s %v", ErrBadSize, name, v)
		case v > limit:
			return 0, fmt.Errorf("%w: %s %v exceeds %v", ErrBadSize, name, v, limit)
		case v == 0:
			return def, nil
		}
		return v, nil
	}
	w, err := check(width, DefaultWidth, MaxWidth, "width")
	if err != nil {
		return 0, 0, err
	}
	h, err := check(height, DefaultHeight, MaxHeight, "height")
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// Render draws t and writes the image to w. width and height are in points;
// zero selects the defaults and sizes above MaxWidth or MaxHeight are rejected.
func Render(t *table.Table, w io.Writer, format string, width, height float64) error {
	format = strings.ToLower(format)
	if !formats[format] {
		return fmt.Errorf("%w: %q", ErrUnsupported, format)
	}
	width, height, err := CheckSize(width, height)
	if err != nil {
		return err
	}
	p, err := New(t)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(vg.Points(width), vg.Points(height), format)
	if err != nil {
		return fmt.Errorf("create plot writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}
