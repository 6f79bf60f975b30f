// Package importer reads delimited ASCII text into a table.Table.
//
// An import never aborts on malformed content. Short rows are padded with
// invalid cells, fields beyond the first row's width are dropped, and cells
// that fail numeric conversion become invalid. Dropping surplus fields is a
// known surprise for files whose first row is narrower than later ones;
// Stats.LongRows counts how often it happened.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/KaramelBytes/tabimport/internal/numeric"
	"github.com/KaramelBytes/tabimport/internal/table"
	"golang.org/x/sync/errgroup"
)

// Stats describes what an import saw.
type Stats struct {
	// SkippedLines is the number of leading lines discarded.
	SkippedLines int
	// DataRows is the number of rows stored in each column.
	DataRows int
	// ShortRows had fewer fields than the column count.
	ShortRows int
	// LongRows had more fields than the column count.
	LongRows int
	// DroppedFields is the total of surplus fields discarded from long rows.
	DroppedFields int
	// PaddedCells were added to short rows and marked invalid.
	PaddedCells int
	// ConversionFailures counts cells that failed numeric conversion.
	ConversionFailures int
}

// Warnings summarizes lossy recoveries in human-readable form.
func (s Stats) Warnings() []string {
	var out []string
	if s.ShortRows > 0 {
		out = append(out, fmt.Sprintf("%d short row(s) padded with %d invalid cell(s)", s.ShortRows, s.PaddedCells))
	}
	if s.LongRows > 0 {
		out = append(out, fmt.Sprintf("%d row(s) wider than the first row; %d extra field(s) dropped", s.LongRows, s.DroppedFields))
	}
	if s.ConversionFailures > 0 {
		out = append(out, fmt.Sprintf("%d cell(s) could not be converted to numbers", s.ConversionFailures))
	}
	return out
}

// Result is an imported table plus what happened while reading it.
type Result struct {
	Table *table.Table
	Stats Stats
}

// Importer converts streams using a fixed set of Options.
type Importer struct {
	opt    Options
	locale numeric.Locale
	log    *slog.Logger
}

// New validates opt and resolves its numeric locale.
func New(opt Options) (*Importer, error) {
	if err := opt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	loc, err := numeric.LookupLocale(opt.NumericLocale)
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &Importer{opt: opt, locale: loc, log: slog.Default()}, nil
}

// WithLogger returns a copy of the importer that logs to l.
func (im *Importer) WithLogger(l *slog.Logger) *Importer {
	cp := *im
	cp.log = l
	return &cp
}

// Options returns the configuration the importer was built with.
func (im *Importer) Options() Options { return im.opt }

// Import reads r to completion. See ImportContext.
func (im *Importer) Import(r io.Reader) (*Result, error) {
	return im.ImportContext(context.Background(), r)
}

// ImportContext reads r to completion and builds the table. ctx is checked
// between rows; cancellation returns a nil result. A read failure other
// than EOF ends the input early: the rows read so far are still returned
// together with the wrapped error.
func (im *Importer) ImportContext(ctx context.Context, r io.Reader) (*Result, error) {
	rr := NewRowReader(r, im.opt.Separator, im.opt.Whitespace)
	if im.opt.StripBOM {
		rr.SkipBOM()
	}
	acc, err := accumulate(ctx, rr, im.opt)
	if err != nil {
		return nil, err
	}
	res := &Result{Table: table.New(im.opt.TableName), Stats: acc.stats}

	cols, failures, err := im.buildColumns(ctx, acc)
	if err != nil {
		return nil, err
	}
	res.Stats.ConversionFailures = failures
	if err := res.Table.AppendColumns(cols...); err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}
	res.Table.AssignRoles()

	im.log.Debug("import finished",
		"table", res.Table.Name,
		"columns", res.Table.NumCols(),
		"rows", res.Table.NumRows(),
		"skipped", res.Stats.SkippedLines,
		"short_rows", res.Stats.ShortRows,
		"long_rows", res.Stats.LongRows,
		"invalid", res.Table.InvalidCount(),
	)
	if rerr := rr.Err(); rerr != nil {
		im.log.Warn("input ended by read error", "err", rerr, "rows", res.Table.NumRows())
		return res, fmt.Errorf("read input: %w", rerr)
	}
	return res, nil
}

// accumulation holds raw column buffers gathered in one pass over the rows.
type accumulation struct {
	names   []string
	data    [][]string
	invalid []table.IntervalSet
	stats   Stats
}

func accumulate(ctx context.Context, rr *RowReader, opt Options) (*accumulation, error) {
	acc := &accumulation{}
	for i := 0; i < opt.IgnoredLines && rr.Scan(); i++ {
		acc.stats.SkippedLines++
	}
	if !rr.Scan() {
		// Nothing left to fix the column count.
		return acc, nil
	}
	first := rr.Row()
	n := len(first)
	acc.data = make([][]string, n)
	acc.invalid = make([]table.IntervalSet, n)
	acc.names = make([]string, n)
	if opt.FirstRowNamesColumns {
		copy(acc.names, first)
	} else {
		for i, v := range first {
			acc.names[i] = strconv.Itoa(i + 1)
			acc.data[i] = append(acc.data[i], v)
		}
		acc.stats.DataRows++
	}

	for rr.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := rr.Row()
		i := 0
		for ; i < len(row) && i < n; i++ {
			acc.data[i] = append(acc.data[i], row[i])
		}
		if i < n {
			acc.stats.ShortRows++
			acc.stats.PaddedCells += n - i
		}
		for ; i < n; i++ {
			acc.invalid[i].Set(len(acc.data[i]))
			acc.data[i] = append(acc.data[i], "")
		}
		if len(row) > n {
			acc.stats.LongRows++
			acc.stats.DroppedFields += len(row) - n
		}
		acc.stats.DataRows++
	}
	return acc, nil
}

// buildColumns turns raw buffers into columns, converting to numbers when
// configured. Columns are independent, so conversion fans out over Workers.
func (im *Importer) buildColumns(ctx context.Context, acc *accumulation) ([]*table.Column, int, error) {
	n := len(acc.data)
	cols := make([]*table.Column, n)
	failures := make([]int, n)
	if !im.opt.ConvertToNumeric {
		for i := range n {
			cols[i] = table.NewTextColumn(acc.names[i], acc.data[i], acc.invalid[i])
		}
		return cols, 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, im.opt.Workers))
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vals, inv := numeric.ConvertColumn(acc.data[i], acc.invalid[i], im.locale)
			failures[i] = inv.Count() - acc.invalid[i].Count()
			cols[i] = table.NewNumericColumn(acc.names[i], vals, inv)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	total := 0
	for _, f := range failures {
		total += f
	}
	return cols, total, nil
}
