package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/tabimport/internal/table"
)

// Options controls what Summarize computes.
type Options struct {
	// SampleRows determines how many leading rows to include in the report.
	SampleRows int
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
	// Correlations computes Pearson correlations of every Y column against X.
	Correlations bool
}

// DefaultOptions returns reasonable defaults for table summaries.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		Outliers:         true,
		OutlierThreshold: 3.5,
		Correlations:     true,
	}
}

// Report is a markdown-friendly summary of an imported table.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Samples  [][]string
	Corr     []PairCorr
	Warnings []string
}

// ColumnSummary captures role, validity and statistics per column.
type ColumnSummary struct {
	Name    string
	Role    string
	Kind    string // numeric|text
	Valid   int
	Invalid int
	// Numeric stats over valid cells
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Text columns
	Unique       int
	ExampleTexts []string
}

// InvalidPct returns the share of invalid cells in percent.
func (c ColumnSummary) InvalidPct() float64 {
	total := c.Valid + c.Invalid
	if total == 0 {
		return 0
	}
	return float64(c.Invalid) * 100.0 / float64(total)
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	N    int
	R    float64
}

// Summarize builds a Report for t. warnings are appended verbatim, so callers
// can pass importer.Stats.Warnings().
func Summarize(t *table.Table, opt Options, warnings ...string) *Report {
	rep := &Report{Name: t.Name, Rows: t.NumRows(), Warnings: append([]string(nil), warnings...)}
	rep.Cols = make([]ColumnSummary, 0, t.NumCols())
	for _, c := range t.Columns {
		rep.Cols = append(rep.Cols, summarizeColumn(c, opt))
	}

	sampleRows := opt.SampleRows
	if sampleRows > rep.Rows {
		sampleRows = rep.Rows
	}
	for i := 0; i < sampleRows; i++ {
		row := make([]string, t.NumCols())
		for j, c := range t.Columns {
			row[j] = c.ValueString(i)
		}
		rep.Samples = append(rep.Samples, row)
	}

	if opt.Correlations && t.NumCols() >= 2 {
		x := t.Columns[0]
		if x.Kind == table.KindNumeric {
			for _, y := range t.Columns[1:] {
				if y.Kind != table.KindNumeric {
					continue
				}
				if r, n, ok := pearson(x, y); ok {
					rep.Corr = append(rep.Corr, PairCorr{A: x.Name, B: y.Name, N: n, R: r})
				}
			}
			sort.SliceStable(rep.Corr, func(i, j int) bool {
				return math.Abs(rep.Corr[i].R) > math.Abs(rep.Corr[j].R)
			})
		}
	}
	return rep
}

func summarizeColumn(c *table.Column, opt Options) ColumnSummary {
	s := ColumnSummary{Name: c.Name, Role: c.Role.String(), Kind: c.Kind.String(), Invalid: c.InvalidCount()}
	s.Valid = c.Len() - s.Invalid
	if c.Kind == table.KindText {
		seen := map[string]struct{}{}
		for i, v := range c.Text {
			if c.IsInvalid(i) {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			if len(s.ExampleTexts) < 3 && strings.TrimSpace(v) != "" {
				s.ExampleTexts = append(s.ExampleTexts, v)
			}
		}
		s.Unique = len(seen)
		return s
	}

	// Welford over valid cells
	var n int
	var mean, m2 float64
	minV, maxV := math.Inf(1), math.Inf(-1)
	vals := make([]float64, 0, s.Valid)
	for i, x := range c.Numbers {
		if c.IsInvalid(i) || math.IsNaN(x) {
			continue
		}
		n++
		if x < minV {
			minV = x
		}
		if x > maxV {
			maxV = x
		}
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
		vals = append(vals, x)
	}
	if n == 0 {
		return s
	}
	s.Min, s.Max, s.Mean = minV, maxV, mean
	if n > 1 {
		s.Std = math.Sqrt(m2 / float64(n-1))
	}
	if opt.Outliers && len(vals) >= 8 {
		median, mad := medianMAD(vals)
		thr := opt.OutlierThreshold
		if thr <= 0 {
			thr = 3.5
		}
		s.OutlierThreshold = thr
		if mad > 0 {
			for _, v := range vals {
				az := math.Abs(0.6745 * (v - median) / mad)
				if az > thr {
					s.OutliersCount++
				}
				if az > s.OutliersMaxAbsZ {
					s.OutliersMaxAbsZ = az
				}
			}
		}
	}
	return s
}

// pearson correlates rows where both cells are valid.
func pearson(x, y *table.Column) (float64, int, bool) {
	var n, sumX, sumY, sumXX, sumYY, sumXY float64
	for i := 0; i < x.Len() && i < y.Len(); i++ {
		if x.IsInvalid(i) || y.IsInvalid(i) {
			continue
		}
		a, b := x.Numbers[i], y.Numbers[i]
		n++
		sumX += a
		sumY += b
		sumXX += a * a
		sumYY += b * b
		sumXY += a * b
	}
	if n < 2 {
		return 0, 0, false
	}
	denom := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if denom == 0 {
		return 0, 0, false
	}
	r := (n*sumXY - sumX*sumY) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, 0, false
	}
	return r, int(n), true
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[TABLE SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Table: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		b.WriteString(fmt.Sprintf("- %s (%s): %s (valid %d, invalid %.1f%%)", safeName(c.Name), strings.ToUpper(c.Role), c.Kind, c.Valid, c.InvalidPct()))
		switch c.Kind {
		case "numeric":
			if c.Valid > 0 {
				b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			}
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
		case "text":
			b.WriteString(fmt.Sprintf(" — unique %d", c.Unique))
			if len(c.ExampleTexts) > 0 {
				b.WriteString(", e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(r.Corr) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range r.Corr {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f (n=%d)\n", p.A, p.B, p.R, p.N))
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i, val := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				b.WriteString(safeVal(truncate(val, 80)))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
