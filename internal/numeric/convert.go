package numeric

import (
	"math"

	"github.com/KaramelBytes/tabimport/internal/table"
)

// ConvertColumn parses every cell of text under loc. Cells already marked
// invalid stay invalid; cells that fail to parse become invalid. Invalid
// cells hold NaN. The input set is not modified.
func ConvertColumn(text []string, invalid table.IntervalSet, loc Locale) ([]float64, table.IntervalSet) {
	out := make([]float64, len(text))
	inv := invalid.Clone()
	for i, s := range text {
		if invalid.Contains(i) {
			out[i] = math.NaN()
			continue
		}
		x, ok := loc.ParseFloat(s)
		if !ok {
			out[i] = math.NaN()
			inv.Set(i)
			continue
		}
		out[i] = x
	}
	return out, inv
}

// ToNumeric returns a numeric copy of a text column with the same name and
// role. Numeric columns are returned unchanged.
func ToNumeric(c *table.Column, loc Locale) *table.Column {
	if c.Kind == table.KindNumeric {
		return c
	}
	vals, inv := ConvertColumn(c.Text, c.Invalid, loc)
	nc := table.NewNumericColumn(c.Name, vals, inv)
	nc.Role = c.Role
	return nc
}
