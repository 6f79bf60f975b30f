package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/KaramelBytes/tabimport/internal/table"
)

// ColumnJSON is the JSON shape of a column. Invalid cells are null.
type ColumnJSON struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Kind    string `json:"kind"`
	Invalid []int  `json:"invalid"`
	Values  []any  `json:"values"`
}

// TableJSON is the JSON shape of a table.
type TableJSON struct {
	Name    string       `json:"name"`
	Rows    int          `json:"rows"`
	Columns []ColumnJSON `json:"columns"`
}

// ToJSON converts t to its JSON shape.
func ToJSON(t *table.Table) TableJSON {
	out := TableJSON{Name: t.Name, Rows: t.NumRows(), Columns: make([]ColumnJSON, 0, t.NumCols())}
	for _, c := range t.Columns {
		cj := ColumnJSON{
			Name:    c.Name,
			Role:    c.Role.String(),
			Kind:    c.Kind.String(),
			Invalid: c.Invalid.Indices(),
			Values:  make([]any, c.Len()),
		}
		for i := range cj.Values {
			if c.IsInvalid(i) {
				continue
			}
			if c.Kind == table.KindNumeric {
				cj.Values[i] = c.Numbers[i]
			} else {
				cj.Values[i] = c.Text[i]
			}
		}
		out.Columns = append(out.Columns, cj)
	}
	return out
}

// WriteJSON writes t as indented JSON.
func WriteJSON(w io.Writer, t *table.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToJSON(t)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
