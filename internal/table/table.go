// Package table holds the in-memory result of an import: named columns of
// text or numbers, each with a set of invalid cells and a plot role.
package table

import (
	"fmt"
	"math"
	"strconv"
)

// DefaultName is the name given to imported tables.
const DefaultName = "Table"

// Role designates how a column is used when plotting.
type Role int

const (
	RoleNone Role = iota
	RoleX         // independent variable
	RoleY         // dependent variable
)

func (r Role) String() string {
	switch r {
	case RoleX:
		return "x"
	case RoleY:
		return "y"
	default:
		return "none"
	}
}

// Kind tells which value slice of a Column is populated.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
)

func (k Kind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "text"
}

// Column is a named value sequence. Exactly one of Text or Numbers is used,
// depending on Kind. Invalid marks cells that hold a placeholder instead of
// source data.
type Column struct {
	Name    string
	Role    Role
	Kind    Kind
	Text    []string
	Numbers []float64
	Invalid IntervalSet
}

// NewTextColumn builds a text column. The slice is used as-is.
func NewTextColumn(name string, values []string, invalid IntervalSet) *Column {
	return &Column{Name: name, Kind: KindText, Text: values, Invalid: invalid}
}

// NewNumericColumn builds a numeric column. The slice is used as-is.
func NewNumericColumn(name string, values []float64, invalid IntervalSet) *Column {
	return &Column{Name: name, Kind: KindNumeric, Numbers: values, Invalid: invalid}
}

// Len returns the number of cells.
func (c *Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.Numbers)
	}
	return len(c.Text)
}

// IsInvalid reports whether cell i is a placeholder.
func (c *Column) IsInvalid(i int) bool { return c.Invalid.Contains(i) }

// InvalidCount returns the number of placeholder cells.
func (c *Column) InvalidCount() int { return c.Invalid.Count() }

// ValueString renders cell i; invalid cells render as "".
func (c *Column) ValueString(i int) string {
	if i < 0 || i >= c.Len() || c.IsInvalid(i) {
		return ""
	}
	if c.Kind == KindNumeric {
		x := c.Numbers[i]
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return c.Text[i]
}

// Table is an ordered set of equal-length columns.
type Table struct {
	Name    string
	Columns []*Column
}

// New returns an empty table with the given name, or DefaultName when empty.
func New(name string) *Table {
	if name == "" {
		name = DefaultName
	}
	return &Table{Name: name}
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.Columns) }

// NumRows returns the row count, taken from the first column.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Column returns the first column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// AppendColumns adds columns, enforcing equal lengths.
func (t *Table) AppendColumns(cols ...*Column) error {
	for _, c := range cols {
		if len(t.Columns) > 0 && c.Len() != t.NumRows() {
			return fmt.Errorf("append column %q: length %d, table has %d rows", c.Name, c.Len(), t.NumRows())
		}
		t.Columns = append(t.Columns, c)
	}
	return nil
}

// AssignRoles tags the first column as X and every other column as Y.
func (t *Table) AssignRoles() {
	for i, c := range t.Columns {
		if i == 0 {
			c.Role = RoleX
		} else {
			c.Role = RoleY
		}
	}
}

// IsNumeric reports whether every column holds numbers.
func (t *Table) IsNumeric() bool {
	if len(t.Columns) == 0 {
		return false
	}
	for _, c := range t.Columns {
		if c.Kind != KindNumeric {
			return false
		}
	}
	return true
}

// InvalidCount sums invalid cells over all columns.
func (t *Table) InvalidCount() int {
	n := 0
	for _, c := range t.Columns {
		n += c.InvalidCount()
	}
	return n
}
