package importer

import (
	"errors"
	"fmt"
	"strings"
)

// Whitespace selects how a raw line is cleaned before it is split.
type Whitespace int

const (
	// WhitespaceNone leaves the line untouched.
	WhitespaceNone Whitespace = iota
	// WhitespaceSimplify trims the line and collapses interior runs of
	// whitespace to a single space.
	WhitespaceSimplify
	// WhitespaceTrim removes leading and trailing whitespace only.
	WhitespaceTrim
)

func (w Whitespace) String() string {
	switch w {
	case WhitespaceSimplify:
		return "simplify"
	case WhitespaceTrim:
		return "trim"
	default:
		return "none"
	}
}

// ParseWhitespace accepts none, simplify (or collapse) and trim.
func ParseWhitespace(s string) (Whitespace, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return WhitespaceNone, nil
	case "simplify", "collapse":
		return WhitespaceSimplify, nil
	case "trim":
		return WhitespaceTrim, nil
	default:
		return WhitespaceNone, fmt.Errorf("unsupported whitespace mode: %s (use none|simplify|trim)", s)
	}
}

// ParseSeparator maps the names accepted on the command line to the literal
// separator. Anything else is used verbatim.
func ParseSeparator(s string) string {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return "\t"
	case "space":
		return " "
	case "comma":
		return ","
	case "semicolon":
		return ";"
	default:
		return s
	}
}

// ErrEmptySeparator is returned by Validate when no separator is configured.
var ErrEmptySeparator = errors.New("separator must not be empty")

// Options controls a single import. It must not change while an import runs.
type Options struct {
	// Separator is the literal string fields are split on.
	Separator string
	// Whitespace is applied to each line before splitting.
	Whitespace Whitespace
	// IgnoredLines are read and discarded before the first row.
	IgnoredLines int
	// FirstRowNamesColumns takes column names from the first row instead
	// of treating it as data.
	FirstRowNamesColumns bool
	// ConvertToNumeric turns every column into float64 values.
	ConvertToNumeric bool
	// NumericLocale is a BCP 47 identifier, or "C".
	NumericLocale string
	// StripBOM drops a leading UTF-8 byte order mark.
	StripBOM bool
	// Workers bounds parallel numeric conversion; values below 2 convert
	// columns one at a time.
	Workers int
	// TableName names the result; empty means table.DefaultName.
	TableName string
}

// DefaultOptions returns tab-separated input with a header row and text columns.
func DefaultOptions() Options {
	return Options{
		Separator:            "\t",
		Whitespace:           WhitespaceNone,
		FirstRowNamesColumns: true,
		NumericLocale:        "C",
		StripBOM:             true,
		Workers:              1,
	}
}

// Validate reports configuration errors that would make an import meaningless.
func (o Options) Validate() error {
	if o.Separator == "" {
		return ErrEmptySeparator
	}
	if o.IgnoredLines < 0 {
		return fmt.Errorf("ignored lines must be >= 0, got %d", o.IgnoredLines)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", o.Workers)
	}
	return nil
}
