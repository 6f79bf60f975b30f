package numeric

import (
	"math"
	"testing"

	"github.com/KaramelBytes/tabimport/internal/table"
)

func TestLookupLocaleSeparators(t *testing.T) {
	tests := []struct {
		id      string
		decimal rune
		group   rune
	}{
		{"C", '.', 0},
		{"", '.', 0},
		{"POSIX", '.', 0},
		{"en", '.', ','},
		{"en_US", '.', ','},
		{"de", ',', '.'},
		{"de-DE", ',', '.'},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			loc, err := LookupLocale(tt.id)
			if err != nil {
				t.Fatalf("LookupLocale(%q): %v", tt.id, err)
			}
			if loc.Decimal != tt.decimal || loc.Group != tt.group {
				t.Fatalf("separators = %q/%q, want %q/%q", loc.Decimal, loc.Group, tt.decimal, tt.group)
			}
		})
	}
}

func TestLookupLocaleRejectsGarbage(t *testing.T) {
	if _, err := LookupLocale("not a locale!"); err == nil {
		t.Fatalf("expected error for malformed locale")
	}
}

func TestParseFloat(t *testing.T) {
	en := Locale{Tag: "en", Decimal: '.', Group: ','}
	de := Locale{Tag: "de", Decimal: ',', Group: '.'}
	fr := Locale{Tag: "fr", Decimal: ',', Group: '\u202f'}
	in := Locale{Tag: "en-IN", Decimal: '.', Group: ',', Secondary: 2}
	tests := []struct {
		name string
		loc  Locale
		in   string
		want float64
		ok   bool
	}{
		{"C integer", C, "42", 42, true},
		{"C decimal", C, "-3.25", -3.25, true},
		{"C leading dot", C, ".5", 0.5, true},
		{"C trailing dot", C, "5.", 5, true},
		{"C exponent", C, "1.5e3", 1500, true},
		{"C signed exponent", C, "2E-2", 0.02, true},
		{"C surrounding space", C, "  7 ", 7, true},
		{"C rejects grouping", C, "1,000", 0, false},
		{"C rejects comma decimal", C, "1,5", 0, false},
		{"empty", C, "", 0, false},
		{"sign only", C, "-", 0, false},
		{"dangling exponent", C, "1e", 0, false},
		{"nan word", C, "NaN", 0, false},
		{"inf word", C, "Inf", 0, false},
		{"trailing junk", C, "12abc", 0, false},
		{"en grouping", en, "1,234,567.25", 1234567.25, true},
		{"en bad group size", en, "12,34", 0, false},
		{"en long first group", en, "1234,567", 0, false},
		{"en group then decimal", en, "1,234.5", 1234.5, true},
		{"de decimal", de, "0,5", 0.5, true},
		{"de grouping", de, "1.000,0", 1000, true},
		{"de dot is not decimal", de, "0.5", 0, false},
		{"fr narrow nbsp", fr, "1\u202f234,5", 1234.5, true},
		{"fr plain space", fr, "1 234,5", 1234.5, true},
		{"en-IN lakh grouping", in, "12,34,567.5", 1234567.5, true},
		{"en-IN thousand", in, "1,234", 1234, true},
		{"en-IN rejects western grouping", in, "1,234,567", 0, false},
		{"en-IN short last group", in, "12,34,56", 0, false},
		{"en rejects lakh grouping", en, "12,34,567", 0, false},
		{"en trailing separator", en, "1,", 0, false},
		{"overflow", C, "1e999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.loc.ParseFloat(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseFloat(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("ParseFloat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	values := []float64{0, 1, -1, 0.1, 1.0 / 3.0, 1234567.891, 6.02214076e23, -2.5e-12, math.MaxFloat64}
	for _, loc := range []Locale{C, {Tag: "de", Decimal: ',', Group: '.'}, {Tag: "en", Decimal: '.', Group: ','}} {
		for _, x := range values {
			s := loc.Format(x)
			got, ok := loc.ParseFloat(s)
			if !ok || got != x {
				t.Errorf("%s: Format(%v) = %q parsed to %v (ok=%v)", loc.Tag, x, s, got, ok)
			}
		}
	}
}

func TestConvertColumnPropagatesInvalid(t *testing.T) {
	var inv table.IntervalSet
	inv.Set(1)
	// "" at row 1 is a padding placeholder; "abc" at row 3 fails to parse
	text := []string{"1.5", "", "2", "abc"}
	nums, out := ConvertColumn(text, inv, C)
	if nums[0] != 1.5 || nums[2] != 2 {
		t.Fatalf("values = %v", nums)
	}
	if !math.IsNaN(nums[1]) || !math.IsNaN(nums[3]) {
		t.Fatalf("invalid cells should be NaN: %v", nums)
	}
	if !out.Contains(1) || !out.Contains(3) || out.Count() != 2 {
		t.Fatalf("invalid = %v", out.Indices())
	}
	if inv.Contains(3) {
		t.Fatalf("input invalid set was modified")
	}
}

func TestConvertColumnKeepsInvalidEvenIfParseable(t *testing.T) {
	var inv table.IntervalSet
	inv.Set(0)
	nums, out := ConvertColumn([]string{"5"}, inv, C)
	if !out.Contains(0) || !math.IsNaN(nums[0]) {
		t.Fatalf("pre-invalid cell should stay invalid, got %v %v", nums, out.Indices())
	}
}

func TestToNumericKeepsNameAndRole(t *testing.T) {
	c := table.NewTextColumn("y", []string{"1", "2"}, table.IntervalSet{})
	c.Role = table.RoleY
	nc := ToNumeric(c, C)
	if nc.Kind != table.KindNumeric || nc.Name != "y" || nc.Role != table.RoleY {
		t.Fatalf("converted column = %+v", nc)
	}
	if ToNumeric(nc, C) != nc {
		t.Fatalf("numeric column should be returned as-is")
	}
}
