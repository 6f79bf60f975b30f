// Package numeric converts text cells to float64 using a locale's decimal
// and grouping separators.
package numeric

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Locale holds the separators used when reading and writing numbers.
// Group is 0 when the locale does not group digits.
type Locale struct {
	Tag     string
	Decimal rune
	Group   rune
	// Secondary is the size of the integer groups left of the rightmost
	// three digits, as in the Indian 12,34,567. Zero means 3.
	Secondary int
}

func (l Locale) secondary() int {
	if l.Secondary <= 0 {
		return 3
	}
	return l.Secondary
}

// C is the locale-independent convention: '.' decimal point, no grouping.
var C = Locale{Tag: "C", Decimal: '.'}

// probe must have at least two digit groups in every locale.
const probe = 1234567.5

// LookupLocale resolves a BCP 47 identifier such as "de", "en-US" or "fr_CH".
// "", "C" and "POSIX" select C.
func LookupLocale(id string) (Locale, error) {
	id = strings.TrimSpace(id)
	switch strings.ToUpper(id) {
	case "", "C", "POSIX":
		return C, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(id, "_", "-"))
	if err != nil {
		return Locale{}, fmt.Errorf("parse locale %q: %w", id, err)
	}
	// Force Latin digits so the separators are the only non-digit runes.
	if t, err := tag.SetTypeForKey("nu", "latn"); err == nil {
		tag = t
	}
	out := message.NewPrinter(tag).Sprintf("%v", number.Decimal(probe, number.MaxFractionDigits(1)))
	loc := Locale{Tag: id}
	var seps []rune
	var runs []int // digits before each separator
	digits := 0
	for _, r := range out {
		if unicode.IsDigit(r) {
			digits++
			continue
		}
		seps = append(seps, r)
		runs = append(runs, digits)
		digits = 0
	}
	switch len(seps) {
	case 0:
		return Locale{}, fmt.Errorf("locale %q: no decimal separator in %q", id, out)
	case 1:
		loc.Decimal = seps[0]
	default:
		loc.Group = seps[0]
		loc.Decimal = seps[len(seps)-1]
		if n := len(runs); n >= 3 && runs[n-2] > 0 && runs[n-2] < 3 {
			loc.Secondary = runs[n-2]
		}
	}
	return loc, nil
}

// MustLookupLocale is LookupLocale for identifiers known at compile time.
func MustLookupLocale(id string) Locale {
	loc, err := LookupLocale(id)
	if err != nil {
		panic(err)
	}
	return loc
}

func (l Locale) isGroup(r rune) bool {
	if l.Group == 0 {
		return false
	}
	if r == l.Group {
		return true
	}
	// Locales grouping with (narrow) no-break spaces also accept a plain space.
	return unicode.IsSpace(l.Group) && (r == ' ' || r == '\u00a0' || r == '\u202f')
}

// ParseFloat parses s under the locale. Surrounding whitespace is ignored.
// When the integer part is grouped, the rightmost group has three digits,
// inner groups have Secondary digits and the leading group at most that
// many. NaN and infinity spellings are rejected.
func (l Locale) ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	var b strings.Builder
	b.Grow(len(s))
	rs := []rune(s)
	i := 0
	if rs[0] == '+' || rs[0] == '-' {
		b.WriteRune(rs[0])
		i++
	}

	// integer part
	intDigits := 0
	cur := 0         // digits since the last group separator
	var groups []int // completed groups, left to right
integer:
	for ; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			intDigits++
			cur++
		case l.isGroup(r):
			if cur == 0 {
				return 0, false
			}
			groups = append(groups, cur)
			cur = 0
		default:
			break integer
		}
	}
	if len(groups) > 0 {
		sec := l.secondary()
		if cur != 3 || groups[0] > sec {
			return 0, false
		}
		for _, g := range groups[1:] {
			if g != sec {
				return 0, false
			}
		}
	}
	fracDigits := 0
	if i < len(rs) && rs[i] == l.Decimal {
		b.WriteByte('.')
		i++
		for ; i < len(rs) && rs[i] >= '0' && rs[i] <= '9'; i++ {
			b.WriteRune(rs[i])
			fracDigits++
		}
	}
	if intDigits+fracDigits == 0 {
		return 0, false
	}
	if i < len(rs) && (rs[i] == 'e' || rs[i] == 'E') {
		b.WriteByte('e')
		i++
		if i < len(rs) && (rs[i] == '+' || rs[i] == '-') {
			b.WriteRune(rs[i])
			i++
		}
		expDigits := 0
		for ; i < len(rs) && rs[i] >= '0' && rs[i] <= '9'; i++ {
			b.WriteRune(rs[i])
			expDigits++
		}
		if expDigits == 0 {
			return 0, false
		}
	}
	if i != len(rs) {
		return 0, false
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		// out of range: strconv still returns ±Inf, which is not a usable value
		return 0, false
	}
	return f, true
}

// Format renders x with the shortest representation that parses back to x.
func (l Locale) Format(x float64) string {
	s := strconv.FormatFloat(x, 'g', -1, 64)
	if l.Decimal != '.' && l.Decimal != 0 {
		s = strings.Replace(s, ".", string(l.Decimal), 1)
	}
	return s
}
