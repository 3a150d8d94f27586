// Package format provides display formatting for forecast metrics and labels.
package format

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/medipredict/forecast-dashboard/pkg/mathutil"
)

// Decimal returns value rounded to exactly two decimals without grouping
// (e.g., "4.20", "1234.50"). NaN and infinities render as "n/a".
func Decimal(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(mathutil.Round(value), 'f', 2, 64)
}

// Spaced replaces underscores in a result key with spaces.
func Spaced(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// EquipmentHeading renders an ICU equipment key as a heading, e.g.
// "ventilator_units" becomes "VENTILATOR UNITS".
func EquipmentHeading(key string) string {
	return cases.Upper(language.Und).String(Spaced(key))
}

// DepartmentHeading renders a department key as a heading: the first letter
// is upper-cased and the rest kept, e.g. "cardiology" becomes
// "Cardiology Department".
func DepartmentHeading(key string) string {
	if key == "" {
		return "Department"
	}
	r, size := utf8.DecodeRuneInString(key)
	return string(unicode.ToUpper(r)) + key[size:] + " Department"
}

// Slug turns an arbitrary result key into a token safe for element ids and
// URLs. Characters outside [A-Za-z0-9_-] become "-".
func Slug(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}
