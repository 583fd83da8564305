package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var reAmountJunk = regexp.MustCompile(`[^0-9.,]`)

// ParseAmount converts a raw monetary token into an exact decimal value.
// It disambiguates dot/comma separators:
//   - both present: the rightmost separator is the decimal point;
//   - single kind, one occurrence of a comma: decimal comma;
//   - single kind, repeated: the last segment is the decimal part, the rest
//     are thousands groups.
//
// Unparseable input returns an error; the caller must not guess a value.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := reAmountJunk.ReplaceAllString(raw, "")
	if s == "" || strings.Trim(s, ".,") == "" {
		return decimal.Zero, fmt.Errorf("parse amount %q: no digits", raw)
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = regroup(s, ",")
	case lastDot >= 0:
		s = regroup(s, ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return d, nil
}

// regroup resolves a string that uses a single separator kind: one
// occurrence means a decimal separator, several mean thousands groups with
// the final segment as the decimal part.
func regroup(s, sep string) string {
	parts := strings.Split(s, sep)
	if len(parts) == 2 {
		return parts[0] + "." + parts[1]
	}
	return strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
}

// FormatAmount renders a value with exactly two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
