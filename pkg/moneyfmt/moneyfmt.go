// Package moneyfmt converts between numeric amounts and the human-editable
// "thousands-dot" monetary strings used by every grid screen: the last dot is
// the decimal separator only when at most two digits follow it, every earlier
// dot is a thousands separator.
//
// None of the functions ever fail. A malformed keystroke buffer degrades to
// "" or 0 so an editing session can never crash on user input.
package moneyfmt

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatForDisplay renders a committed amount for a grid cell.
// Zero yields the empty string: an empty cell means "no amount entered".
// Any other finite value is rendered with thousands dots and exactly two
// decimal digits, e.g. 1234567.89 -> "1.234.567.89".
func FormatForDisplay(value float64) string {
	if value == 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return ""
	}
	// decimal gives a fixed-point rendering, so values that strconv would
	// print in exponent form (1e21, 1e-7) still split cleanly.
	fixed := decimal.NewFromFloat(value).StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")
	if fixed == "0.00" {
		return ""
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	out := groupThousands(intPart) + "." + fracPart
	if negative {
		out = "-" + out
	}
	return out
}

// FormatWhileTyping normalizes a raw keystroke buffer on every keypress.
// Stray characters are dropped, the fraction is truncated to two digits and
// thousands dots are regrouped. The function is idempotent, so it can be
// re-applied to its own output. A trailing bare dot is preserved to let the
// user continue typing a fraction.
func FormatWhileTyping(raw string) string {
	trimmed := strings.TrimSpace(raw)
	negative := strings.HasPrefix(trimmed, "-")

	cleaned := keepDigitsAndDots(trimmed)
	if cleaned == "" {
		if negative {
			return "-"
		}
		return ""
	}

	intDigits, frac, hasFrac := splitOnDecimalDot(cleaned, 2)
	out := groupThousands(intDigits)
	if hasFrac {
		out += "." + frac
	}
	if negative {
		out = "-" + out
	}
	return out
}

// ParseNumber converts a monetary string back to a number. Empty or
// unparseable input yields 0; no error is ever raised.
func ParseNumber(text string) float64 {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0
	}
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var numeric string
	if idx := strings.LastIndexByte(s, '.'); idx >= 0 {
		tail := s[idx+1:]
		if len(tail) >= 1 && len(tail) <= 2 {
			// last dot is the decimal separator, earlier dots group thousands
			numeric = strings.ReplaceAll(s[:idx], ".", "") + "." + tail
		} else {
			// trailing group of 3+ digits: pure thousands formatting
			numeric = strings.ReplaceAll(s, ".", "")
		}
	} else {
		numeric = s
	}

	value, err := strconv.ParseFloat(numeric, 64)
	if err != nil || math.IsNaN(value) {
		return 0
	}
	if negative {
		value = -value
	}
	return value
}

// FormatRateWhileTyping is the simpler codec used for percentage-like fields
// (inflation rates, markup). Up to four fractional digits, no thousands
// separators and no sign.
func FormatRateWhileTyping(raw string) string {
	cleaned := keepDigitsAndDots(strings.TrimSpace(raw))
	if cleaned == "" {
		return ""
	}
	intDigits, frac, hasFrac := splitOnFirstDot(cleaned, 4)
	if !hasFrac {
		return intDigits
	}
	return intDigits + "." + frac
}

// ParseRate parses a percentage-like string produced by
// FormatRateWhileTyping. Unparseable input yields 0.
func ParseRate(text string) float64 {
	cleaned := keepDigitsAndDots(strings.TrimSpace(text))
	if cleaned == "" {
		return 0
	}
	intDigits, frac, hasFrac := splitOnFirstDot(cleaned, 4)
	numeric := intDigits
	if hasFrac {
		numeric += "." + frac
	}
	value, err := strconv.ParseFloat(numeric, 64)
	if err != nil || math.IsNaN(value) {
		return 0
	}
	return value
}

func keepDigitsAndDots(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitOnDecimalDot applies the "last dot is decimal iff at most maxFrac
// characters follow it" rule. The returned integer digits have all dots
// removed; hasFrac reports whether a decimal suffix (possibly empty) should
// be re-appended.
func splitOnDecimalDot(cleaned string, maxFrac int) (intDigits, frac string, hasFrac bool) {
	idx := strings.LastIndexByte(cleaned, '.')
	if idx < 0 || len(cleaned)-idx-1 > maxFrac {
		return strings.ReplaceAll(cleaned, ".", ""), "", false
	}
	intDigits = strings.ReplaceAll(cleaned[:idx], ".", "")
	frac = cleaned[idx+1:]
	if len(frac) > maxFrac {
		frac = frac[:maxFrac]
	}
	return intDigits, frac, true
}

// splitOnFirstDot treats the first dot as the decimal separator, drops any
// later dots and truncates the fraction.
func splitOnFirstDot(cleaned string, maxFrac int) (intDigits, frac string, hasFrac bool) {
	idx := strings.IndexByte(cleaned, '.')
	if idx < 0 {
		return cleaned, "", false
	}
	intDigits = cleaned[:idx]
	frac = strings.ReplaceAll(cleaned[idx+1:], ".", "")
	if len(frac) > maxFrac {
		frac = frac[:maxFrac]
	}
	if intDigits == "" {
		intDigits = "0"
	}
	return intDigits, frac, true
}

// groupThousands inserts a dot every three digits from the right:
// "1234567" -> "1.234.567".
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	first := len(digits) % 3
	if first > 0 {
		b.WriteString(digits[:first])
	}
	for i := first; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
