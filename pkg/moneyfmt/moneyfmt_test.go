package moneyfmt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatForDisplay(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"zero is an empty cell", 0, ""},
		{"negative zero is an empty cell", math.Copysign(0, -1), ""},
		{"plain integer gets .00", 5, "5.00"},
		{"thousands grouping", 1234567, "1.234.567.00"},
		{"two fractional digits kept", 1234567.89, "1.234.567.89"},
		{"single fractional digit padded", 500.5, "500.50"},
		{"negative amount", -500.5, "-500.50"},
		{"small fraction", 0.01, "0.01"},
		{"no exponent notation for large values", 1e10, "10.000.000.000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatForDisplay(tt.value))
		})
	}
}

func TestFormatWhileTyping(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"plain digits grouped", "1234567", "1.234.567"},
		{"decimal suffix kept", "1234.56", "1.234.56"},
		{"single decimal digit", "1234.5", "1.234.5"},
		{"trailing dot preserved", "1234.", "1.234."},
		{"three trailing digits are thousands", "1.234", "1.234"},
		{"stray characters stripped", "1a2b3c$", "123"},
		{"sign preserved", "-1234", "-1.234"},
		{"bare sign preserved", "-", "-"},
		{"fraction truncated to two digits", "1.23456", "123.456"},
		{"long fraction after decimal dot", "12.345", "12.345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatWhileTyping(tt.raw))
		})
	}
}

func TestFormatWhileTyping_Idempotent(t *testing.T) {
	inputs := []string{
		"", "-", "0", "1234567", "1234.56", "1234.", "1.234", "-500.5",
		"1a2b3c", ".", ".5", "12.345.678", "999", "1000", "0.00",
	}
	for _, raw := range inputs {
		once := FormatWhileTyping(raw)
		assert.Equal(t, once, FormatWhileTyping(once), "not idempotent for %q", raw)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"empty", "", 0},
		{"whitespace only", "   ", 0},
		{"thousands and decimal", "1.234.567.89", 1234567.89},
		{"trailing three digits are thousands", "1.234", 1234},
		{"negative with decimal", "-500.5", -500.5},
		{"plain integer", "42", 42},
		{"garbage", "abc", 0},
		{"lonely dot", ".", 0},
		{"two decimal digits", "0.75", 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.text))
		})
	}
}

func TestParseNumber_RoundTripsFormatForDisplay(t *testing.T) {
	values := []float64{
		1, -1, 0.5, -0.25, 1234567.89, 1000000, 0.01, 999999.99, -500.5, 123456789.1,
	}
	for _, v := range values {
		assert.Equal(t, v, ParseNumber(FormatForDisplay(v)), "round trip failed for %v", v)
	}
}

func TestRateCodec(t *testing.T) {
	t.Run("formats without grouping", func(t *testing.T) {
		assert.Equal(t, "12345.6789", FormatRateWhileTyping("12345.67891"))
	})
	t.Run("strips stray characters", func(t *testing.T) {
		assert.Equal(t, "45", FormatRateWhileTyping("4,x5"))
	})
	t.Run("parse round trip", func(t *testing.T) {
		assert.Equal(t, 3.1415, ParseRate(FormatRateWhileTyping("3.14159")))
	})
	t.Run("unparseable input degrades to zero", func(t *testing.T) {
		assert.Equal(t, 0.0, ParseRate("rate"))
		assert.Equal(t, "", FormatRateWhileTyping("%%"))
	})
	t.Run("idempotent", func(t *testing.T) {
		for _, raw := range []string{"", "7", "7.5", "0.1234", "10.00001", "."} {
			once := FormatRateWhileTyping(raw)
			assert.Equal(t, once, FormatRateWhileTyping(once))
		}
	})
}
