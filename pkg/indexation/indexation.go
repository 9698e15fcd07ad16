// Package indexation manages the monthly inflation (IPC) rate table and the
// compounding applied to indexed budget values.
package indexation

// Rate is one configured monthly inflation percentage.
type Rate struct {
	Month int
	Rate  float64
}

// CompoundFactor returns the multiplier accumulated from startMonth through
// month inclusive. Months without a configured rate contribute a 1x factor.
func CompoundFactor(rates map[int]float64, startMonth, month int) float64 {
	factor := 1.0
	for k := startMonth; k <= month; k++ {
		factor *= 1 + rates[k]/100
	}
	return factor
}

// EffectiveValue returns a base value compounded by the configured rates from
// the first active month through the requested month. It is a pure function
// of its inputs and is recomputed on every read; callers must not cache it.
func EffectiveValue(base float64, startMonth int, rates map[int]float64, month int) float64 {
	if month < startMonth {
		return base
	}
	return base * CompoundFactor(rates, startMonth, month)
}
