package trainlog

import "math"

// Undefined is the marker for a missing numeric input or an uncomputable
// derived value. It propagates as a zero contribution through additive sums
// but stays distinguishable from a true zero.
func Undefined() float64 {
	return math.NaN()
}

// Defined reports whether v carries a real value.
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// OrZero collapses an undefined value to 0 for additive or
// presentation-safe contexts.
func OrZero(v float64) float64 {
	if !Defined(v) {
		return 0
	}
	return v
}

// FirstDefined returns the first defined value, or undefined when none is.
func FirstDefined(values ...float64) float64 {
	for _, v := range values {
		if Defined(v) {
			return v
		}
	}
	return Undefined()
}

// AddDefined sums values, counting undefined entries as zero contribution.
func AddDefined(values ...float64) float64 {
	total := 0.0
	for _, v := range values {
		if Defined(v) {
			total += v
		}
	}
	return total
}
