// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Round rounds half away from zero.
func Round(x float64) int64 {
	return int64(math.Round(x))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int64) int64 {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// ToFixed converts x to a signed fixed-point value with frac fractional bits.
func ToFixed(x float64, frac uint) int64 {
	return Round(x * float64(int64(1)<<frac))
}

// FromFixed is the inverse of ToFixed.
func FromFixed(v int64, frac uint) float64 {
	return float64(v) / float64(int64(1)<<frac)
}

// ShiftRound shifts v right by n bits, rounding to nearest.
func ShiftRound(v int64, n uint) int64 {
	if n == 0 {
		return v
	}
	return (v + int64(1)<<(n-1)) >> n
}

// DbToGain converts decibels to a linear amplitude factor.
func DbToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// GainToDb converts a linear amplitude factor to decibels.
func GainToDb(g float64) float64 {
	if g <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(g)
}
