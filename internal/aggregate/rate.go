// Package aggregate derives report metrics from entity snapshots. Every
// function is pure and total: empty input yields zero values and no rate is
// ever NaN or infinite.
package aggregate

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent returns part/whole*100 rounded to two places, or 0 when whole is 0.
func Percent(part, whole float64) float64 {
	if almostZero(whole) {
		return 0
	}
	return round2(part / whole * 100)
}

// Rate is Percent clamped to [0, 100]. Used for occupancy, conversion and CTR.
func Rate(part, whole float64) float64 {
	return clamp(Percent(part, whole), 0, 100)
}

// PercentDecimal is Percent over currency amounts. The result is signed.
func PercentDecimal(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	f, _ := part.Mul(hundred).Div(whole).Round(2).Float64()
	return f
}

// ChangePct returns the signed percentage change from previous to current,
// or 0 when previous is 0.
func ChangePct(previous, current decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	return PercentDecimal(current.Sub(previous), previous.Abs())
}

func almostZero(v float64) bool {
	return v > -0.0001 && v < 0.0001
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
