// Package indicator adapts closing-price series to the talib numerics.
package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
)

// DefaultPeriod is the conventional RSI lookback.
const DefaultPeriod = 14

// MinCloses returns how many closes ComputeLatestRSI needs for period.
func MinCloses(period int) int {
	return period + 1
}

// ComputeLatestRSI returns the Wilder RSI at the last bar of closes (oldest first).
// It reports false when the series is too short or period is below 2.
func ComputeLatestRSI(closes []decimal.Decimal, period int) (float64, bool) {
	if period < 2 || len(closes) < MinCloses(period) {
		return 0, false
	}

	in := make([]float64, len(closes))
	for i, c := range closes {
		in[i] = c.InexactFloat64()
	}

	out := talib.Rsi(in, period)
	if len(out) == 0 {
		return 0, false
	}
	v := out[len(out)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
