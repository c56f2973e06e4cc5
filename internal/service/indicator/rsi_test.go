package indicator

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func series(vals ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

func ramp(start, step float64, n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.NewFromFloat(start + step*float64(i))
	}
	return out
}

func TestComputeLatestRSIInsufficient(t *testing.T) {
	cases := []struct {
		name   string
		closes []decimal.Decimal
		period int
	}{
		{"empty", nil, 14},
		{"exactly period", ramp(100, 1, 14), 14},
		{"period too small", ramp(100, 1, 30), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := ComputeLatestRSI(tc.closes, tc.period); ok {
				t.Fatalf("expected no value")
			}
		})
	}
}

func TestComputeLatestRSIMonotonic(t *testing.T) {
	up, ok := ComputeLatestRSI(ramp(100, 1, 15), 14)
	if !ok || math.Abs(up-100) > 1e-9 {
		t.Fatalf("rising series rsi = %v, %v", up, ok)
	}
	down, ok := ComputeLatestRSI(ramp(200, -1, 30), 14)
	if !ok || math.Abs(down) > 1e-9 {
		t.Fatalf("falling series rsi = %v, %v", down, ok)
	}
}

func TestComputeLatestRSIKnownValue(t *testing.T) {
	// classic Wilder example: avg gain 3.34/14, avg loss 1.40/14
	closes := series(44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28)
	got, ok := ComputeLatestRSI(closes, 14)
	if !ok {
		t.Fatalf("expected value")
	}
	if math.Abs(got-70.46) > 0.05 {
		t.Fatalf("rsi = %.4f, want ~70.46", got)
	}
	if got <= 0 || got >= 100 {
		t.Fatalf("rsi out of range: %v", got)
	}
}
