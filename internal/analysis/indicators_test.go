package analysis

import (
	"math"
	"testing"
)

func risingSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func reversed(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func TestSMAMatchesNaiveMean(t *testing.T) {
	prices := risingSeries(60)

	for _, period := range []int{20, 50} {
		got, ok := SMA(prices, period)
		if !ok {
			t.Fatalf("SMA(%d) undefined for 60 points", period)
		}

		sum := 0.0
		for _, p := range prices[len(prices)-period:] {
			sum += p
		}
		want := sum / float64(period)

		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("SMA(%d) = %v, want %v", period, got, want)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("SMA(%d) not finite: %v", period, got)
		}
	}
}

func TestSMAUndefinedOnShortSeries(t *testing.T) {
	if _, ok := SMA(risingSeries(19), 20); ok {
		t.Fatal("SMA(20) should be undefined for 19 points")
	}
}

func TestRSIBounds(t *testing.T) {
	series := [][]float64{
		risingSeries(30),
		reversed(risingSeries(30)),
		{100, 102, 99, 104, 97, 105, 96, 107, 95, 108, 94, 110, 93, 111, 92, 112},
	}
	for _, s := range series {
		got, ok := RSI(s, RSIPeriod)
		if !ok {
			t.Fatalf("RSI undefined for %d points", len(s))
		}
		if got < 0 || got > 100 {
			t.Fatalf("RSI out of range: %v", got)
		}
	}
}

func TestRSIPureGains(t *testing.T) {
	got, ok := RSI(risingSeries(30), RSIPeriod)
	if !ok {
		t.Fatal("RSI undefined")
	}
	// Loss sum is epsilon-floored, so the value approaches but never quite
	// reaches 100.
	if got < 99.9 || got > 100 {
		t.Fatalf("RSI for pure gains = %v, want ~100", got)
	}
}

func TestRSIUndefinedAtPeriodLength(t *testing.T) {
	if _, ok := RSI(risingSeries(RSIPeriod), RSIPeriod); ok {
		t.Fatal("RSI should be undefined when len == period")
	}
}

func TestMACDDefinedThreshold(t *testing.T) {
	if _, _, _, ok := MACD(risingSeries(MACDSlow + MACDSignal - 1)); ok {
		t.Fatal("MACD should be undefined below slow+signal points")
	}
	m, s, h, ok := MACD(risingSeries(MACDSlow + MACDSignal))
	if !ok {
		t.Fatal("MACD should be defined at slow+signal points")
	}
	if math.Abs(h-(m-s)) > 1e-12 {
		t.Fatalf("histogram %v != macd-signal %v", h, m-s)
	}
}

func TestMACDSignOnTrends(t *testing.T) {
	m, _, _, ok := MACD(risingSeries(100))
	if !ok || m <= 0 {
		t.Fatalf("rising series should have positive macd line, got %v (ok=%v)", m, ok)
	}
	m, _, _, ok = MACD(reversed(risingSeries(100)))
	if !ok || m >= 0 {
		t.Fatalf("falling series should have negative macd line, got %v (ok=%v)", m, ok)
	}
}

func TestTrendSlopeSigns(t *testing.T) {
	up := risingSeries(60)
	down := reversed(up)
	flat := make([]float64, 60)
	for i := range flat {
		flat[i] = 250
	}

	if got, ok := TrendSlope(up, SlopeWindow); !ok || got <= 0 {
		t.Fatalf("rising slope = %v (ok=%v), want > 0", got, ok)
	}
	if got, ok := TrendSlope(down, SlopeWindow); !ok || got >= 0 {
		t.Fatalf("falling slope = %v (ok=%v), want < 0", got, ok)
	}
	if got, ok := TrendSlope(flat, SlopeWindow); !ok || got != 0 {
		t.Fatalf("flat slope = %v (ok=%v), want 0", got, ok)
	}
}

func TestVolatilityZeroForGeometricSeries(t *testing.T) {
	// Constant log-return series has exactly zero deviation.
	prices := make([]float64, 50)
	prices[0] = 100
	for i := 1; i < len(prices); i++ {
		prices[i] = prices[i-1] * 1.01
	}

	got, ok := Volatility(prices)
	if !ok {
		t.Fatal("volatility undefined")
	}
	if got > 1e-12 {
		t.Fatalf("volatility = %v, want ~0", got)
	}
}

func TestVolatilityWindowIsSampleCount(t *testing.T) {
	// Beyond the window, earlier samples must not influence the result.
	long := make([]float64, VolatilityWindow+200)
	for i := range long {
		long[i] = 100 + float64(i%7)
	}
	short := long[len(long)-VolatilityWindow-1:]

	a, okA := Volatility(long)
	b, okB := Volatility(short)
	if !okA || !okB {
		t.Fatal("volatility undefined")
	}
	if math.Abs(a-b) > 1e-12 {
		t.Fatalf("window not fixed at %d samples: %v vs %v", VolatilityWindow, a, b)
	}
}

func TestComputeShortSeriesLeavesNils(t *testing.T) {
	set := Compute(risingSeries(40))
	if set.SMA20 == nil {
		t.Fatal("sma20 should be defined at 40 points")
	}
	if set.SMA50 != nil {
		t.Fatal("sma50 should be undefined at 40 points")
	}
	if set.MACD == nil {
		t.Fatal("macd should be defined at 40 points")
	}
	if set.Volatility == nil {
		t.Fatal("volatility should be defined at 40 points")
	}
}
