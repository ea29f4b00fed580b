package analysis

import (
	"math"

	"KryptoPulse/internal/domain/models"
)

// Fixed indicator battery parameters.
const (
	SMAShortPeriod = 20
	SMALongPeriod  = 50
	RSIPeriod      = 14
	MACDFast       = 12
	MACDSlow       = 26
	MACDSignal     = 9
	SlopeWindow    = 30

	// VolatilityWindow is a fixed sample count, not a fixed time span: at
	// hourly granularity it covers roughly 7 days, at other granularities it
	// covers whatever those samples span.
	VolatilityWindow = 7 * 24

	epsilon = 1e-9
)

// SMA returns the mean of the last period elements. Not defined when the
// series is shorter than the period.
func SMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period), true
}

// RSI computes the momentum oscillator over the trailing period deltas,
// mapped to a 0-100 scale. The loss sum is floored at epsilon so a pure-gain
// window yields (almost exactly) 100 instead of dividing by zero.
func RSI(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) <= period {
		return 0, false
	}

	window := prices[len(prices)-period-1:]
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	if losses < epsilon {
		losses = epsilon
	}
	rs := gains / losses
	return 100 - 100/(1+rs), true
}

// emaSeries advances an exponential moving average one sample at a time,
// seeded with the simple mean of the first period samples. The returned
// series has len(prices)-period+1 elements.
func emaSeries(prices []float64, period int) []float64 {
	if len(prices) < period {
		return nil
	}

	seed := 0.0
	for _, p := range prices[:period] {
		seed += p
	}
	seed /= float64(period)

	k := 2.0 / float64(period+1)
	out := make([]float64, 0, len(prices)-period+1)
	out = append(out, seed)

	prev := seed
	for _, p := range prices[period:] {
		prev = p*k + prev*(1-k)
		out = append(out, prev)
	}
	return out
}

// MACD computes the trend/momentum indicator line, its signal line and their
// histogram. The fast and slow EMA series are aligned by dropping the fast
// series' leading excess. Not defined when the series is shorter than
// slow+signal samples.
func MACD(prices []float64) (macd, signal, histogram float64, ok bool) {
	if len(prices) < MACDSlow+MACDSignal {
		return 0, 0, 0, false
	}

	fast := emaSeries(prices, MACDFast)
	slow := emaSeries(prices, MACDSlow)
	fast = fast[len(fast)-len(slow):]

	line := make([]float64, len(slow))
	for i := range slow {
		line[i] = fast[i] - slow[i]
	}

	signalSeries := emaSeries(line, MACDSignal)
	if len(signalSeries) == 0 {
		return 0, 0, 0, false
	}

	macd = line[len(line)-1]
	signal = signalSeries[len(signalSeries)-1]
	return macd, signal, macd - signal, true
}

// TrendSlope fits an ordinary least-squares line through the trailing window
// points against a normalized 0..1 index axis, then divides by the window's
// mean price so the slope is comparable across assets of different absolute
// price. Not defined with fewer than two points.
func TrendSlope(prices []float64, window int) (float64, bool) {
	if window > len(prices) {
		window = len(prices)
	}
	if window < 2 {
		return 0, false
	}

	tail := prices[len(prices)-window:]
	n := float64(window)

	var sumX, sumY float64
	for i, y := range tail {
		sumX += float64(i) / (n - 1)
		sumY += y
	}
	meanX := sumX / n
	meanY := sumY / n

	// Centered form so a constant window yields an exact zero.
	var num, den float64
	for i, y := range tail {
		dx := float64(i)/(n-1) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den < epsilon {
		return 0, false
	}
	slope := num / den

	mean := meanY
	if mean < epsilon {
		mean = epsilon
	}
	return slope / mean, true
}

// Volatility is the standard deviation of log-returns over the trailing
// VolatilityWindow return samples, or all available returns when the series
// is shorter.
func Volatility(prices []float64) (float64, bool) {
	if len(prices) < 2 {
		return 0, false
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 || prices[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(prices[i]/prices[i-1]))
	}
	if len(returns) == 0 {
		return 0, false
	}
	if len(returns) > VolatilityWindow {
		returns = returns[len(returns)-VolatilityWindow:]
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance), true
}

// Compute evaluates the full indicator battery over one price sequence.
// Indicators the sequence is too short for stay nil.
func Compute(prices []float64) models.IndicatorSet {
	var set models.IndicatorSet

	if v, ok := SMA(prices, SMAShortPeriod); ok {
		set.SMA20 = &v
	}
	if v, ok := SMA(prices, SMALongPeriod); ok {
		set.SMA50 = &v
	}
	if v, ok := RSI(prices, RSIPeriod); ok {
		set.RSI = &v
	}
	if m, s, h, ok := MACD(prices); ok {
		set.MACD = &m
		set.MACDSignal = &s
		set.MACDHistogram = &h
	}
	if v, ok := TrendSlope(prices, SlopeWindow); ok {
		set.Slope = &v
	}
	if v, ok := Volatility(prices); ok {
		set.Volatility = &v
	}

	return set
}
