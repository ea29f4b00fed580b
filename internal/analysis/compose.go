package analysis

import (
	"math"

	"KryptoPulse/internal/domain/models"
)

// Scoring rule constants. Documented values, not tunables: changing any of
// them changes the published signal contract.
const (
	rsiUpper = 60.0
	rsiLower = 40.0

	slopeWeight = 50.0

	scoreClamp       = 3.0
	directionCutoff  = 0.25
	confidenceFloor  = 0.10
	confidenceCeil   = 0.95
	moveFloor        = 0.004
	moveCeil         = 0.05
	moveScale        = 1.2
	driftScale       = 0.012
	fallbackVolatile = 0.01
)

// Composition is the reduced output of the scoring rule.
type Composition struct {
	Signal     string
	Confidence float64
	NormScore  float64
	Prediction models.Prediction
}

// Compose reduces an indicator set and the latest price into a direction,
// a bounded confidence and a predicted band. Pure function, no I/O. A nil
// indicator loses its comparison vote (SMA and MACD) or contributes nothing
// (RSI band, slope), mirroring how the indicators degrade on short series.
func Compose(ind models.IndicatorSet, latestPrice float64) Composition {
	score := 0.0

	if ind.SMA20 != nil && ind.SMA50 != nil && *ind.SMA20 > *ind.SMA50 {
		score++
	} else {
		score--
	}

	if ind.MACD != nil && ind.MACDSignal != nil && *ind.MACD > *ind.MACDSignal {
		score++
	} else {
		score--
	}

	if ind.RSI != nil {
		switch {
		case *ind.RSI > rsiUpper:
			score++
		case *ind.RSI < rsiLower:
			score--
		}
	}

	if ind.Slope != nil {
		score += *ind.Slope * slopeWeight
	}

	score = clamp(score, -scoreClamp, scoreClamp)
	norm := score / scoreClamp

	signal := models.SignalNeutral
	switch {
	case norm > directionCutoff:
		signal = models.SignalBullish
	case norm < -directionCutoff:
		signal = models.SignalBearish
	}

	vol := fallbackVolatile
	if ind.Volatility != nil {
		vol = *ind.Volatility
	}

	confidence := clamp(0.5-2*vol+0.5*math.Abs(norm), confidenceFloor, confidenceCeil)
	expectedMove := clamp(moveScale*vol, moveFloor, moveCeil)
	drift := norm * driftScale

	bandPct := [2]float64{drift - expectedMove, drift + expectedMove}
	band := [2]float64{
		latestPrice * (1 + bandPct[0]),
		latestPrice * (1 + bandPct[1]),
	}

	return Composition{
		Signal:     signal,
		Confidence: confidence,
		NormScore:  norm,
		Prediction: models.Prediction{
			Drift:        drift,
			ExpectedMove: expectedMove,
			BandPct:      bandPct,
			Band:         band,
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
