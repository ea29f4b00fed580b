package analysis

import (
	"math"
	"testing"

	"KryptoPulse/internal/domain/models"
)

func f(v float64) *float64 { return &v }

func TestComposeConfidenceBounds(t *testing.T) {
	cases := []models.IndicatorSet{
		{SMA20: f(110), SMA50: f(100), MACD: f(1), MACDSignal: f(0.5), RSI: f(75), Slope: f(0.01), Volatility: f(0)},
		{SMA20: f(90), SMA50: f(100), MACD: f(-1), MACDSignal: f(0), RSI: f(20), Slope: f(-0.01), Volatility: f(2.5)},
		{},
		{Volatility: f(0.5)},
	}

	for i, ind := range cases {
		got := Compose(ind, 100)
		if got.Confidence < 0.1 || got.Confidence > 0.95 {
			t.Fatalf("case %d: confidence %v outside [0.1, 0.95]", i, got.Confidence)
		}
	}
}

func TestComposeBandOrderingAndMidpoint(t *testing.T) {
	ind := models.IndicatorSet{
		SMA20: f(110), SMA50: f(100),
		MACD: f(1), MACDSignal: f(0.5),
		RSI: f(70), Slope: f(0.002), Volatility: f(0.02),
	}
	latest := 57321.4

	got := Compose(ind, latest)

	if got.Prediction.Band[0] >= got.Prediction.Band[1] {
		t.Fatalf("band not ordered: %v", got.Prediction.Band)
	}

	mid := (got.Prediction.Band[0] + got.Prediction.Band[1]) / 2
	want := latest * (1 + got.Prediction.Drift)
	if math.Abs(mid-want) > 1e-6 {
		t.Fatalf("band midpoint %v, want latest*(1+drift) = %v", mid, want)
	}
}

func TestComposeDirections(t *testing.T) {
	bull := models.IndicatorSet{
		SMA20: f(110), SMA50: f(100),
		MACD: f(1), MACDSignal: f(0),
		RSI: f(75), Slope: f(0.01), Volatility: f(0.01),
	}
	bear := models.IndicatorSet{
		SMA20: f(90), SMA50: f(100),
		MACD: f(-1), MACDSignal: f(0),
		RSI: f(25), Slope: f(-0.01), Volatility: f(0.01),
	}
	flat := models.IndicatorSet{
		SMA20: f(100), SMA50: f(100),
		MACD: f(0.5), MACDSignal: f(0),
		RSI: f(50), Slope: f(0), Volatility: f(0.01),
	}

	if got := Compose(bull, 100); got.Signal != models.SignalBullish {
		t.Fatalf("bull inputs gave %q", got.Signal)
	}
	if got := Compose(bear, 100); got.Signal != models.SignalBearish {
		t.Fatalf("bear inputs gave %q", got.Signal)
	}
	if got := Compose(flat, 100); got.Signal != models.SignalNeutral {
		t.Fatalf("flat inputs gave %q", got.Signal)
	}
}

func TestComposeVolatilityLowersConfidence(t *testing.T) {
	calm := models.IndicatorSet{SMA20: f(110), SMA50: f(100), MACD: f(1), MACDSignal: f(0), RSI: f(70), Slope: f(0.01), Volatility: f(0.01)}
	wild := models.IndicatorSet{SMA20: f(110), SMA50: f(100), MACD: f(1), MACDSignal: f(0), RSI: f(70), Slope: f(0.01), Volatility: f(0.2)}

	if c, w := Compose(calm, 100), Compose(wild, 100); c.Confidence <= w.Confidence {
		t.Fatalf("calm confidence %v should exceed wild %v", c.Confidence, w.Confidence)
	}
}

func TestComposeExpectedMoveClamped(t *testing.T) {
	quiet := Compose(models.IndicatorSet{Volatility: f(0)}, 100)
	if quiet.Prediction.ExpectedMove != 0.004 {
		t.Fatalf("expected move floor: got %v", quiet.Prediction.ExpectedMove)
	}

	stormy := Compose(models.IndicatorSet{Volatility: f(1)}, 100)
	if stormy.Prediction.ExpectedMove != 0.05 {
		t.Fatalf("expected move ceiling: got %v", stormy.Prediction.ExpectedMove)
	}
}

func TestComposeEndToEndDirectionFlip(t *testing.T) {
	up := risingSeries(100)
	down := reversed(up)

	bull := Compose(Compute(up), up[len(up)-1])
	bear := Compose(Compute(down), down[len(down)-1])

	if bull.Signal != models.SignalBullish {
		t.Fatalf("rising series gave %q", bull.Signal)
	}
	if bear.Signal != models.SignalBearish {
		t.Fatalf("falling series gave %q", bear.Signal)
	}
}
