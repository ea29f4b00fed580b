package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// ReferenceCurrency is the common currency every source normalizes prices
// into before quote-currency conversion.
const ReferenceCurrency = "usd"

// Signal directions produced by the composer.
const (
	SignalBullish = "bullish"
	SignalBearish = "bearish"
	SignalNeutral = "neutral"
)

// Disclaimer is appended verbatim to every analysis result.
const Disclaimer = "This is an automated technical analysis, not financial advice. " +
	"Crypto assets are highly volatile; never invest more than you can afford to lose."

// PricePoint is one observation of an asset price. It serializes as a
// two-element array [timestamp_ms, price] on the wire.
type PricePoint struct {
	TS    int64   // milliseconds since epoch
	Price float64 // in the reference currency
}

func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(p.TS), p.Price})
}

func (p *PricePoint) UnmarshalJSON(b []byte) error {
	var arr []float64
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	if len(arr) != 2 {
		return fmt.Errorf("price point must be a [timestamp, price] pair, got %d elements", len(arr))
	}
	p.TS = int64(arr[0])
	p.Price = arr[1]
	return nil
}

// PriceSeries is an ordered sequence of price points for one asset, one
// currency, one lookback window. Never mutated after creation.
type PriceSeries []PricePoint

// Prices returns the price column of the series.
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// Latest returns the last point of the series.
func (s PriceSeries) Latest() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}

// FilterValid drops points with non-finite or non-positive prices.
func (s PriceSeries) FilterValid() PriceSeries {
	out := make(PriceSeries, 0, len(s))
	for _, p := range s {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Scale returns a copy of the series with every price multiplied by rate.
func (s PriceSeries) Scale(rate float64) PriceSeries {
	if rate == 1 {
		return s
	}
	out := make(PriceSeries, len(s))
	for i, p := range s {
		out[i] = PricePoint{TS: p.TS, Price: p.Price * rate}
	}
	return out
}

// IndicatorSet holds the fixed battery of indicators computed per analysis
// call. Nil means the series was too short for that indicator.
type IndicatorSet struct {
	SMA20         *float64 `json:"sma20"`
	SMA50         *float64 `json:"sma50"`
	RSI           *float64 `json:"rsi"`
	MACD          *float64 `json:"macd"`
	MACDSignal    *float64 `json:"macd_signal"`
	MACDHistogram *float64 `json:"macd_histogram"`
	Slope         *float64 `json:"slope"`
	Volatility    *float64 `json:"volatility"`
}

// Prediction is the short-horizon price band derived from the score.
type Prediction struct {
	Drift        float64    `json:"drift"`
	ExpectedMove float64    `json:"expected_move"`
	BandPct      [2]float64 `json:"band_pct"`
	Band         [2]float64 `json:"band"`
}

// AnalysisResult is the externally visible analysis record. Immutable once
// constructed; one instance per request.
type AnalysisResult struct {
	OK          bool         `json:"ok"`
	Symbol      string       `json:"symbol"`
	VS          string       `json:"vs"`
	LatestPrice float64      `json:"latest_price"`
	Indicators  IndicatorSet `json:"indicators"`
	Signal      string       `json:"signal"`
	Confidence  float64      `json:"confidence"`
	Prediction  Prediction   `json:"prediction"`
	Summary     string       `json:"summary"`
	Disclaimer  string       `json:"disclaimer"`
}
