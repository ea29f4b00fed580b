package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"KryptoPulse/internal/domain/models"
	drepo "KryptoPulse/internal/domain/repository"
	xhttp "KryptoPulse/pkg/http"
)

// Binance caps klines responses at 1000 candles per call.
const binanceMaxCandles = 1000

// binanceSymbols maps common asset identifiers to USDT trading pairs.
// Anything not listed falls back to a ticker heuristic.
var binanceSymbols = map[string]string{
	"bitcoin":       "BTCUSDT",
	"ethereum":      "ETHUSDT",
	"solana":        "SOLUSDT",
	"cardano":       "ADAUSDT",
	"ripple":        "XRPUSDT",
	"polkadot":      "DOTUSDT",
	"dogecoin":      "DOGEUSDT",
	"litecoin":      "LTCUSDT",
	"chainlink":     "LINKUSDT",
	"avalanche-2":   "AVAXUSDT",
	"binancecoin":   "BNBUSDT",
	"matic-network": "MATICUSDT",
	"tron":          "TRXUSDT",
	"stellar":       "XLMUSDT",
}

// Binance resolves prices from the Binance public REST API. USDT pairs stand
// in for the reference currency.
type Binance struct {
	baseURL string
	client  *xhttp.Client
}

// NewBinance creates a Binance source.
func NewBinance(baseURL string, timeout time.Duration) drepo.Source {
	return &Binance{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (s *Binance) Name() string { return ProviderBinance }

func (s *Binance) symbolFor(assetID string) (string, error) {
	if sym, ok := binanceSymbols[assetID]; ok {
		return sym, nil
	}
	// Short identifiers are probably tickers already (e.g. "btc").
	if len(assetID) <= 5 && !strings.ContainsAny(assetID, "-_") {
		return strings.ToUpper(assetID) + "USDT", nil
	}
	return "", models.NewSourceError(s.Name(), fmt.Sprintf("no known trading pair for %q", assetID), nil)
}

type binanceTicker struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// SpotPrice fetches the current pair price.
func (s *Binance) SpotPrice(ctx context.Context, assetID string) (float64, error) {
	symbol, err := s.symbolFor(assetID)
	if err != nil {
		return 0, err
	}

	var payload binanceTicker
	err = s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         s.baseURL + "/api/v3/ticker/price",
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &payload)
	if err != nil {
		return 0, models.NewSourceError(s.Name(), "spot request failed", err)
	}

	price, err := strconv.ParseFloat(payload.Price, 64)
	if err != nil {
		return 0, models.NewSourceError(s.Name(), fmt.Sprintf("non-numeric price %q", payload.Price), err)
	}
	if !finitePositive(price) {
		return 0, models.NewSourceError(s.Name(), fmt.Sprintf("unusable price %v for %q", price, assetID), nil)
	}
	return price, nil
}

// klineInterval picks a candle granularity for the window so the candle
// count stays inside the per-call limit: finer candles for shorter windows.
func klineInterval(days int) (interval string, limit int) {
	switch {
	case days <= 1:
		interval, limit = "15m", 96
	case days <= 7:
		interval, limit = "1h", days*24
	case days <= 90:
		interval, limit = "4h", days*6
	default:
		interval, limit = "1d", days
	}
	if limit > binanceMaxCandles {
		limit = binanceMaxCandles
	}
	return interval, limit
}

// HistorySeries fetches klines and normalizes close prices into the
// canonical series. Binance encodes each candle as a mixed-type array with
// the close price at index 4 as a string.
func (s *Binance) HistorySeries(ctx context.Context, assetID string, days int) (models.PriceSeries, error) {
	symbol, err := s.symbolFor(assetID)
	if err != nil {
		return nil, err
	}

	interval, limit := klineInterval(days)

	var payload [][]interface{}
	err = s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {interval},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &payload)
	if err != nil {
		return nil, models.NewSourceError(s.Name(), "klines request failed", err)
	}

	series := make(models.PriceSeries, 0, len(payload))
	for _, candle := range payload {
		if len(candle) < 5 {
			continue
		}
		openTime, ok := candle[0].(float64)
		if !ok {
			continue
		}
		closeStr, ok := candle[4].(string)
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			continue
		}
		series = append(series, models.PricePoint{TS: int64(openTime), Price: price})
	}
	series = series.FilterValid()
	if len(series) == 0 {
		return nil, models.NewSourceError(s.Name(), fmt.Sprintf("empty klines for %q", assetID), nil)
	}
	return series, nil
}
