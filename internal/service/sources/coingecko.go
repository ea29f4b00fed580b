package sources

import (
	"context"
	"fmt"
	"time"

	"KryptoPulse/internal/domain/models"
	drepo "KryptoPulse/internal/domain/repository"
	xhttp "KryptoPulse/pkg/http"
)

// CoinGecko resolves prices from the CoinGecko REST API. The free tier is
// aggressively rate limited, so every call is preceded by a fixed politeness
// delay.
type CoinGecko struct {
	baseURL string
	apiKey  string
	delay   time.Duration
	client  *xhttp.Client
}

// NewCoinGecko creates a CoinGecko source.
func NewCoinGecko(baseURL, apiKey string, delay, timeout time.Duration) drepo.Source {
	return &CoinGecko{
		baseURL: baseURL,
		apiKey:  apiKey,
		delay:   delay,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (s *CoinGecko) Name() string { return ProviderCoinGecko }

func (s *CoinGecko) headers() map[string]string {
	if s.apiKey == "" {
		return nil
	}
	return map[string]string{"x-cg-demo-api-key": s.apiKey}
}

// SpotPrice fetches the current reference-currency price of one asset.
func (s *CoinGecko) SpotPrice(ctx context.Context, assetID string) (float64, error) {
	if err := politeWait(ctx, s.delay); err != nil {
		return 0, models.NewSourceError(s.Name(), "cancelled while waiting", err)
	}

	var payload map[string]map[string]float64
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     s.baseURL + "/simple/price",
		Headers: s.headers(),
		QueryParams: map[string][]string{
			"ids":           {assetID},
			"vs_currencies": {models.ReferenceCurrency},
		},
	}, &payload)
	if err != nil {
		return 0, models.NewSourceError(s.Name(), "spot request failed", err)
	}

	price, ok := payload[assetID][models.ReferenceCurrency]
	if !ok {
		return 0, models.NewSourceError(s.Name(), fmt.Sprintf("no price for %q", assetID), nil)
	}
	if !finitePositive(price) {
		return 0, models.NewSourceError(s.Name(), fmt.Sprintf("unusable price %v for %q", price, assetID), nil)
	}
	return price, nil
}

type geckoMarketChart struct {
	Prices [][2]float64 `json:"prices"`
}

// HistorySeries fetches the close series over the lookback window. CoinGecko
// already returns [timestamp_ms, price] pairs in the canonical order.
func (s *CoinGecko) HistorySeries(ctx context.Context, assetID string, days int) (models.PriceSeries, error) {
	if err := politeWait(ctx, s.delay); err != nil {
		return nil, models.NewSourceError(s.Name(), "cancelled while waiting", err)
	}

	var payload geckoMarketChart
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/coins/%s/market_chart", s.baseURL, assetID),
		Headers: s.headers(),
		QueryParams: map[string][]string{
			"vs_currency": {models.ReferenceCurrency},
			"days":        {fmt.Sprintf("%d", days)},
		},
	}, &payload)
	if err != nil {
		return nil, models.NewSourceError(s.Name(), "history request failed", err)
	}

	series := make(models.PriceSeries, 0, len(payload.Prices))
	for _, p := range payload.Prices {
		series = append(series, models.PricePoint{TS: int64(p[0]), Price: p[1]})
	}
	series = series.FilterValid()
	if len(series) == 0 {
		return nil, models.NewSourceError(s.Name(), fmt.Sprintf("empty history for %q", assetID), nil)
	}
	return series, nil
}
