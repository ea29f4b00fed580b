package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"KryptoPulse/internal/domain/models"
	drepo "KryptoPulse/internal/domain/repository"
	"KryptoPulse/pkg/cache"
	xhttp "KryptoPulse/pkg/http"
)

// Identifier-to-instrument mappings are effectively static, so resolved ids
// are cached for a day.
const paprikaIDTTL = 24 * time.Hour

// CoinPaprika resolves prices from the CoinPaprika REST API. Its instrument
// ids ("btc-bitcoin") cannot be derived from an asset identifier alone, so
// resolution is two-step: direct lookup first, then free-text search.
type CoinPaprika struct {
	baseURL string
	client  *xhttp.Client
	cache   cache.Service
}

// NewCoinPaprika creates a CoinPaprika source.
func NewCoinPaprika(baseURL string, timeout time.Duration, c cache.Service) drepo.Source {
	return &CoinPaprika{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		cache:   c,
	}
}

func (s *CoinPaprika) Name() string { return ProviderCoinPaprika }

type paprikaCoin struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type paprikaSearch struct {
	Currencies []paprikaCoin `json:"currencies"`
}

// resolveID maps an asset identifier to a CoinPaprika instrument id. Exactly
// one instrument must match, otherwise resolution fails for this provider.
func (s *CoinPaprika) resolveID(ctx context.Context, assetID string) (string, error) {
	key := cache.Key("paprika:id", assetID)
	if s.cache != nil {
		var cached string
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	// Direct lookup works when the caller already passes a paprika id.
	if strings.Contains(assetID, "-") {
		var coin paprikaCoin
		err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    fmt.Sprintf("%s/coins/%s", s.baseURL, assetID),
		}, &coin)
		if err == nil && coin.ID != "" {
			s.storeID(ctx, key, coin.ID)
			return coin.ID, nil
		}
	}

	var result paprikaSearch
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL + "/search",
		QueryParams: map[string][]string{
			"q":     {assetID},
			"c":     {"currencies"},
			"limit": {"1"},
		},
	}, &result)
	if err != nil {
		return "", models.NewSourceError(s.Name(), "id search failed", err)
	}
	if len(result.Currencies) == 0 {
		return "", models.NewSourceError(s.Name(), fmt.Sprintf("no instrument for %q", assetID), nil)
	}

	id := result.Currencies[0].ID
	s.storeID(ctx, key, id)
	return id, nil
}

func (s *CoinPaprika) storeID(ctx context.Context, key, id string) {
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, id, paprikaIDTTL)
	}
}

type paprikaTicker struct {
	Quotes map[string]struct {
		Price float64 `json:"price"`
	} `json:"quotes"`
}

// SpotPrice fetches the current USD quote for one asset.
func (s *CoinPaprika) SpotPrice(ctx context.Context, assetID string) (float64, error) {
	id, err := s.resolveID(ctx, assetID)
	if err != nil {
		return 0, err
	}

	var payload paprikaTicker
	err = s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         fmt.Sprintf("%s/tickers/%s", s.baseURL, id),
		QueryParams: map[string][]string{"quotes": {"USD"}},
	}, &payload)
	if err != nil {
		return 0, models.NewSourceError(s.Name(), "spot request failed", err)
	}

	quote, ok := payload.Quotes["USD"]
	if !ok {
		return 0, models.NewSourceError(s.Name(), fmt.Sprintf("no USD quote for %q", assetID), nil)
	}
	if !finitePositive(quote.Price) {
		return 0, models.NewSourceError(s.Name(), fmt.Sprintf("unusable price %v for %q", quote.Price, assetID), nil)
	}
	return quote.Price, nil
}

type paprikaHistoryPoint struct {
	Timestamp string  `json:"timestamp"`
	Price     float64 `json:"price"`
}

// HistorySeries fetches the historical ticker series: hourly points for
// short windows, daily beyond a week.
func (s *CoinPaprika) HistorySeries(ctx context.Context, assetID string, days int) (models.PriceSeries, error) {
	id, err := s.resolveID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	interval := "1h"
	if days > 7 {
		interval = "1d"
	}
	start := time.Now().Add(-time.Duration(days) * 24 * time.Hour).Unix()

	var payload []paprikaHistoryPoint
	err = s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/tickers/%s/historical", s.baseURL, id),
		QueryParams: map[string][]string{
			"start":    {fmt.Sprintf("%d", start)},
			"interval": {interval},
		},
	}, &payload)
	if err != nil {
		return nil, models.NewSourceError(s.Name(), "history request failed", err)
	}

	series := make(models.PriceSeries, 0, len(payload))
	for _, p := range payload {
		ts, err := time.Parse(time.RFC3339, p.Timestamp)
		if err != nil {
			continue
		}
		series = append(series, models.PricePoint{TS: ts.UnixMilli(), Price: p.Price})
	}
	series = series.FilterValid()
	if len(series) == 0 {
		return nil, models.NewSourceError(s.Name(), fmt.Sprintf("empty history for %q", assetID), nil)
	}
	return series, nil
}
