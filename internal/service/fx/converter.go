package fx

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"KryptoPulse/internal/domain/models"
	drepo "KryptoPulse/internal/domain/repository"
	"KryptoPulse/pkg/cache"
	xhttp "KryptoPulse/pkg/http"
)

// Converter resolves spot exchange rates from the reference currency.
// Rates are cached with a TTL well above the price TTLs: FX moves far
// slower than crypto spot prices.
type Converter struct {
	baseURL string
	ttl     time.Duration
	client  *xhttp.Client
	cache   cache.Service
}

// New creates a Converter backed by an open.er-api.com compatible endpoint.
func New(baseURL string, ttl time.Duration, c cache.Service) drepo.Converter {
	return &Converter{
		baseURL: baseURL,
		ttl:     ttl,
		client:  xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		cache:   c,
	}
}

type ratesResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// Rate returns the reference→quote rate. The identity rate needs no I/O.
func (c *Converter) Rate(ctx context.Context, quote string) (float64, error) {
	quote = strings.ToLower(quote)
	if quote == models.ReferenceCurrency {
		return 1, nil
	}

	key := cache.Key("fx", quote)
	if c.cache != nil {
		var cached float64
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	var payload ratesResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/latest/%s", c.baseURL, strings.ToUpper(models.ReferenceCurrency)),
	}, &payload)
	if err != nil {
		return 0, &models.ConversionError{Quote: quote, Err: err}
	}

	rate, ok := payload.Rates[strings.ToUpper(quote)]
	if !ok {
		return 0, &models.ConversionError{Quote: quote, Err: fmt.Errorf("rate missing from response")}
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return 0, &models.ConversionError{Quote: quote, Err: fmt.Errorf("unusable rate %v", rate)}
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, key, rate, c.ttl)
	}
	return rate, nil
}

// Convert expresses a reference-currency amount in the quote currency.
func (c *Converter) Convert(ctx context.Context, amountRef float64, quote string) (float64, error) {
	rate, err := c.Rate(ctx, quote)
	if err != nil {
		return 0, err
	}
	return amountRef * rate, nil
}
