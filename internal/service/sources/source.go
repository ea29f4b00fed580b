package sources

import (
	"context"
	"math"
	"time"
)

// Provider names, also used as the keys of the configurable chain order.
const (
	ProviderCoinGecko   = "coingecko"
	ProviderBinance     = "binance"
	ProviderCoinPaprika = "coinpaprika"
)

// finitePositive reports whether v is a usable price.
func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// politeWait sleeps for d as a rate-limit courtesy, honoring cancellation.
func politeWait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
