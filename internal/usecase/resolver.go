package usecase

import (
	"context"
	"errors"
	"time"

	"KryptoPulse/internal/domain/models"
	drepo "KryptoPulse/internal/domain/repository"
	"KryptoPulse/pkg/cache"
	applogger "KryptoPulse/pkg/logger"
)

// Resolver orchestrates the ordered fallback chain across sources for a
// single asset. One source failing is swallowed and the next is tried; only
// a fully exhausted chain surfaces as an error.
type Resolver struct {
	sources    []drepo.Source
	cache      cache.Service
	metrics    drepo.Metrics
	logger     *applogger.Logger
	spotTTL    time.Duration
	historyTTL time.Duration
	assetDelay time.Duration
}

// NewResolver creates a Resolver over a statically ordered source chain.
func NewResolver(
	sources []drepo.Source,
	c cache.Service,
	m drepo.Metrics,
	l *applogger.Logger,
	spotTTL, historyTTL, assetDelay time.Duration,
) *Resolver {
	return &Resolver{
		sources:    sources,
		cache:      c,
		metrics:    m,
		logger:     l,
		spotTTL:    spotTTL,
		historyTTL: historyTTL,
		assetDelay: assetDelay,
	}
}

// firstSuccess walks the chain in order and returns the first successful
// result together with how many sources were tried. Sequential by design:
// exhausting the chain costs the sum of the per-source timeouts, which is
// accepted over racing rate-limited providers.
func firstSuccess[T any](
	ctx context.Context,
	sources []drepo.Source,
	try func(context.Context, drepo.Source) (T, error),
	onError func(drepo.Source, error),
) (T, int, bool) {
	var zero T
	for i, src := range sources {
		v, err := try(ctx, src)
		if err == nil {
			return v, i + 1, true
		}
		if onError != nil {
			onError(src, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return zero, len(sources), false
}

func (r *Resolver) onSourceError(op string) func(drepo.Source, error) {
	return func(src drepo.Source, err error) {
		if r.metrics != nil {
			r.metrics.RecordSourceRequest(src.Name(), op, "error")
		}
		if r.logger != nil {
			r.logger.Warn("source failed, falling through",
				applogger.String("provider", src.Name()),
				applogger.String("op", op),
				applogger.Error(err),
			)
		}
	}
}

// ResolveSpot returns the current reference-currency price of an asset.
func (r *Resolver) ResolveSpot(ctx context.Context, assetID string) (float64, error) {
	key := cache.Key("spot", assetID)
	if r.cache != nil {
		var cached float64
		if err := r.cache.Get(ctx, key, &cached); err == nil {
			if r.metrics != nil {
				r.metrics.RecordCache("spot", true)
			}
			return cached, nil
		}
		if r.metrics != nil {
			r.metrics.RecordCache("spot", false)
		}
	}

	price, depth, ok := firstSuccess(ctx, r.sources,
		func(ctx context.Context, src drepo.Source) (float64, error) {
			return src.SpotPrice(ctx, assetID)
		},
		r.onSourceError("spot"),
	)
	if !ok {
		return 0, &models.ExhaustedError{Asset: assetID}
	}

	if r.metrics != nil {
		r.metrics.RecordSourceRequest(r.sources[depth-1].Name(), "spot", "success")
		r.metrics.RecordFallbackDepth("spot", depth)
		r.metrics.RecordLastPrice(assetID, price)
	}
	if r.cache != nil {
		_ = r.cache.Set(ctx, key, price, r.spotTTL)
	}
	return price, nil
}

// ResolveHistory returns the canonical close series of an asset over the
// lookback window, in the reference currency.
func (r *Resolver) ResolveHistory(ctx context.Context, assetID string, days int) (models.PriceSeries, error) {
	key := cache.Key("hist", assetID, days)
	if r.cache != nil {
		var cached models.PriceSeries
		if err := r.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
			if r.metrics != nil {
				r.metrics.RecordCache("history", true)
			}
			return cached, nil
		}
		if r.metrics != nil {
			r.metrics.RecordCache("history", false)
		}
	}

	series, depth, ok := firstSuccess(ctx, r.sources,
		func(ctx context.Context, src drepo.Source) (models.PriceSeries, error) {
			return src.HistorySeries(ctx, assetID, days)
		},
		r.onSourceError("history"),
	)
	if !ok {
		return nil, &models.ExhaustedError{Asset: assetID}
	}

	if r.metrics != nil {
		r.metrics.RecordSourceRequest(r.sources[depth-1].Name(), "history", "success")
		r.metrics.RecordFallbackDepth("history", depth)
	}
	if r.cache != nil {
		_ = r.cache.Set(ctx, key, series, r.historyTTL)
	}
	return series, nil
}

// SpotResult is one asset's outcome inside a batch resolution.
type SpotResult struct {
	Price float64
	Err   error
}

// ResolveSpotBatch resolves several assets sequentially with a polite delay
// between them. A failed asset degrades to its own error; it never fails
// the batch.
func (r *Resolver) ResolveSpotBatch(ctx context.Context, assetIDs []string) map[string]SpotResult {
	out := make(map[string]SpotResult, len(assetIDs))
	for i, id := range assetIDs {
		if i > 0 {
			if err := r.interAssetPause(ctx); err != nil {
				out[id] = SpotResult{Err: err}
				continue
			}
		}
		price, err := r.ResolveSpot(ctx, id)
		out[id] = SpotResult{Price: price, Err: err}
	}
	return out
}

// HistoryResult is one asset's series outcome inside a batch resolution.
type HistoryResult struct {
	Series models.PriceSeries
	Err    error
}

// ResolveHistoryBatch resolves several assets' series sequentially with a
// polite delay between them, degrading per asset on failure.
func (r *Resolver) ResolveHistoryBatch(ctx context.Context, assetIDs []string, days int) []HistoryResult {
	out := make([]HistoryResult, len(assetIDs))
	for i, id := range assetIDs {
		if i > 0 {
			if err := r.interAssetPause(ctx); err != nil {
				out[i] = HistoryResult{Err: err}
				continue
			}
		}
		series, err := r.ResolveHistory(ctx, id, days)
		out[i] = HistoryResult{Series: series, Err: err}
	}
	return out
}

func (r *Resolver) interAssetPause(ctx context.Context) error {
	if r.assetDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(r.assetDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsExhausted reports whether err is an exhausted-chain error.
func IsExhausted(err error) bool {
	var e *models.ExhaustedError
	return errors.As(err, &e)
}
