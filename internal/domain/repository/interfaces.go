package repository

import (
	"context"

	"KryptoPulse/internal/domain/models"
)

// Source is one upstream market-data provider. Both operations return prices
// in the reference currency; provider quirks (id resolution, politeness
// delays, granularity limits) are absorbed behind this interface.
type Source interface {
	Name() string
	SpotPrice(ctx context.Context, assetID string) (float64, error)
	HistorySeries(ctx context.Context, assetID string, days int) (models.PriceSeries, error)
}

// Converter resolves exchange rates from the reference currency.
type Converter interface {
	Rate(ctx context.Context, quote string) (float64, error)
	Convert(ctx context.Context, amountRef float64, quote string) (float64, error)
}

// Narrator turns a finished analysis into prose. Best effort: implementations
// must never influence the numeric fields.
type Narrator interface {
	Summarize(ctx context.Context, res *models.AnalysisResult) (string, error)
}

// Metrics records domain-level measurements.
type Metrics interface {
	RecordSourceRequest(provider, op, outcome string)
	RecordCache(op string, hit bool)
	RecordFallbackDepth(op string, depth int)
	RecordLastPrice(asset string, price float64)
}
