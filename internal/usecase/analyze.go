package usecase

import (
	"context"
	"fmt"
	"strings"

	"KryptoPulse/internal/analysis"
	"KryptoPulse/internal/domain/models"
	drepo "KryptoPulse/internal/domain/repository"
	applogger "KryptoPulse/pkg/logger"
)

// analyzeLookbackDays is the history window behind GET analyze. Wide enough
// that every indicator in the battery has its minimum sample count at any
// provider granularity.
const analyzeLookbackDays = 30

// Analyzer turns a resolved or caller-supplied price series into a full
// analysis record.
type Analyzer struct {
	resolver *Resolver
	fx       drepo.Converter
	narrator drepo.Narrator // nil when the annotator is disabled
	logger   *applogger.Logger
}

// NewAnalyzer creates an Analyzer. narrator may be nil.
func NewAnalyzer(resolver *Resolver, fx drepo.Converter, narrator drepo.Narrator, l *applogger.Logger) *Analyzer {
	return &Analyzer{
		resolver: resolver,
		fx:       fx,
		narrator: narrator,
		logger:   l,
	}
}

// Analyze resolves the asset's recent history through the fallback chain and
// scores it in the requested quote currency.
func (a *Analyzer) Analyze(ctx context.Context, symbol, vs string) (*models.AnalysisResult, error) {
	series, err := a.resolver.ResolveHistory(ctx, symbol, analyzeLookbackDays)
	if err != nil {
		return nil, err
	}

	rate, err := a.fx.Rate(ctx, vs)
	if err != nil {
		return nil, err
	}
	series = series.FilterValid().Scale(rate)
	if len(series) == 0 {
		return nil, fmt.Errorf("no usable points in resolved series for %q", symbol)
	}
	return a.score(ctx, symbol, vs, series), nil
}

// AnalyzeRaw scores a caller-supplied series as-is, bypassing resolution and
// currency conversion. The series is assumed to already be in vs.
func (a *Analyzer) AnalyzeRaw(ctx context.Context, symbol, vs string, series models.PriceSeries) (*models.AnalysisResult, error) {
	filtered := series.FilterValid()
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no finite prices in supplied series")
	}
	return a.score(ctx, symbol, vs, filtered), nil
}

// score is the conversion-independent tail of both entry points: the series
// is already in the quote currency.
func (a *Analyzer) score(ctx context.Context, symbol, vs string, series models.PriceSeries) *models.AnalysisResult {
	latest, _ := series.Latest()
	ind := analysis.Compute(series.Prices())
	comp := analysis.Compose(ind, latest.Price)

	res := &models.AnalysisResult{
		OK:          true,
		Symbol:      strings.ToLower(symbol),
		VS:          strings.ToLower(vs),
		LatestPrice: latest.Price,
		Indicators:  ind,
		Signal:      comp.Signal,
		Confidence:  comp.Confidence,
		Prediction:  comp.Prediction,
		Summary:     "",
		Disclaimer:  models.Disclaimer,
	}
	res.Summary = a.summarize(ctx, res)
	return res
}

// summarize is best effort: the numeric fields are final before it runs and
// any failure degrades to the canned fallback.
func (a *Analyzer) summarize(ctx context.Context, res *models.AnalysisResult) string {
	if a.narrator == nil {
		return defaultSummary(res)
	}
	s, err := a.narrator.Summarize(ctx, res)
	if err != nil {
		if a.logger != nil {
			a.logger.Debug("narrative generation failed",
				applogger.String("symbol", res.Symbol),
				applogger.Error(err),
			)
		}
		return defaultSummary(res)
	}
	return s
}

// defaultSummary renders a deterministic one-liner when no annotator is
// available.
func defaultSummary(res *models.AnalysisResult) string {
	return fmt.Sprintf(
		"%s looks %s against %s with %.0f%% confidence; expected short-term move within %.2f%% to %.2f%%.",
		res.Symbol, res.Signal, strings.ToUpper(res.VS), res.Confidence*100,
		res.Prediction.BandPct[0]*100, res.Prediction.BandPct[1]*100,
	)
}
