package di

import (
	"fmt"

	"KryptoPulse/internal/domain/repository"
	"KryptoPulse/internal/handler/api"
	"KryptoPulse/internal/service/fx"
	"KryptoPulse/internal/service/narrative"
	"KryptoPulse/internal/service/sources"
	"KryptoPulse/internal/usecase"
	"KryptoPulse/pkg/cache"
	"KryptoPulse/pkg/config"
	xhttp "KryptoPulse/pkg/http"
	applogger "KryptoPulse/pkg/logger"
	"KryptoPulse/pkg/metrics"
)

// ProvideLogger creates the process logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideCache selects the cache backend from config.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
	case "memory":
		return cache.NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// ProvideMetrics creates the domain metrics recorder. Disabled metrics get a
// no-op recorder so callers never branch.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Noop{}
	}
	return metrics.New()
}

// ProvideSources builds the fallback chain in the configured order.
func ProvideSources(cfg *config.Config, c cache.Service) ([]repository.Source, error) {
	byName := map[string]func() repository.Source{
		sources.ProviderCoinGecko: func() repository.Source {
			return sources.NewCoinGecko(
				cfg.Sources.CoinGecko.BaseURL,
				cfg.Sources.CoinGecko.APIKey,
				cfg.Sources.CoinGecko.PolitenessDelay,
				cfg.Sources.Timeout,
			)
		},
		sources.ProviderBinance: func() repository.Source {
			return sources.NewBinance(cfg.Sources.Binance.BaseURL, cfg.Sources.Timeout)
		},
		sources.ProviderCoinPaprika: func() repository.Source {
			return sources.NewCoinPaprika(cfg.Sources.CoinPaprika.BaseURL, cfg.Sources.Timeout, c)
		},
	}

	chain := make([]repository.Source, 0, len(cfg.Sources.Order))
	for _, name := range cfg.Sources.Order {
		build, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown source %q in sources.order", name)
		}
		chain = append(chain, build())
	}
	return chain, nil
}

// ProvideConverter creates the FX converter.
func ProvideConverter(cfg *config.Config, c cache.Service) repository.Converter {
	return fx.New(cfg.FX.BaseURL, cfg.FX.TTL, c)
}

// ProvideNarrator creates the optional narrative annotator. Returns nil when
// disabled; the analyzer treats nil as "no annotator".
func ProvideNarrator(cfg *config.Config) repository.Narrator {
	if !cfg.Narrative.Enabled {
		return nil
	}
	return narrative.New(
		cfg.Narrative.BaseURL,
		cfg.Narrative.APIKey,
		cfg.Narrative.Model,
		cfg.Narrative.Timeout,
	)
}

// ProvideResolver creates the price resolver over the source chain.
func ProvideResolver(
	cfg *config.Config,
	chain []repository.Source,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Resolver {
	return usecase.NewResolver(
		chain, c, m, l,
		cfg.Resolver.SpotTTL,
		cfg.Resolver.HistoryTTL,
		cfg.Resolver.AssetDelay,
	)
}

// ProvideAnalyzer creates the analyzer.
func ProvideAnalyzer(
	r *usecase.Resolver,
	conv repository.Converter,
	n repository.Narrator,
	l *applogger.Logger,
) *usecase.Analyzer {
	return usecase.NewAnalyzer(r, conv, n, l)
}

// ProvideHandler creates the API handler.
func ProvideHandler(
	cfg *config.Config,
	r *usecase.Resolver,
	a *usecase.Analyzer,
	conv repository.Converter,
	l *applogger.Logger,
) *api.MarketHandler {
	return api.NewMarketHandler(r, a, conv, l, cfg.Stream.PushInterval)
}

// ProvideServer creates the HTTP server wired with the handler.
func ProvideServer(cfg *config.Config, h *api.MarketHandler, l *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.CORS.AllowOrigins),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.Path),
		xhttp.WithLogger(l),
	)
}
