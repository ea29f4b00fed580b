package di

import (
	"KryptoPulse/pkg/config"
	"KryptoPulse/pkg/server"
)

// InitializeApp wires the whole dependency graph by hand, bottom up.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	l, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	c, err := ProvideCache(cfg)
	if err != nil {
		return nil, err
	}

	chain, err := ProvideSources(cfg, c)
	if err != nil {
		return nil, err
	}

	m := ProvideMetrics(cfg)
	conv := ProvideConverter(cfg, c)
	narrator := ProvideNarrator(cfg)

	resolver := ProvideResolver(cfg, chain, c, m, l)
	analyzer := ProvideAnalyzer(resolver, conv, narrator, l)
	handler := ProvideHandler(cfg, resolver, analyzer, conv, l)
	srv := ProvideServer(cfg, handler, l)

	return server.New(cfg, l, srv, c), nil
}
