package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	sourceRequests *prometheus.CounterVec
	cacheOps       *prometheus.CounterVec
	fallbackDepth  *prometheus.HistogramVec
	lastPrice      *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		sourceRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kryptopulse_source_requests_total",
				Help: "Upstream source requests by provider, operation and outcome",
			},
			[]string{"provider", "op", "outcome"},
		),
		cacheOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kryptopulse_cache_ops_total",
				Help: "Cache lookups by operation and hit/miss",
			},
			[]string{"op", "result"},
		),
		fallbackDepth: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kryptopulse_fallback_depth",
				Help:    "Number of sources tried before a resolution succeeded",
				Buckets: []float64{1, 2, 3, 4},
			},
			[]string{"op"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kryptopulse_last_price",
				Help: "Last resolved reference-currency price for an asset",
			},
			[]string{"asset"},
		),
	}
}

// RecordSourceRequest records one upstream call attempt.
func (r *Recorder) RecordSourceRequest(provider, op, outcome string) {
	r.sourceRequests.WithLabelValues(provider, op, outcome).Inc()
}

// RecordCache records a cache lookup.
func (r *Recorder) RecordCache(op string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheOps.WithLabelValues(op, result).Inc()
}

// RecordFallbackDepth records how deep into the chain a resolution went.
func (r *Recorder) RecordFallbackDepth(op string, depth int) {
	r.fallbackDepth.WithLabelValues(op).Observe(float64(depth))
}

// RecordLastPrice records the last resolved price for an asset.
func (r *Recorder) RecordLastPrice(asset string, price float64) {
	r.lastPrice.WithLabelValues(asset).Set(price)
}

// Noop is a Recorder substitute that records nothing.
type Noop struct{}

func (Noop) RecordSourceRequest(string, string, string) {}
func (Noop) RecordCache(string, bool)                   {}
func (Noop) RecordFallbackDepth(string, int)            {}
func (Noop) RecordLastPrice(string, float64)            {}
