package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cycles        *prometheus.CounterVec
	cycleDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec
	fetchLatency  prometheus.Histogram
	lastRSI       *prometheus.GaugeVec
	alertCount    prometheus.Gauge
	watchlistSize prometheus.Gauge
}

// New creates a recorder registered on reg (prometheus.DefaultRegisterer when nil).
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		cycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rsiwatch_cycles_total",
				Help: "Monitoring cycles by aggregation policy and result",
			},
			[]string{"policy", "result"},
		),
		cycleDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rsiwatch_cycle_duration_seconds",
				Help:    "Duration of monitoring cycles in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"policy"},
		),
		fetchErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rsiwatch_fetch_errors_total",
				Help: "Per-symbol fetch failures by error kind",
			},
			[]string{"kind"},
		),
		fetchLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rsiwatch_fetch_duration_seconds",
				Help:    "Duration of a single symbol fetch in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		lastRSI: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rsiwatch_last_rsi",
				Help: "Last committed RSI for a symbol",
			},
			[]string{"symbol"},
		),
		alertCount: f.NewGauge(prometheus.GaugeOpts{
			Name: "rsiwatch_alerted_symbols",
			Help: "Number of symbols on the current alert surface",
		}),
		watchlistSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "rsiwatch_watchlist_size",
			Help: "Number of symbols in the watchlist snapshot of the last cycle",
		}),
	}
}

// RecordCycle records one finished cycle. result is committed, failed, superseded or seeded.
func (r *Recorder) RecordCycle(policy, result string, seconds float64) {
	r.cycles.WithLabelValues(policy, result).Inc()
	r.cycleDuration.WithLabelValues(policy).Observe(seconds)
}

// RecordFetchError records a per-symbol failure.
func (r *Recorder) RecordFetchError(kind string) {
	r.fetchErrors.WithLabelValues(kind).Inc()
}

// RecordFetchLatency records one symbol fetch in seconds.
func (r *Recorder) RecordFetchLatency(seconds float64) {
	r.fetchLatency.Observe(seconds)
}

// RecordRSI records the committed RSI for a symbol.
func (r *Recorder) RecordRSI(symbol string, value float64) {
	r.lastRSI.WithLabelValues(symbol).Set(value)
}

// RecordAlertCount records the size of the alert surface.
func (r *Recorder) RecordAlertCount(n int) {
	r.alertCount.Set(float64(n))
}

// RecordWatchlistSize records the snapshot size.
func (r *Recorder) RecordWatchlistSize(n int) {
	r.watchlistSize.Set(float64(n))
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordCycle(string, string, float64) {}
func (Nop) RecordFetchError(string)             {}
func (Nop) RecordFetchLatency(float64)          {}
func (Nop) RecordRSI(string, float64)           {}
func (Nop) RecordAlertCount(int)                {}
func (Nop) RecordWatchlistSize(int)             {}
