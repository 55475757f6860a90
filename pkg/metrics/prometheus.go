package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal    *prometheus.CounterVec
	symbolsTotal *prometheus.CounterVec
	zonesBuilt   *prometheus.GaugeVec
	zonesDropped *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "structsnap_runs_total",
				Help: "Total snapshot runs by result",
			},
			[]string{"result"},
		),
		symbolsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "structsnap_symbols_total",
				Help: "Per-symbol run outcomes",
			},
			[]string{"symbol", "result"},
		),
		zonesBuilt: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "structsnap_zones_built",
				Help: "Zones in the latest snapshot for a symbol",
			},
			[]string{"symbol"},
		),
		zonesDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "structsnap_zones_dropped_total",
				Help: "Degenerate zones discarded during builds",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "structsnap_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "structsnap_last_price",
				Help: "Last evaluated price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "structsnap_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRun records the outcome of one full pipeline run.
func (r *Recorder) RecordRun(result string) {
	r.runsTotal.WithLabelValues(result).Inc()
}

// RecordSymbol records the outcome of one symbol within a run.
func (r *Recorder) RecordSymbol(symbol, result string) {
	r.symbolsTotal.WithLabelValues(symbol, result).Inc()
}

// RecordZones records zone counts for the latest build of a symbol.
func (r *Recorder) RecordZones(symbol string, built, dropped int) {
	r.zonesBuilt.WithLabelValues(symbol).Set(float64(built))
	if dropped > 0 {
		r.zonesDropped.WithLabelValues(symbol).Add(float64(dropped))
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the evaluated price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
