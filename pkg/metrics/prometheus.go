package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ticksTotal      *prometheus.CounterVec
	entitiesUpdated *prometheus.CounterVec
	clampsTotal     *prometheus.CounterVec
	fallbacksTotal  *prometheus.CounterVec
	signalFetches   *prometheus.CounterVec
	streamsActive   prometheus.Gauge
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ticksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricepulse_ticks_simulated_total",
				Help: "Total simulator tick invocations",
			},
			[]string{"transport"},
		),
		entitiesUpdated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricepulse_entities_updated_total",
				Help: "Total entity states advanced by the simulator",
			},
			[]string{"transport"},
		),
		clampsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricepulse_price_clamps_total",
				Help: "Times a price hit the floor or ceiling",
			},
			[]string{"bound"},
		),
		fallbacksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricepulse_scorer_fallbacks_total",
				Help: "Remote scorer failures recovered by the local formula",
			},
			[]string{"reason"},
		),
		signalFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricepulse_signal_fetches_total",
				Help: "Market signal fetches per platform",
			},
			[]string{"platform", "result"},
		),
		streamsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pricepulse_streams_active",
				Help: "Currently open streaming connections",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricepulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordTick records one simulator invocation and the size of its update set.
func (r *Recorder) RecordTick(transport string, updated int) {
	r.ticksTotal.WithLabelValues(transport).Inc()
	r.entitiesUpdated.WithLabelValues(transport).Add(float64(updated))
}

// RecordClamp records a floor or ceiling application.
func (r *Recorder) RecordClamp(bound string) {
	r.clampsTotal.WithLabelValues(bound).Inc()
}

// RecordFallback records a remote scorer failure handled locally.
func (r *Recorder) RecordFallback(reason string) {
	r.fallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordSignalFetch records a per-platform search outcome.
func (r *Recorder) RecordSignalFetch(platform string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.signalFetches.WithLabelValues(platform, result).Inc()
}

// StreamOpened increments the active stream gauge.
func (r *Recorder) StreamOpened() { r.streamsActive.Inc() }

// StreamClosed decrements the active stream gauge.
func (r *Recorder) StreamClosed() { r.streamsActive.Dec() }

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
