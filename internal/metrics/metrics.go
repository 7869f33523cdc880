// Package metrics exposes Prometheus instrumentation for the capture
// session: lifecycle transitions, wire/unwire latencies, capture runs and
// source discovery results.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the session metric set and its registry.
type Recorder struct {
	registry *prometheus.Registry

	transitions    *prometheus.CounterVec
	captures       prometheus.Counter
	captureSeconds prometheus.Histogram
	wireSeconds    *prometheus.HistogramVec
	sources        *prometheus.GaugeVec
	deviceBusy     prometheus.Counter
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capnode_session_transitions_total",
			Help: "Session lifecycle transitions by from/to state.",
		}, []string{"from", "to"}),
		captures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capnode_captures_total",
			Help: "Completed capture runs.",
		}),
		captureSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "capnode_capture_duration_seconds",
			Help:    "Wall-clock duration of completed capture runs.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		wireSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "capnode_wire_duration_seconds",
			Help:    "Time spent connecting or disconnecting the pipeline.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"op"}),
		sources: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "capnode_sources_discovered",
			Help: "Physical inputs found by the last source discovery.",
		}, []string{"kind"}),
		deviceBusy: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capnode_device_busy_total",
			Help: "Wire attempts rejected because the device was in use.",
		}),
	}
	r.registry.MustRegister(
		r.transitions, r.captures, r.captureSeconds,
		r.wireSeconds, r.sources, r.deviceBusy,
	)
	return r
}

// Handler returns the /metrics HTTP handler.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Transition records one lifecycle transition.
func (r *Recorder) Transition(from, to string) {
	r.transitions.WithLabelValues(from, to).Inc()
}

// CaptureDone records a finished capture run and its duration.
func (r *Recorder) CaptureDone(d time.Duration) {
	r.captures.Inc()
	r.captureSeconds.Observe(d.Seconds())
}

// WireDone records how long a wire or unwire pass took.
func (r *Recorder) WireDone(op string, d time.Duration) {
	r.wireSeconds.WithLabelValues(op).Observe(d.Seconds())
}

// SourcesDiscovered records the size of a freshly built source registry.
func (r *Recorder) SourcesDiscovered(kind string, n int) {
	r.sources.WithLabelValues(kind).Set(float64(n))
}

// DeviceBusy records a device-contention wiring failure.
func (r *Recorder) DeviceBusy() {
	r.deviceBusy.Inc()
}
