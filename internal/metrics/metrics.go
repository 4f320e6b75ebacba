// Package metrics collects and exposes Prometheus metrics for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the service's Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	logins             prometheus.Counter
	signatureMismatch  prometheus.Counter
	sessionResolutions *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       prometheus.Histogram
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carshare_logins_total",
			Help: "Successful logins.",
		}),
		signatureMismatch: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carshare_signature_mismatch_total",
			Help: "Telegram login payloads rejected for a bad signature.",
		}),
		sessionResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carshare_session_resolutions_total",
			Help: "Session cookie resolutions by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carshare_http_requests_total",
			Help: "HTTP responses by status code.",
		}, []string{"status"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "carshare_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	c.registry.MustRegister(
		c.logins,
		c.signatureMismatch,
		c.sessionResolutions,
		c.httpRequests,
		c.httpDuration,
	)
	return c
}

func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

func (c *Collector) RecordSignatureMismatch() {
	c.signatureMismatch.Inc()
}

func (c *Collector) RecordSessionResolution(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.sessionResolutions.WithLabelValues(result).Inc()
}

// RegisterSessionGauge exposes a live-session gauge backed by the store.
func (c *Collector) RegisterSessionGauge(count func() float64) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "carshare_live_sessions",
		Help: "Sessions currently held in the store.",
	}, count))
}

// Handler serves the /metrics endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Instrument counts responses by status and observes request latency.
func (c *Collector) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		c.httpRequests.WithLabelValues(strconv.Itoa(rec.status)).Inc()
		c.httpDuration.Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
