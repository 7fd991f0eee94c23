package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate by route template and status class.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Commands applied to rovers, by kind (left, right, move).
	RoverCommandsTotal *prometheus.CounterVec

	// Command characters skipped because they are not L, R or M.
	RoverCommandsIgnoredTotal prometheus.Counter

	// Grids and rovers currently registered in the fleet.
	GridsActive  prometheus.Gauge
	RoversActive prometheus.Gauge

	// Rate limit denials (429).
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	RoverCommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roverCommandsTotal",
			Help: "Total number of rover commands applied",
		},
		[]string{"command"},
	)
	RoverCommandsIgnoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roverCommandsIgnoredTotal",
			Help: "Total number of unrecognised command characters skipped",
		},
	)
	GridsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gridsActive",
			Help: "Number of grids registered",
		},
	)
	RoversActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roversActive",
			Help: "Number of rovers registered",
		},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		RoverCommandsTotal, RoverCommandsIgnoredTotal,
		GridsActive, RoversActive,
		RateLimitDeniedTotal,
	)
}

// RecordCommand counts one applied rover command.
func RecordCommand(kind string) {
	RoverCommandsTotal.WithLabelValues(kind).Inc()
}

// RecordIgnored counts n skipped command characters.
func RecordIgnored(n int) {
	if n > 0 {
		RoverCommandsIgnoredTotal.Add(float64(n))
	}
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
