// Package metric provides Prometheus metrics for CartVault.
package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace prefixes every metric name.
const namespace = "cartvault"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Cart metrics
	cartsCreated   prometheus.Counter
	cartsRecovered prometheus.Counter

	// Token metrics
	tokensIssued        prometheus.Counter
	tokenVerifyFailures *prometheus.CounterVec

	// Sweep metrics
	sweepRuns     prometheus.Counter
	sweepDeleted  prometheus.Counter
	sweepDuration prometheus.Histogram

	// Request metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRegistry creates a metrics registry with all collectors
// registered, including the standard Go runtime and process
// collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		cartsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "carts_created_total",
			Help:      "Number of carts created, including recoveries.",
		}),
		cartsRecovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "carts_recovered_total",
			Help:      "Number of carts rebuilt from recovery tokens.",
		}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovery_tokens_issued_total",
			Help:      "Number of recovery tokens minted.",
		}),
		tokenVerifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovery_token_verify_failures_total",
			Help:      "Recovery token verification failures by error code.",
		}, []string{"code"}),
		sweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Number of background sweep runs.",
		}),
		sweepDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_deleted_total",
			Help:      "Number of expired carts removed by the sweeper.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall-clock duration of sweep runs.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25},
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.cartsCreated,
		r.cartsRecovered,
		r.tokensIssued,
		r.tokenVerifyFailures,
		r.sweepRuns,
		r.sweepDeleted,
		r.sweepDuration,
		r.requestsTotal,
		r.requestDuration,
	)

	return r
}

// RegisterStore attaches a store-backed collector exposing live cart
// counts and expiration totals.
func (r *Registry) RegisterStore(stats StoreStats) {
	r.registry.MustRegister(newStoreCollector(stats))
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// CartCreated records a cart creation.
func (r *Registry) CartCreated() {
	r.cartsCreated.Inc()
}

// CartRecovered records a cart rebuilt from a recovery token.
// Recoveries also count as creations.
func (r *Registry) CartRecovered() {
	r.cartsRecovered.Inc()
	r.cartsCreated.Inc()
}

// TokenIssued records a minted recovery token.
func (r *Registry) TokenIssued() {
	r.tokensIssued.Inc()
}

// TokenVerifyFailed records a failed token verification by error code.
func (r *Registry) TokenVerifyFailed(code string) {
	r.tokenVerifyFailures.WithLabelValues(code).Inc()
}

// SweepCompleted records one finished sweep run.
func (r *Registry) SweepCompleted(deleted int, took time.Duration) {
	r.sweepRuns.Inc()
	r.sweepDeleted.Add(float64(deleted))
	r.sweepDuration.Observe(took.Seconds())
}

// RequestObserved records one served HTTP request.
func (r *Registry) RequestObserved(method, route, status string, took time.Duration) {
	r.requestsTotal.WithLabelValues(method, route, status).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
