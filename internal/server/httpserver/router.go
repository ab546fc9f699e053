package httpserver

import (
	"net/http"

	"github.com/freshlane/cartvault/internal/core/service"
	"github.com/freshlane/cartvault/internal/server/httpserver/handler"
	"github.com/freshlane/cartvault/internal/telemetry/logger"
	"github.com/freshlane/cartvault/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// CartService handles cart and recovery operations.
	CartService *service.CartService

	// Status is the store view backing the admin status endpoint.
	Status handler.StatusSource

	// Sweep runs an on-demand sweep pass for the admin trigger endpoint.
	Sweep handler.SweepTrigger

	// Logger for request logging.
	Logger logger.Logger

	// Metrics registers request observations and serves /metrics.
	// Nil disables both.
	Metrics *metric.Registry

	// RateLimit is the per-IP request rate limit. Zero RPS disables
	// limiting.
	RateLimit RateLimitConfig
}

// NewRouter creates and configures the HTTP router with all routes and
// middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	h := handler.New(handler.Config{
		Carts:  cfg.CartService,
		Status: cfg.Status,
		Sweep:  cfg.Sweep,
		Logger: log,
	})

	// One registry for the whole router, so a client's RPS budget
	// covers the API as a whole rather than each endpoint separately.
	var limit Middleware
	if cfg.RateLimit.RPS > 0 {
		limit = RateLimit(newLimiterRegistry(cfg.RateLimit))
	}

	// route builds the middleware chain for one endpoint. The route
	// label keeps metric cardinality bounded; request paths never
	// become label values.
	route := func(label string, limited bool) http.Handler {
		middlewares := []Middleware{
			RequestID(),
			Recover(log),
			RequestLog(log),
		}
		if limited && limit != nil {
			middlewares = append(middlewares, limit)
		}
		if cfg.Metrics != nil {
			middlewares = append(middlewares, Observe(cfg.Metrics, label))
		}
		return Chain(h, middlewares...)
	}

	mux := http.NewServeMux()

	// Health endpoints bypass rate limiting so probes never starve.
	mux.Handle("GET /health", route("/health", false))
	mux.Handle("GET /ready", route("/ready", false))

	// Cart endpoints
	mux.Handle("POST /carts", route("/carts", true))
	mux.Handle("GET /carts/{id}", route("/carts/{id}", true))
	mux.Handle("DELETE /carts/{id}", route("/carts/{id}", true))
	mux.Handle("POST /carts/{id}/items", route("/carts/{id}/items", true))
	mux.Handle("DELETE /carts/{id}/items/{line_id}", route("/carts/{id}/items/{line_id}", true))
	mux.Handle("PUT /carts/{id}/customer", route("/carts/{id}/customer", true))

	// Recovery endpoint
	mux.Handle("POST /carts/recover", route("/carts/recover", true))

	// Admin endpoints
	mux.Handle("GET /admin/v1/status/summary", route("/admin/v1/status/summary", false))
	mux.Handle("POST /admin/v1/sweep/trigger", route("/admin/v1/sweep/trigger", false))

	// Metrics endpoint serves the Prometheus exposition format, outside
	// the JSON envelope.
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), RequestID(), Recover(log)))
	}

	return mux
}
