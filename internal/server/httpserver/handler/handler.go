// Package handler provides HTTP request handlers for CartVault.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/freshlane/cartvault/internal/core/domain"
	"github.com/freshlane/cartvault/internal/core/service"
	"github.com/freshlane/cartvault/internal/storage/memory"
	"github.com/freshlane/cartvault/internal/telemetry/logger"
)

// StatusSource is the store view used by the admin status endpoint.
type StatusSource interface {
	Count() int
	ExpiredCounts() (lazy, swept int64)
	TTL() time.Duration
}

// SweepTrigger runs one bounded sweep pass on demand.
type SweepTrigger interface {
	RunOnce() memory.SweepResult
}

// Config carries the collaborators the handler dispatches to.
type Config struct {
	Carts  *service.CartService
	Status StatusSource
	Sweep  SweepTrigger
	Logger logger.Logger
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	carts  *service.CartService
	status StatusSource
	sweep  SweepTrigger
	logger logger.Logger
	mux    *http.ServeMux
}

// New creates a new Handler with the given collaborators.
func New(cfg Config) *Handler {
	h := &Handler{
		carts:  cfg.Carts,
		status: cfg.Status,
		sweep:  cfg.Sweep,
		logger: cfg.Logger,
		mux:    http.NewServeMux(),
	}
	if h.logger == nil {
		h.logger = logger.Default()
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	// Health endpoints
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	// Cart endpoints
	h.mux.HandleFunc("POST /carts", h.handleCreateCart)
	h.mux.HandleFunc("GET /carts/{id}", h.handleGetCart)
	h.mux.HandleFunc("DELETE /carts/{id}", h.handleDeleteCart)
	h.mux.HandleFunc("POST /carts/{id}/items", h.handleAddItem)
	h.mux.HandleFunc("DELETE /carts/{id}/items/{line_id}", h.handleRemoveItem)
	h.mux.HandleFunc("PUT /carts/{id}/customer", h.handleSetCustomer)

	// Recovery endpoint
	h.mux.HandleFunc("POST /carts/recover", h.handleRecoverCart)

	// Admin endpoints
	h.mux.HandleFunc("GET /admin/v1/status/summary", h.handleAdminStatus)
	h.mux.HandleFunc("POST /admin/v1/sweep/trigger", h.handleSweepTrigger)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// getRequestID extracts the request ID set by middleware.
func getRequestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsDomainError(err, "") {
		code := domain.GetErrorCode(err)
		status := errorCodeToHTTPStatus(code)
		h.writeError(w, r, status, code, err.Error(), nil)
		return
	}

	h.logger.Error("internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, "CV-SYS-5000", "internal server error", nil)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"), strings.HasSuffix(code, "-4041"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"),
		strings.HasSuffix(code, "-4020"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-4010"), strings.HasSuffix(code, "-4011"):
		return http.StatusUnauthorized
	case strings.HasPrefix(code, "CV-ARG-"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "CV-SYS-5"):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
