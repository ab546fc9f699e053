package handler

import (
	"net/http"
	"time"

	"github.com/freshlane/cartvault/internal/infra/buildinfo"
)

// startTime anchors the uptime reported by the status endpoint.
var startTime = time.Now()

// handleAdminStatus handles GET /admin/v1/status/summary.
func (h *Handler) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	build := buildinfo.Get()
	resp := StatusSummaryResponse{
		Version:   build.Version,
		Commit:    build.Commit,
		GoVersion: build.GoVersion,
		Uptime:    time.Since(startTime).Truncate(time.Second).String(),
	}

	if h.status != nil {
		lazy, swept := h.status.ExpiredCounts()
		resp.ActiveCarts = h.status.Count()
		resp.ExpiredLazy = lazy
		resp.ExpiredSwept = swept
		resp.TTL = h.status.TTL().String()
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}

// handleSweepTrigger handles POST /admin/v1/sweep/trigger.
//
// Runs one bounded sweep pass synchronously and reports what it did.
func (h *Handler) handleSweepTrigger(w http.ResponseWriter, r *http.Request) {
	if h.sweep == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "CV-SYS-5001", "sweeper not configured", nil)
		return
	}

	result := h.sweep.RunOnce()
	h.writeJSON(w, r, http.StatusOK, SweepTriggerResponse{
		Scanned:   result.Scanned,
		Deleted:   result.Deleted,
		Truncated: result.Truncated,
		ElapsedMs: result.Elapsed.Milliseconds(),
	})
}
