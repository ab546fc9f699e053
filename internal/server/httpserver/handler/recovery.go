package handler

import (
	"encoding/json"
	"net/http"

	"github.com/freshlane/cartvault/internal/core/service"
)

// handleRecoverCart handles POST /carts/recover.
//
// A valid token rebuilds a brand-new cart (fresh ID and line IDs,
// totals recomputed at current prices) and returns it with a fresh
// recovery token. The original cart is never resurrected.
func (h *Handler) handleRecoverCart(w http.ResponseWriter, r *http.Request) {
	var req RecoverCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "CV-SYS-4000", "invalid request body", nil)
		return
	}

	// Call service
	resp, err := h.carts.Recover(r.Context(), &service.RecoverCartRequest{
		Token: req.Token,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, cartPayload(resp))
}
