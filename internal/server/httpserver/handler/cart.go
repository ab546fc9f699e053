package handler

import (
	"encoding/json"
	"net/http"

	"github.com/freshlane/cartvault/internal/core/domain"
	"github.com/freshlane/cartvault/internal/core/service"
)

// handleCreateCart handles POST /carts.
func (h *Handler) handleCreateCart(w http.ResponseWriter, r *http.Request) {
	var req CreateCartRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, r, http.StatusBadRequest, "CV-SYS-4000", "invalid request body", nil)
			return
		}
	}

	// Build service request
	svcReq := &service.CreateCartRequest{
		Customer: customerFromPayload(req.Customer),
	}
	for _, it := range req.Items {
		svcReq.Items = append(svcReq.Items, service.ItemInput{
			SKU:      it.SKU,
			Quantity: it.Quantity,
		})
	}

	// Call service
	resp, err := h.carts.Create(r.Context(), svcReq)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, cartPayload(resp))
}

// handleGetCart handles GET /carts/{id}.
func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("id")
	if cartID == "" {
		h.writeError(w, r, http.StatusBadRequest, "CV-ARG-1002", "cart_id is required", nil)
		return
	}

	// Call service; the lookup refreshes the cart's expiry
	resp, err := h.carts.Get(r.Context(), &service.GetCartRequest{
		CartID: cartID,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, cartPayload(resp))
}

// handleDeleteCart handles DELETE /carts/{id}.
func (h *Handler) handleDeleteCart(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("id")
	if cartID == "" {
		h.writeError(w, r, http.StatusBadRequest, "CV-ARG-1002", "cart_id is required", nil)
		return
	}

	// Deletion is idempotent: unknown and expired IDs succeed
	if err := h.carts.Delete(r.Context(), &service.DeleteCartRequest{
		CartID: cartID,
	}); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

// handleAddItem handles POST /carts/{id}/items.
func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("id")
	if cartID == "" {
		h.writeError(w, r, http.StatusBadRequest, "CV-ARG-1002", "cart_id is required", nil)
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "CV-SYS-4000", "invalid request body", nil)
		return
	}

	// Call service
	resp, err := h.carts.AddItem(r.Context(), &service.AddItemRequest{
		CartID:   cartID,
		SKU:      req.SKU,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, cartPayload(resp))
}

// handleRemoveItem handles DELETE /carts/{id}/items/{line_id}.
func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("id")
	lineID := r.PathValue("line_id")
	if cartID == "" {
		h.writeError(w, r, http.StatusBadRequest, "CV-ARG-1002", "cart_id is required", nil)
		return
	}
	if lineID == "" {
		h.writeError(w, r, http.StatusBadRequest, "CV-ARG-1002", "line_id is required", nil)
		return
	}

	// Call service
	resp, err := h.carts.RemoveItem(r.Context(), &service.RemoveItemRequest{
		CartID: cartID,
		LineID: lineID,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, cartPayload(resp))
}

// handleSetCustomer handles PUT /carts/{id}/customer.
func (h *Handler) handleSetCustomer(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("id")
	if cartID == "" {
		h.writeError(w, r, http.StatusBadRequest, "CV-ARG-1002", "cart_id is required", nil)
		return
	}

	var req SetCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "CV-SYS-4000", "invalid request body", nil)
		return
	}

	// A null customer clears the annotation
	resp, err := h.carts.SetCustomer(r.Context(), &service.SetCustomerRequest{
		CartID:   cartID,
		Customer: customerFromPayload(req.Customer),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, cartPayload(resp))
}

func customerFromPayload(p *CustomerPayload) *domain.Customer {
	if p == nil {
		return nil
	}
	return &domain.Customer{Name: p.Name, Email: p.Email, Phone: p.Phone}
}
