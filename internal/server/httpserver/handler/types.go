package handler

import (
	"time"

	"github.com/freshlane/cartvault/internal/core/domain"
	"github.com/freshlane/cartvault/internal/core/service"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"` // Additional error details
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// ItemPayload is one requested cart line in create/add requests.
type ItemPayload struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// CustomerPayload carries the optional customer annotation.
type CustomerPayload struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CreateCartRequest is the request body for POST /carts.
type CreateCartRequest struct {
	Items    []ItemPayload    `json:"items,omitempty"`
	Customer *CustomerPayload `json:"customer,omitempty"`
}

// AddItemRequest is the request body for POST /carts/{id}/items.
type AddItemRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// SetCustomerRequest is the request body for PUT /carts/{id}/customer.
// A null customer clears the annotation.
type SetCustomerRequest struct {
	Customer *CustomerPayload `json:"customer"`
}

// RecoverCartRequest is the request body for POST /carts/recover.
type RecoverCartRequest struct {
	Token string `json:"token"`
}

// LinePayload represents a cart line in API responses.
type LinePayload struct {
	LineID    string `json:"line_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// CartPayload represents a cart in API responses.
type CartPayload struct {
	ID            string           `json:"id"`
	Items         []LinePayload    `json:"items"`
	Customer      *CustomerPayload `json:"customer,omitempty"`
	Subtotal      int64            `json:"subtotal"`
	Tax           int64            `json:"tax"`
	Total         int64            `json:"total"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	ExpiresAt     time.Time        `json:"expires_at"`
	RecoveryToken string           `json:"recovery_token,omitempty"`
}

// cartPayload converts a service result into the API representation.
func cartPayload(res *service.CartResponse) *CartPayload {
	cart := res.Cart
	items := make([]LinePayload, len(cart.Items))
	for i, it := range cart.Items {
		items[i] = LinePayload{
			LineID:    it.LineID,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		}
	}

	payload := &CartPayload{
		ID:            cart.ID,
		Items:         items,
		Customer:      customerPayload(cart.Customer),
		Subtotal:      cart.Subtotal,
		Tax:           cart.Tax,
		Total:         cart.Total,
		CreatedAt:     time.UnixMilli(cart.CreatedAt).UTC(),
		UpdatedAt:     time.UnixMilli(cart.UpdatedAt).UTC(),
		ExpiresAt:     time.UnixMilli(cart.ExpiresAt).UTC(),
		RecoveryToken: res.RecoveryToken,
	}
	return payload
}

func customerPayload(c *domain.Customer) *CustomerPayload {
	if c == nil {
		return nil
	}
	return &CustomerPayload{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// StatusSummaryResponse is the response body for GET /admin/v1/status/summary.
type StatusSummaryResponse struct {
	ActiveCarts  int    `json:"active_carts"`
	ExpiredLazy  int64  `json:"expired_lazy"`
	ExpiredSwept int64  `json:"expired_swept"`
	TTL          string `json:"ttl"`
	Version      string `json:"version"`
	Commit       string `json:"commit"`
	GoVersion    string `json:"go_version"`
	Uptime       string `json:"uptime"`
}

// SweepTriggerResponse is the response body for POST /admin/v1/sweep/trigger.
type SweepTriggerResponse struct {
	Scanned   int   `json:"scanned"`
	Deleted   int   `json:"deleted"`
	Truncated bool  `json:"truncated"`
	ElapsedMs int64 `json:"elapsed_ms"`
}
