package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/freshlane/cartvault/internal/server/httpserver/handler"
)

// DefaultTimeout bounds every API call.
const DefaultTimeout = 30 * time.Second

// Client talks to a CartVault server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a client for the given server address. A bare host:port
// gets an http:// scheme prepended.
func New(server string, opts ...Option) *Client {
	baseURL := server
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is an error envelope returned by the server.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Health checks the server health endpoint.
func (c *Client) Health(ctx context.Context) error {
	var status map[string]string
	return c.call(ctx, http.MethodGet, "/health", nil, &status)
}

// CreateCart creates a cart, optionally seeded with items and a
// customer.
func (c *Client) CreateCart(ctx context.Context, req *handler.CreateCartRequest) (*handler.CartPayload, error) {
	var cart handler.CartPayload
	if err := c.call(ctx, http.MethodPost, "/carts", req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetCart fetches a cart by ID. The server refreshes the cart's expiry
// as a side effect.
func (c *Client) GetCart(ctx context.Context, cartID string) (*handler.CartPayload, error) {
	var cart handler.CartPayload
	if err := c.call(ctx, http.MethodGet, "/carts/"+cartID, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// DeleteCart deletes a cart. Unknown IDs succeed.
func (c *Client) DeleteCart(ctx context.Context, cartID string) error {
	return c.call(ctx, http.MethodDelete, "/carts/"+cartID, nil, nil)
}

// AddItem merges quantity of a SKU into a cart.
func (c *Client) AddItem(ctx context.Context, cartID string, req *handler.AddItemRequest) (*handler.CartPayload, error) {
	var cart handler.CartPayload
	if err := c.call(ctx, http.MethodPost, "/carts/"+cartID+"/items", req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveItem removes one line from a cart.
func (c *Client) RemoveItem(ctx context.Context, cartID, lineID string) (*handler.CartPayload, error) {
	var cart handler.CartPayload
	if err := c.call(ctx, http.MethodDelete, "/carts/"+cartID+"/items/"+lineID, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// SetCustomer replaces a cart's customer annotation. A nil customer
// clears it.
func (c *Client) SetCustomer(ctx context.Context, cartID string, customer *handler.CustomerPayload) (*handler.CartPayload, error) {
	var cart handler.CartPayload
	req := &handler.SetCustomerRequest{Customer: customer}
	if err := c.call(ctx, http.MethodPut, "/carts/"+cartID+"/customer", req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Recover rebuilds a cart from a recovery token.
func (c *Client) Recover(ctx context.Context, token string) (*handler.CartPayload, error) {
	var cart handler.CartPayload
	req := &handler.RecoverCartRequest{Token: token}
	if err := c.call(ctx, http.MethodPost, "/carts/recover", req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Status fetches the admin status summary.
func (c *Client) Status(ctx context.Context) (*handler.StatusSummaryResponse, error) {
	var status handler.StatusSummaryResponse
	if err := c.call(ctx, http.MethodGet, "/admin/v1/status/summary", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// TriggerSweep runs one sweep pass on the server.
func (c *Client) TriggerSweep(ctx context.Context) (*handler.SweepTriggerResponse, error) {
	var result handler.SweepTriggerResponse
	if err := c.call(ctx, http.MethodPost, "/admin/v1/sweep/trigger", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// call performs one request and unwraps the response envelope into
// target. A nil target discards the data field.
func (c *Client) call(ctx context.Context, method, path string, body, target any) error {
	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "cartvault-cli/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{Code: env.Code, Message: env.Message, Status: resp.StatusCode}
	}
	if target != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return fmt.Errorf("parse response data: %w", err)
		}
	}
	return nil
}
