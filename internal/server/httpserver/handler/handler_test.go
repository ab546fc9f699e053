package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/freshlane/cartvault/internal/core/service"
	"github.com/freshlane/cartvault/internal/pricing"
	"github.com/freshlane/cartvault/internal/storage/memory"
	"github.com/freshlane/cartvault/pkg/clock"
	"github.com/freshlane/cartvault/pkg/token"
)

const testTTL = 30 * time.Minute

type testEnv struct {
	handler *Handler
	store   *memory.Store
	clock   *clock.Mock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clk := clock.NewMock(time.Unix(1700000000, 0))
	store := memory.New(testTTL, memory.WithClock(clk))
	codec, err := token.NewCodec([]byte("test-secret-0123456789"), token.WithClock(clk))
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}

	svc := service.NewCartService(store, pricing.NewCatalog(), codec, service.WithClock(clk))
	sweeper := memory.NewSweeper(store, memory.WithScanLimit(128))

	h := New(Config{
		Carts:  svc,
		Status: store,
		Sweep:  sweeper,
	})
	return &testEnv{handler: h, store: store, clock: clk}
}

// envelope mirrors Response with raw data for per-test decoding.
type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Details   json.RawMessage `json:"details"`
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Request-ID", "req-test-1")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", rec.Body.String(), err)
	}
	return rec, &env
}

func decodeCart(t *testing.T, data json.RawMessage) *CartPayload {
	t.Helper()
	var cart CartPayload
	if err := json.Unmarshal(data, &cart); err != nil {
		t.Fatalf("decode cart payload: %v", err)
	}
	return &cart
}

func (e *testEnv) createCart(t *testing.T, body any) *CartPayload {
	t.Helper()
	rec, env := e.do(t, http.MethodPost, "/carts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /carts status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeCart(t, env.Data)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health", "/ready"} {
		rec, resp := env.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
		if resp.Code != "OK" {
			t.Errorf("GET %s envelope code = %q, want OK", path, resp.Code)
		}
	}
}

func TestCreateCart(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/carts", CreateCartRequest{
		Items: []ItemPayload{
			{SKU: "sku-shirt", Quantity: 2},
			{SKU: "sku-mug", Quantity: 1},
			{SKU: "sku-shirt", Quantity: 3}, // merges into the first line
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp.RequestID != "req-test-1" {
		t.Errorf("request_id = %q, want req-test-1", resp.RequestID)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-test-1" {
		t.Errorf("X-Request-ID header = %q", got)
	}

	cart := decodeCart(t, resp.Data)
	if !strings.HasPrefix(cart.ID, "cart-") {
		t.Errorf("cart ID %q missing prefix", cart.ID)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("len(items) = %d, want 2 after SKU merge", len(cart.Items))
	}
	if cart.Items[0].SKU != "sku-shirt" || cart.Items[0].Quantity != 5 {
		t.Errorf("line 0 = %q x%d, want sku-shirt x5", cart.Items[0].SKU, cart.Items[0].Quantity)
	}
	// Default price 1000, tax 13%: subtotal 6000, tax 780
	if cart.Subtotal != 6000 || cart.Tax != 780 || cart.Total != 6780 {
		t.Errorf("totals = (%d, %d, %d), want (6000, 780, 6780)", cart.Subtotal, cart.Tax, cart.Total)
	}
	if cart.RecoveryToken == "" {
		t.Error("response carries no recovery token")
	}
	if cart.ExpiresAt.Sub(cart.CreatedAt) != testTTL {
		t.Errorf("expiry window = %v, want %v", cart.ExpiresAt.Sub(cart.CreatedAt), testTTL)
	}
}

func TestCreateCartEmptyBody(t *testing.T) {
	env := newTestEnv(t)

	cart := env.createCart(t, nil)
	if len(cart.Items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(cart.Items))
	}
	if cart.Total != 0 {
		t.Errorf("total = %d, want 0", cart.Total)
	}
}

func TestCreateCartInvalidBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "CV-SYS-4000" {
		t.Errorf("X-Error-Code = %q, want CV-SYS-4000", got)
	}
}

func TestCreateCartValidationError(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/carts", CreateCartRequest{
		Items: []ItemPayload{{SKU: "sku-shirt", Quantity: -1}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Code != "CV-CART-4001" {
		t.Errorf("error code = %q, want CV-CART-4001", resp.Code)
	}
}

func TestGetCart(t *testing.T) {
	env := newTestEnv(t)
	created := env.createCart(t, CreateCartRequest{
		Items: []ItemPayload{{SKU: "sku-mug", Quantity: 2}},
	})

	rec, resp := env.do(t, http.MethodGet, "/carts/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	cart := decodeCart(t, resp.Data)
	if cart.ID != created.ID {
		t.Errorf("ID = %q, want %q", cart.ID, created.ID)
	}
	if cart.RecoveryToken == "" {
		t.Error("GET response carries no recovery token")
	}
}

func TestGetCartNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodGet, "/carts/cart-01hqv3nzxw5e8tkfyrbp2m7s9d", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp.Code != "CV-CART-4040" {
		t.Errorf("error code = %q, want CV-CART-4040", resp.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "CV-CART-4040" {
		t.Errorf("X-Error-Code = %q", got)
	}
}

func TestGetCartExpired(t *testing.T) {
	env := newTestEnv(t)
	created := env.createCart(t, nil)

	env.clock.Advance(testTTL + time.Millisecond)

	rec, resp := env.do(t, http.MethodGet, "/carts/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 after expiry", rec.Code)
	}
	if resp.Code != "CV-CART-4040" {
		t.Errorf("error code = %q, want CV-CART-4040", resp.Code)
	}
}

func TestAddAndRemoveItem(t *testing.T) {
	env := newTestEnv(t)
	created := env.createCart(t, nil)

	rec, resp := env.do(t, http.MethodPost, "/carts/"+created.ID+"/items", AddItemRequest{
		SKU: "sku-shirt", Quantity: 2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}
	cart := decodeCart(t, resp.Data)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items after add: %+v", cart.Items)
	}
	// Default price 1000, tax 13%
	if cart.Total != 2260 {
		t.Errorf("total = %d, want 2260", cart.Total)
	}

	lineID := cart.Items[0].LineID
	rec, resp = env.do(t, http.MethodDelete, "/carts/"+created.ID+"/items/"+lineID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d, body %s", rec.Code, rec.Body.String())
	}
	cart = decodeCart(t, resp.Data)
	if len(cart.Items) != 0 {
		t.Errorf("len(items) = %d after remove, want 0", len(cart.Items))
	}
	if cart.Subtotal != 0 || cart.Tax != 0 || cart.Total != 0 {
		t.Errorf("totals = (%d, %d, %d), want zeros", cart.Subtotal, cart.Tax, cart.Total)
	}
}

func TestAddItemValidation(t *testing.T) {
	env := newTestEnv(t)
	created := env.createCart(t, nil)

	tests := []struct {
		name     string
		body     AddItemRequest
		wantCode string
	}{
		{"missing sku", AddItemRequest{Quantity: 1}, "CV-ARG-1002"},
		{"zero quantity", AddItemRequest{SKU: "sku-mug"}, "CV-ARG-1001"},
		{"negative quantity", AddItemRequest{SKU: "sku-mug", Quantity: -3}, "CV-ARG-1001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := env.do(t, http.MethodPost, "/carts/"+created.ID+"/items", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestRemoveItemUnknownLine(t *testing.T) {
	env := newTestEnv(t)
	created := env.createCart(t, CreateCartRequest{
		Items: []ItemPayload{{SKU: "sku-mug", Quantity: 1}},
	})

	rec, resp := env.do(t, http.MethodDelete, "/carts/"+created.ID+"/items/no-such-line", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp.Code != "CV-CART-4041" {
		t.Errorf("error code = %q, want CV-CART-4041", resp.Code)
	}
}

func TestSetCustomer(t *testing.T) {
	env := newTestEnv(t)
	created := env.createCart(t, nil)

	rec, resp := env.do(t, http.MethodPut, "/carts/"+created.ID+"/customer", SetCustomerRequest{
		Customer: &CustomerPayload{Name: "Dana Reyes", Email: "dana@example.com"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	cart := decodeCart(t, resp.Data)
	if cart.Customer == nil || cart.Customer.Name != "Dana Reyes" {
		t.Fatalf("customer = %+v, want Dana Reyes", cart.Customer)
	}

	// Null customer clears the annotation
	rec, resp = env.do(t, http.MethodPut, "/carts/"+created.ID+"/customer", SetCustomerRequest{})
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}
	cart = decodeCart(t, resp.Data)
	if cart.Customer != nil {
		t.Errorf("customer = %+v after clear, want nil", cart.Customer)
	}
}

func TestDeleteCartIdempotent(t *testing.T) {
	env := newTestEnv(t)
	created := env.createCart(t, nil)

	for i := 0; i < 2; i++ {
		rec, _ := env.do(t, http.MethodDelete, "/carts/"+created.ID, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("delete #%d status = %d", i+1, rec.Code)
		}
	}

	rec, _ := env.do(t, http.MethodGet, "/carts/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", rec.Code)
	}
}

func TestRecoverCartAfterExpiry(t *testing.T) {
	env := newTestEnv(t)
	created := env.createCart(t, CreateCartRequest{
		Items: []ItemPayload{
			{SKU: "sku-shirt", Quantity: 2},
			{SKU: "sku-mug", Quantity: 1},
		},
	})

	env.clock.Advance(testTTL + time.Minute)

	rec, resp := env.do(t, http.MethodPost, "/carts/recover", RecoverCartRequest{
		Token: created.RecoveryToken,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("recover status = %d, body %s", rec.Code, rec.Body.String())
	}

	cart := decodeCart(t, resp.Data)
	if cart.ID == created.ID {
		t.Error("recovered cart reuses the original ID")
	}
	if len(cart.Items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(cart.Items))
	}
	if cart.Items[0].SKU != "sku-shirt" || cart.Items[0].Quantity != 2 {
		t.Errorf("line 0 = %q x%d, want sku-shirt x2", cart.Items[0].SKU, cart.Items[0].Quantity)
	}
	if cart.Customer != nil {
		t.Error("recovered cart carries a customer annotation")
	}
	if cart.RecoveryToken == "" || cart.RecoveryToken == created.RecoveryToken {
		t.Error("recover did not mint a fresh token")
	}
}

func TestRecoverCartErrors(t *testing.T) {
	env := newTestEnv(t)
	created := env.createCart(t, CreateCartRequest{
		Items: []ItemPayload{{SKU: "sku-mug", Quantity: 1}},
	})

	// Flip one bit in the signature segment.
	idx := strings.LastIndex(created.RecoveryToken, ".")
	tampered := []byte(created.RecoveryToken)
	tampered[len(tampered)-1] ^= 0x02

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{"empty token", "", http.StatusBadRequest, "CV-ARG-1002"},
		{"one segment", created.RecoveryToken[:idx], http.StatusBadRequest, "CV-TOKN-4000"},
		{"tampered signature", string(tampered), http.StatusUnauthorized, "CV-TOKN-4010"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := env.do(t, http.MethodPost, "/carts/recover", RecoverCartRequest{Token: tt.token})
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestAdminStatusSummary(t *testing.T) {
	env := newTestEnv(t)
	env.createCart(t, nil)
	env.createCart(t, nil)

	rec, resp := env.do(t, http.MethodGet, "/admin/v1/status/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var summary StatusSummaryResponse
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.ActiveCarts != 2 {
		t.Errorf("active_carts = %d, want 2", summary.ActiveCarts)
	}
	if summary.TTL != testTTL.String() {
		t.Errorf("ttl = %q, want %q", summary.TTL, testTTL.String())
	}
	if summary.Version == "" {
		t.Error("version is empty")
	}
}

func TestSweepTrigger(t *testing.T) {
	env := newTestEnv(t)
	env.createCart(t, nil)
	env.createCart(t, nil)

	env.clock.Advance(testTTL + time.Minute)

	rec, resp := env.do(t, http.MethodPost, "/admin/v1/sweep/trigger", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result SweepTriggerResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		t.Fatalf("decode sweep result: %v", err)
	}
	if result.Deleted != 2 {
		t.Errorf("deleted = %d, want 2", result.Deleted)
	}
	if result.Truncated {
		t.Error("sweep reported truncated with 2 entries")
	}
	if env.store.Count() != 0 {
		t.Errorf("store count = %d after sweep, want 0", env.store.Count())
	}
}
