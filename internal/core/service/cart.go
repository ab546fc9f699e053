package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/freshlane/cartvault/internal/core/domain"
	"github.com/freshlane/cartvault/pkg/clock"
	"github.com/freshlane/cartvault/pkg/token"
)

// DefaultTokenMaxAge is the recovery-token acceptance window used when
// none is configured.
const DefaultTokenMaxAge = 168 * time.Hour

// mutationStripes is the number of per-cart mutation locks. Power of
// two so the stripe index reduces to a mask.
const mutationStripes = 64

// CartRepository defines the storage interface for cart operations.
type CartRepository interface {
	// Create stores a new cart and stamps its expiry.
	Create(ctx context.Context, cart *domain.Cart) error

	// Get retrieves a live cart by ID, refreshing its expiry.
	Get(ctx context.Context, id string) (*domain.Cart, error)

	// Update replaces a live cart's contents, refreshing its expiry.
	Update(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)

	// Delete removes a cart by ID. Absent IDs are a no-op.
	Delete(ctx context.Context, id string)

	// Count returns the number of records currently held.
	Count() int
}

// Metrics receives cart-service events. Implementations must be safe
// for concurrent use.
type Metrics interface {
	CartCreated()
	CartRecovered()
	TokenIssued()
	TokenVerifyFailed(code string)
}

type nopMetrics struct{}

func (nopMetrics) CartCreated()             {}
func (nopMetrics) CartRecovered()           {}
func (nopMetrics) TokenIssued()             {}
func (nopMetrics) TokenVerifyFailed(string) {}

// CartService handles cart lifecycle operations.
type CartService struct {
	repo        CartRepository
	pricer      domain.Pricer
	codec       *token.Codec
	tokenMaxAge time.Duration
	clock       clock.Clock
	metrics     Metrics

	// locks serializes read-modify-write mutations per cart ID so
	// concurrent mutations of the same cart cannot lose updates.
	locks [mutationStripes]sync.Mutex
}

// Option configures a CartService.
type Option func(*CartService)

// WithClock sets the time source used for cart timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *CartService) {
		s.clock = c
	}
}

// WithTokenMaxAge sets the recovery-token acceptance window.
func WithTokenMaxAge(d time.Duration) Option {
	return func(s *CartService) {
		s.tokenMaxAge = d
	}
}

// WithMetrics sets the metrics sink for cart-service events.
func WithMetrics(m Metrics) Option {
	return func(s *CartService) {
		s.metrics = m
	}
}

// NewCartService creates a new CartService.
func NewCartService(repo CartRepository, pricer domain.Pricer, codec *token.Codec, opts ...Option) *CartService {
	s := &CartService{
		repo:        repo,
		pricer:      pricer,
		codec:       codec,
		tokenMaxAge: DefaultTokenMaxAge,
		clock:       clock.System(),
		metrics:     nopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CartService) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()&(mutationStripes-1)]
}

// ============================================================================
// Cart Create Operation
// ============================================================================

// ItemInput is one (sku, quantity) pair supplied by a caller.
type ItemInput struct {
	SKU      string
	Quantity int
}

// CreateCartRequest contains parameters for cart creation.
type CreateCartRequest struct {
	Items    []ItemInput      // Optional initial contents
	Customer *domain.Customer // Optional contact annotation
}

// CartResponse is the common result of cart operations. RecoveryToken
// reflects the cart's items as of this operation.
type CartResponse struct {
	Cart          *domain.Cart
	RecoveryToken string
}

// Create creates a new cart, optionally seeded with initial items.
func (s *CartService) Create(ctx context.Context, req *CreateCartRequest) (*CartResponse, error) {
	now := s.clock.Now()

	// 1. Build the cart entity
	cart, err := domain.NewCart(now)
	if err != nil {
		return nil, err
	}
	for _, in := range req.Items {
		cart = cart.MergeItem(in.SKU, in.Quantity, s.pricer, now)
	}
	if req.Customer != nil {
		cart = cart.WithCustomer(req.Customer, now)
	}

	// 2. Validate before anything touches storage
	if err := cart.Validate(); err != nil {
		return nil, err
	}

	// 3. Persist
	if err := s.repo.Create(ctx, cart); err != nil {
		return nil, err
	}
	s.metrics.CartCreated()

	// 4. Mint a recovery token for the new state
	tok, err := s.mintToken(cart)
	if err != nil {
		return nil, err
	}

	return &CartResponse{Cart: cart, RecoveryToken: tok}, nil
}

// ============================================================================
// Cart Query Operation
// ============================================================================

// GetCartRequest contains parameters for cart retrieval.
type GetCartRequest struct {
	CartID string
}

// Get retrieves a live cart by ID. The lookup refreshes the cart's
// expiry; an expired or unknown ID yields ErrCartNotFound.
func (s *CartService) Get(ctx context.Context, req *GetCartRequest) (*CartResponse, error) {
	// 1. Validate input
	if req.CartID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("cart_id is required")
	}
	id := domain.NormalizeCartID(req.CartID)
	if id == "" {
		return nil, domain.ErrCartNotFound
	}

	// 2. Retrieve from storage (lazy expiration happens here)
	cart, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tok, err := s.mintToken(cart)
	if err != nil {
		return nil, err
	}

	return &CartResponse{Cart: cart, RecoveryToken: tok}, nil
}

// ============================================================================
// Cart Mutation Operations
// ============================================================================

// AddItemRequest contains parameters for adding quantity of a SKU.
type AddItemRequest struct {
	CartID   string
	SKU      string
	Quantity int
}

// AddItem merges quantity of a SKU into a cart. An existing line for
// the SKU absorbs the quantity; otherwise a new line is appended.
func (s *CartService) AddItem(ctx context.Context, req *AddItemRequest) (*CartResponse, error) {
	if req.SKU == "" {
		return nil, domain.ErrMissingArgument.WithDetails("sku is required")
	}
	if req.Quantity < 1 {
		return nil, domain.ErrInvalidArgument.WithDetails("quantity must be positive")
	}

	return s.mutate(ctx, req.CartID, func(cart *domain.Cart, now time.Time) (*domain.Cart, error) {
		return cart.MergeItem(req.SKU, req.Quantity, s.pricer, now), nil
	})
}

// RemoveItemRequest contains parameters for removing a cart line.
type RemoveItemRequest struct {
	CartID string
	LineID string
}

// RemoveItem removes the line matching LineID from a cart.
func (s *CartService) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartResponse, error) {
	if req.LineID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("line_id is required")
	}

	return s.mutate(ctx, req.CartID, func(cart *domain.Cart, now time.Time) (*domain.Cart, error) {
		return cart.RemoveItem(req.LineID, s.pricer, now)
	})
}

// SetCustomerRequest contains parameters for setting the customer
// annotation. A nil Customer clears it.
type SetCustomerRequest struct {
	CartID   string
	Customer *domain.Customer
}

// SetCustomer replaces a cart's customer annotation.
func (s *CartService) SetCustomer(ctx context.Context, req *SetCustomerRequest) (*CartResponse, error) {
	return s.mutate(ctx, req.CartID, func(cart *domain.Cart, now time.Time) (*domain.Cart, error) {
		return cart.WithCustomer(req.Customer, now), nil
	})
}

// mutate runs a read-modify-write cycle against one cart under its
// stripe lock, validating and persisting the transformed state and
// minting a fresh recovery token.
func (s *CartService) mutate(ctx context.Context, cartID string, fn func(cart *domain.Cart, now time.Time) (*domain.Cart, error)) (*CartResponse, error) {
	// 1. Validate the target ID
	if cartID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("cart_id is required")
	}
	id := domain.NormalizeCartID(cartID)
	if id == "" {
		return nil, domain.ErrCartNotFound
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	// 2. Load the live record
	cart, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. Apply the transform
	now := s.clock.Now()
	next, err := fn(cart, now)
	if err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	// 4. Persist the new state
	stored, err := s.repo.Update(ctx, next)
	if err != nil {
		return nil, err
	}

	tok, err := s.mintToken(stored)
	if err != nil {
		return nil, err
	}

	return &CartResponse{Cart: stored, RecoveryToken: tok}, nil
}

// ============================================================================
// Cart Delete Operation
// ============================================================================

// DeleteCartRequest contains parameters for cart deletion.
type DeleteCartRequest struct {
	CartID string
}

// Delete removes a cart. Deletion is idempotent: unknown, expired, and
// malformed IDs all succeed without effect.
func (s *CartService) Delete(ctx context.Context, req *DeleteCartRequest) error {
	if req.CartID == "" {
		return domain.ErrMissingArgument.WithDetails("cart_id is required")
	}
	id := domain.NormalizeCartID(req.CartID)
	if id == "" {
		return nil
	}
	s.repo.Delete(ctx, id)
	return nil
}

// ============================================================================
// Status
// ============================================================================

// Count returns the number of cart records currently held.
func (s *CartService) Count() int {
	return s.repo.Count()
}
