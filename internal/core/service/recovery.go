package service

import (
	"context"
	"errors"

	"github.com/freshlane/cartvault/internal/core/domain"
	"github.com/freshlane/cartvault/pkg/token"
)

// ============================================================================
// Cart Recovery Operation
// ============================================================================

// RecoverCartRequest contains parameters for cart recovery.
type RecoverCartRequest struct {
	Token string
}

// Recover rebuilds a cart from a signed recovery token.
//
// The token carries (sku, quantity) pairs only; the rebuilt cart gets a
// fresh ID, fresh line IDs, and totals recomputed at current prices.
// Recovery never resurrects the original record, and a token stays
// valid for further recoveries until it ages out.
func (s *CartService) Recover(ctx context.Context, req *RecoverCartRequest) (*CartResponse, error) {
	// 1. Validate input
	if req.Token == "" {
		return nil, domain.ErrMissingArgument.WithDetails("token is required")
	}

	// 2. Verify signature, structure, and age
	items, err := s.codec.Verify(req.Token, s.tokenMaxAge)
	if err != nil {
		derr := translateTokenError(err)
		s.metrics.TokenVerifyFailed(derr.Code)
		return nil, derr
	}

	// 3. Rebuild the cart, merging items in token order
	now := s.clock.Now()
	cart, err := domain.NewCart(now)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		cart = cart.MergeItem(it.SKU, it.Quantity, s.pricer, now)
	}
	if err := cart.Validate(); err != nil {
		return nil, err
	}

	// 4. Persist as a brand-new record
	if err := s.repo.Create(ctx, cart); err != nil {
		return nil, err
	}
	s.metrics.CartRecovered()

	tok, err := s.mintToken(cart)
	if err != nil {
		return nil, err
	}

	return &CartResponse{Cart: cart, RecoveryToken: tok}, nil
}

// mintToken signs the cart's current items into a recovery token.
func (s *CartService) mintToken(cart *domain.Cart) (string, error) {
	items := make([]token.Item, len(cart.Items))
	for i, it := range cart.Items {
		items[i] = token.Item{SKU: it.SKU, Quantity: it.Quantity}
	}

	tok, err := s.codec.Sign(items)
	if err != nil {
		return "", domain.ErrInternalServer.WithCause(err)
	}
	s.metrics.TokenIssued()
	return tok, nil
}

// translateTokenError maps codec verification failures onto domain
// error codes.
func translateTokenError(err error) *domain.DomainError {
	switch {
	case errors.Is(err, token.ErrMalformed):
		return domain.ErrTokenMalformed
	case errors.Is(err, token.ErrSignatureInvalid):
		return domain.ErrTokenSignatureInvalid
	case errors.Is(err, token.ErrTimestampInvalid):
		return domain.ErrTokenExpired
	case errors.Is(err, token.ErrPayloadInvalid), errors.Is(err, token.ErrPayloadMalformed):
		return domain.ErrTokenPayloadInvalid
	default:
		return domain.ErrTokenPayloadInvalid.WithCause(err)
	}
}
