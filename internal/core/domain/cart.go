// Package domain defines the core domain models for CartVault.
package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Cart constraints.
const (
	MaxSKULength           = 64
	MaxQuantityPerLine     = 10000
	MaxCustomerNameLength  = 128
	MaxCustomerEmailLength = 254
	MaxCustomerPhoneLength = 32

	// CartIDPrefix is the prefix for cart IDs.
	CartIDPrefix = "cart-"
)

// Rate is an integer rational, used for the tax rate.
type Rate struct {
	Num int64
	Den int64
}

// Apply multiplies amount by the rate, rounding half up.
// Amounts are integer currency units; no fractional drift.
func (r Rate) Apply(amount int64) int64 {
	if r.Den == 0 {
		return 0
	}
	return (amount*r.Num + r.Den/2) / r.Den
}

// Pricer is the price/tax collaborator consumed by cart transforms.
// Totals are always recomputed through a Pricer, never trusted from
// tokens or clients.
type Pricer interface {
	// Price returns the unit price for a SKU in integer currency units.
	// Unknown SKUs resolve to a fallback default price.
	Price(sku string) int64

	// TaxRate returns the tax rate applied to the subtotal.
	TaxRate() Rate
}

// Item is one line of a cart.
//
// LineID is server-assigned and immutable once created. At most one
// line exists per SKU; merging is keyed on SKU alone.
type Item struct {
	LineID    string `json:"line_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// Customer is an optional contact annotation on a cart. It plays no
// part in TTL or recovery-token logic.
type Customer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Cart represents a shopping cart record owned by the store.
type Cart struct {
	// ID is the unique identifier for the cart.
	// Format: cart-{ulid_lowercase}, 31 characters total.
	ID string `json:"id"`

	// Items is the ordered line list, at most one line per SKU.
	Items []Item `json:"items"`

	// Customer is the optional contact annotation.
	Customer *Customer `json:"customer,omitempty"`

	// Subtotal, Tax, and Total are derived from Items via a Pricer,
	// in integer currency units.
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`

	// CreatedAt is the cart creation timestamp (Unix milliseconds).
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the last mutation timestamp (Unix milliseconds).
	UpdatedAt int64 `json:"updated_at"`

	// ExpiresAt is the absolute expiration timestamp (Unix milliseconds).
	// Advanced to now+ttl on every successful store access.
	ExpiresAt int64 `json:"expires_at"`
}

// NewCart creates a new empty Cart with a generated ID.
func NewCart(now time.Time) (*Cart, error) {
	id, err := GenerateCartID(now)
	if err != nil {
		return nil, err
	}

	ms := now.UnixMilli()
	return &Cart{
		ID:        id,
		Items:     []Item{},
		CreatedAt: ms,
		UpdatedAt: ms,
	}, nil
}

// GenerateCartID generates a new cart ID using ULID.
// Format: cart-{ulid_lowercase}, 31 characters total.
func GenerateCartID(now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return CartIDPrefix + strings.ToLower(id.String()), nil
}

// IsValidCartID checks if a string is a valid cart ID format.
// It normalizes the ID to lowercase before validation.
func IsValidCartID(id string) bool {
	id = strings.ToLower(id)

	if !strings.HasPrefix(id, CartIDPrefix) {
		return false
	}

	// cart- (5) + ULID (26) = 31 characters
	if len(id) != 31 {
		return false
	}

	ulidPart := strings.ToUpper(id[len(CartIDPrefix):])
	_, err := ulid.Parse(ulidPart)
	return err == nil
}

// NormalizeCartID normalizes a cart ID to lowercase.
// Returns empty string if the ID is invalid.
func NormalizeCartID(id string) string {
	normalized := strings.ToLower(id)
	if !IsValidCartID(normalized) {
		return ""
	}
	return normalized
}

// IsExpiredAt reports whether the cart's expiry has passed as of now.
func (c *Cart) IsExpiredAt(now time.Time) bool {
	if c.ExpiresAt == 0 {
		return false
	}
	return now.UnixMilli() > c.ExpiresAt
}

// SetExpiration advances the expiry to now+ttl.
func (c *Cart) SetExpiration(now time.Time, ttl time.Duration) {
	c.ExpiresAt = now.Add(ttl).UnixMilli()
}

// Clone creates a deep copy of the cart.
func (c *Cart) Clone() *Cart {
	clone := *c
	clone.Items = make([]Item, len(c.Items))
	copy(clone.Items, c.Items)
	if c.Customer != nil {
		cust := *c.Customer
		clone.Customer = &cust
	}
	return &clone
}

// MergeItem returns a copy of the cart with quantity of sku merged in.
//
// If a line with the same SKU exists, quantities sum on that line;
// otherwise a new line with a fresh server-assigned line ID is
// appended. Totals are recomputed through the Pricer and UpdatedAt is
// set to now. The receiver is not modified.
func (c *Cart) MergeItem(sku string, quantity int, pricer Pricer, now time.Time) *Cart {
	next := c.Clone()

	merged := false
	for i := range next.Items {
		if next.Items[i].SKU == sku {
			next.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		next.Items = append(next.Items, Item{
			LineID:   uuid.NewString(),
			SKU:      sku,
			Quantity: quantity,
		})
	}

	next.reprice(pricer)
	next.UpdatedAt = now.UnixMilli()
	return next
}

// RemoveItem returns a copy of the cart with the line matching lineID
// filtered out. Totals are recomputed and UpdatedAt set to now.
// Returns ErrLineNotFound if no line has the given ID.
func (c *Cart) RemoveItem(lineID string, pricer Pricer, now time.Time) (*Cart, error) {
	next := c.Clone()

	found := false
	kept := next.Items[:0]
	for _, item := range next.Items {
		if item.LineID == lineID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return nil, ErrLineNotFound.WithDetails("line_id " + lineID)
	}
	next.Items = kept

	next.reprice(pricer)
	next.UpdatedAt = now.UnixMilli()
	return next, nil
}

// WithCustomer returns a copy of the cart carrying the given customer
// annotation. Totals are unaffected.
func (c *Cart) WithCustomer(customer *Customer, now time.Time) *Cart {
	next := c.Clone()
	if customer != nil {
		cust := *customer
		next.Customer = &cust
	} else {
		next.Customer = nil
	}
	next.UpdatedAt = now.UnixMilli()
	return next
}

// reprice recomputes per-line prices and the derived totals:
// subtotal = Σ price(sku)·quantity, tax = round(subtotal·rate),
// total = subtotal + tax.
func (c *Cart) reprice(pricer Pricer) {
	var subtotal int64
	for i := range c.Items {
		price := pricer.Price(c.Items[i].SKU)
		c.Items[i].UnitPrice = price
		c.Items[i].LineTotal = price * int64(c.Items[i].Quantity)
		subtotal += c.Items[i].LineTotal
	}
	c.Subtotal = subtotal
	c.Tax = pricer.TaxRate().Apply(subtotal)
	c.Total = c.Subtotal + c.Tax
}

// FindLine returns the line with the given ID, if present.
func (c *Cart) FindLine(lineID string) (Item, bool) {
	for _, item := range c.Items {
		if item.LineID == lineID {
			return item, true
		}
	}
	return Item{}, false
}

// Validate validates the cart fields against constraints.
// Returns a DomainError with code CV-CART-4001 if validation fails.
func (c *Cart) Validate() error {
	var violations []string

	seen := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		if item.SKU == "" {
			violations = append(violations, "sku is required")
		}
		if len(item.SKU) > MaxSKULength {
			violations = append(violations, "sku exceeds 64 characters")
		}
		if item.Quantity < 1 {
			violations = append(violations, "quantity must be positive")
		}
		if item.Quantity > MaxQuantityPerLine {
			violations = append(violations, "quantity exceeds per-line limit")
		}
		if seen[item.SKU] {
			violations = append(violations, "duplicate sku "+item.SKU)
		}
		seen[item.SKU] = true
	}

	if c.Customer != nil {
		if len(c.Customer.Name) > MaxCustomerNameLength {
			violations = append(violations, "customer name exceeds 128 characters")
		}
		if len(c.Customer.Email) > MaxCustomerEmailLength {
			violations = append(violations, "customer email exceeds 254 characters")
		}
		if len(c.Customer.Phone) > MaxCustomerPhoneLength {
			violations = append(violations, "customer phone exceeds 32 characters")
		}
	}

	if len(violations) > 0 {
		return ErrCartValidation.WithDetails(strings.Join(violations, "; "))
	}

	return nil
}

// CreatedAtTime returns CreatedAt as time.Time.
func (c *Cart) CreatedAtTime() time.Time {
	return time.UnixMilli(c.CreatedAt)
}

// UpdatedAtTime returns UpdatedAt as time.Time.
func (c *Cart) UpdatedAtTime() time.Time {
	return time.UnixMilli(c.UpdatedAt)
}

// ExpiresAtTime returns ExpiresAt as time.Time.
func (c *Cart) ExpiresAtTime() time.Time {
	if c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.ExpiresAt)
}
