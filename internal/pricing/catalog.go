// Package pricing provides the price and tax lookup collaborator.
package pricing

import (
	"github.com/freshlane/cartvault/internal/core/domain"
)

// Default catalog values.
const (
	// DefaultPrice is the fallback unit price for unknown SKUs.
	DefaultPrice = 1000

	// DefaultTaxRateBps is the default tax rate in basis points (13%).
	DefaultTaxRateBps = 1300

	// taxRateDenominator converts basis points to a rational rate.
	taxRateDenominator = 10000
)

// Catalog is a static price catalog implementing domain.Pricer.
//
// Lookups are pure and read-only after construction; a Catalog is
// safe for concurrent use.
type Catalog struct {
	prices       map[string]int64
	defaultPrice int64
	taxRate      domain.Rate
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPrices sets per-SKU unit price overrides.
func WithPrices(prices map[string]int64) Option {
	return func(c *Catalog) {
		for sku, price := range prices {
			c.prices[sku] = price
		}
	}
}

// WithDefaultPrice sets the fallback price for unknown SKUs.
func WithDefaultPrice(price int64) Option {
	return func(c *Catalog) {
		c.defaultPrice = price
	}
}

// WithTaxRateBps sets the tax rate in basis points.
func WithTaxRateBps(bps int64) Option {
	return func(c *Catalog) {
		c.taxRate = domain.Rate{Num: bps, Den: taxRateDenominator}
	}
}

// NewCatalog creates a Catalog with the default price and tax rate.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		prices:       make(map[string]int64),
		defaultPrice: DefaultPrice,
		taxRate:      domain.Rate{Num: DefaultTaxRateBps, Den: taxRateDenominator},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Price returns the unit price for a SKU, falling back to the default
// price for unknown SKUs.
func (c *Catalog) Price(sku string) int64 {
	if price, ok := c.prices[sku]; ok {
		return price
	}
	return c.defaultPrice
}

// TaxRate returns the catalog's tax rate.
func (c *Catalog) TaxRate() domain.Rate {
	return c.taxRate
}
