// Package pricing provides the price and tax lookup collaborator.
package pricing

import (
	"testing"

	"github.com/freshlane/cartvault/internal/core/domain"
)

func TestCatalogDefaults(t *testing.T) {
	c := NewCatalog()

	if got := c.Price("anything"); got != DefaultPrice {
		t.Errorf("Price(unknown) = %d, want %d", got, DefaultPrice)
	}

	rate := c.TaxRate()
	if rate.Num != DefaultTaxRateBps || rate.Den != taxRateDenominator {
		t.Errorf("TaxRate() = %d/%d, want %d/%d", rate.Num, rate.Den, DefaultTaxRateBps, taxRateDenominator)
	}
}

func TestCatalogOverrides(t *testing.T) {
	c := NewCatalog(
		WithPrices(map[string]int64{"SKU-A": 1500, "SKU-B": 250}),
		WithDefaultPrice(999),
		WithTaxRateBps(800),
	)

	tests := []struct {
		sku  string
		want int64
	}{
		{"SKU-A", 1500},
		{"SKU-B", 250},
		{"SKU-UNKNOWN", 999},
	}

	for _, tt := range tests {
		if got := c.Price(tt.sku); got != tt.want {
			t.Errorf("Price(%q) = %d, want %d", tt.sku, got, tt.want)
		}
	}

	if got := c.TaxRate().Apply(10000); got != 800 {
		t.Errorf("TaxRate().Apply(10000) = %d, want 800", got)
	}
}

func TestCatalogImplementsPricer(t *testing.T) {
	var _ domain.Pricer = NewCatalog()
}
