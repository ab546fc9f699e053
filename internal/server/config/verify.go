// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/freshlane/cartvault/pkg/token"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStore(&cfg.Store); err != nil {
		return err
	}
	if err := verifyRecovery(&cfg.Recovery); err != nil {
		return err
	}
	return verifyPricing(&cfg.Pricing)
}

func verifyServer(cfg *ServerSection) error {
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr %q is not host:port: %w", cfg.HTTP.Addr, err)
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RPS <= 0 {
			return errors.New("server.rate_limit.rps must be positive")
		}
		if cfg.RateLimit.Burst < 1 {
			return errors.New("server.rate_limit.burst must be at least 1")
		}
	}
	return nil
}

func verifyStore(cfg *StoreSection) error {
	if cfg.TTL <= 0 {
		return errors.New("store.ttl must be positive")
	}
	if cfg.Shards < 0 || (cfg.Shards != 0 && cfg.Shards&(cfg.Shards-1) != 0) {
		return errors.New("store.shards must be a power of two")
	}
	if cfg.Sweep.Interval <= 0 {
		return errors.New("store.sweep.interval must be positive")
	}
	if cfg.Sweep.ScanLimit < 1 {
		return errors.New("store.sweep.scan_limit must be at least 1")
	}
	if cfg.Sweep.Budget <= 0 {
		return errors.New("store.sweep.budget must be positive")
	}
	return nil
}

func verifyRecovery(cfg *RecoverySection) error {
	if cfg.Secret == "" {
		return errors.New("recovery.secret is required")
	}
	if len(cfg.Secret) < token.MinSecretLength {
		return fmt.Errorf("recovery.secret must be at least %d bytes", token.MinSecretLength)
	}
	if cfg.MaxAge <= 0 {
		return errors.New("recovery.max_age must be positive")
	}
	return nil
}

func verifyPricing(cfg *PricingSection) error {
	if cfg.DefaultPrice < 0 {
		return errors.New("pricing.default_price must not be negative")
	}
	if cfg.TaxRateBps < 0 || cfg.TaxRateBps > 10000 {
		return errors.New("pricing.tax_rate_bps must be between 0 and 10000")
	}
	for sku, price := range cfg.Prices {
		if price < 0 {
			return fmt.Errorf("pricing.prices[%s] must not be negative", sku)
		}
	}
	return nil
}
