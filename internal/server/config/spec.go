// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for cartvault-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Store    StoreSection    `koanf:"store"`
	Recovery RecoverySection `koanf:"recovery"`
	Pricing  PricingSection  `koanf:"pricing"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP      HTTPConfig      `koanf:"http"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// RateLimitConfig configures per-client request throttling.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// StoreSection configures the in-memory cart store.
type StoreSection struct {
	// TTL is the idle lifetime of a cart record. Every successful
	// access pushes the record's expiry out by this much.
	TTL time.Duration `koanf:"ttl"`

	// Shards is the shard count of the concurrent map. Must be a
	// power of two; zero selects the default.
	Shards int `koanf:"shards"`

	Sweep SweepConfig `koanf:"sweep"`
}

// SweepConfig bounds the background expiration sweep.
type SweepConfig struct {
	// Interval is the pause between sweep runs.
	Interval time.Duration `koanf:"interval"`

	// ScanLimit caps how many records a single run examines.
	ScanLimit int `koanf:"scan_limit"`

	// Budget caps the wall-clock time a single run may spend.
	Budget time.Duration `koanf:"budget"`
}

// RecoverySection configures the recovery-token protocol.
type RecoverySection struct {
	// Secret is the HMAC signing secret. Required, minimum 16 bytes.
	Secret string `koanf:"secret"`

	// MaxAge is how long an issued token stays acceptable.
	MaxAge time.Duration `koanf:"max_age"`
}

// PricingSection configures the price catalog used to compute totals.
type PricingSection struct {
	// DefaultPrice is the unit price for SKUs absent from Prices,
	// in integer currency units.
	DefaultPrice int64 `koanf:"default_price"`

	// TaxRateBps is the tax rate in basis points (1300 = 13%).
	TaxRateBps int64 `koanf:"tax_rate_bps"`

	// Prices maps SKU to unit price, overriding DefaultPrice.
	Prices map[string]int64 `koanf:"prices"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
