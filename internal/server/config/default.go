// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:6180"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	DefaultRateLimitRPS   = 50.0
	DefaultRateLimitBurst = 100

	DefaultStoreTTL      = 30 * time.Minute
	DefaultSweepInterval = time.Minute
	DefaultSweepScan     = 1024
	DefaultSweepBudget   = 50 * time.Millisecond

	DefaultTokenMaxAge = 168 * time.Hour

	DefaultUnitPrice  = 1000
	DefaultTaxRateBps = 1300

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
//
// Recovery.Secret has no default; it must come from a file or the
// environment.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				ReadTimeout:     DefaultReadTimeout,
				WriteTimeout:    DefaultWriteTimeout,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
			RateLimit: RateLimitConfig{
				Enabled: false,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultRateLimitBurst,
			},
		},
		Store: StoreSection{
			TTL: DefaultStoreTTL,
			Sweep: SweepConfig{
				Interval:  DefaultSweepInterval,
				ScanLimit: DefaultSweepScan,
				Budget:    DefaultSweepBudget,
			},
		},
		Recovery: RecoverySection{
			MaxAge: DefaultTokenMaxAge,
		},
		Pricing: PricingSection{
			DefaultPrice: DefaultUnitPrice,
			TaxRateBps:   DefaultTaxRateBps,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
