package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Server struct {
		HTTP struct {
			Addr string `koanf:"addr"`
		} `koanf:"http"`
		RateLimit struct {
			Enabled bool `koanf:"enabled"`
		} `koanf:"rate_limit"`
	} `koanf:"server"`
	Store struct {
		TTL   string `koanf:"ttl"`
		Sweep struct {
			ScanLimit int `koanf:"scan_limit"`
		} `koanf:"sweep"`
	} `koanf:"store"`
	Recovery struct {
		Secret string `koanf:"secret"`
	} `koanf:"recovery"`
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
	if l.IsLoaded() {
		t.Error("IsLoaded() = true before Load")
	}
}

func TestNewLoaderWithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want TEST_", l.envPrefix)
	}
	if l.filePath != "/path/to/config.yaml" {
		t.Errorf("filePath = %q, want /path/to/config.yaml", l.filePath)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  http:
    addr: "0.0.0.0:6180"
  rate_limit:
    enabled: true
store:
  ttl: "45m"
  sweep:
    scan_limit: 512
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	var cfg testConfig
	l := NewLoader(WithConfigFile(configPath))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "0.0.0.0:6180" {
		t.Errorf("Addr = %q, want 0.0.0.0:6180", cfg.Server.HTTP.Addr)
	}
	if !cfg.Server.RateLimit.Enabled {
		t.Error("RateLimit.Enabled = false, want true")
	}
	if cfg.Store.TTL != "45m" {
		t.Errorf("TTL = %q, want 45m", cfg.Store.TTL)
	}
	if cfg.Store.Sweep.ScanLimit != 512 {
		t.Errorf("ScanLimit = %d, want 512", cfg.Store.Sweep.ScanLimit)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() = false after Load")
	}
}

func TestLoadFileMissing(t *testing.T) {
	var cfg testConfig
	l := NewLoader(WithConfigFile("/no/such/config.yaml"))
	if err := l.Load(&cfg); err == nil {
		t.Error("Load() with missing file succeeded, want error")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("CARTVAULT_SERVER__HTTP__ADDR", "127.0.0.1:7000")
	t.Setenv("CARTVAULT_STORE__SWEEP__SCAN_LIMIT", "2048")
	t.Setenv("CARTVAULT_SERVER__RATE_LIMIT__ENABLED", "true")
	t.Setenv("CARTVAULT_RECOVERY__SECRET", "0123456789abcdef")

	var cfg testConfig
	l := NewLoader()
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "127.0.0.1:7000" {
		t.Errorf("Addr = %q, want 127.0.0.1:7000", cfg.Server.HTTP.Addr)
	}
	if cfg.Store.Sweep.ScanLimit != 2048 {
		t.Errorf("ScanLimit = %d, want 2048 (single underscore kept in key)", cfg.Store.Sweep.ScanLimit)
	}
	if !cfg.Server.RateLimit.Enabled {
		t.Error("RateLimit.Enabled = false, want true")
	}
	if cfg.Recovery.Secret != "0123456789abcdef" {
		t.Errorf("Secret = %q, want 0123456789abcdef", cfg.Recovery.Secret)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  http:\n    addr: \"127.0.0.1:6180\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CARTVAULT_SERVER__HTTP__ADDR", "0.0.0.0:9999")

	var cfg testConfig
	l := NewLoader(WithConfigFile(configPath))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "0.0.0.0:9999" {
		t.Errorf("Addr = %q, want env value 0.0.0.0:9999", cfg.Server.HTTP.Addr)
	}
}

func TestLoadMapOverridesAll(t *testing.T) {
	t.Setenv("CARTVAULT_SERVER__HTTP__ADDR", "0.0.0.0:9999")
	t.Setenv("CARTVAULT_STORE__TTL", "45m")

	var cfg testConfig
	l := NewLoader()
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := l.LoadMap(map[string]any{"server.http.addr": "10.0.0.1:80"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "10.0.0.1:80" {
		t.Errorf("Addr = %q, want flag value 10.0.0.1:80", cfg.Server.HTTP.Addr)
	}
	// The dotted key must merge into the nested path, not land as a flat
	// literal key.
	if got := l.GetString("server.http.addr"); got != "10.0.0.1:80" {
		t.Errorf("GetString(server.http.addr) = %q, want 10.0.0.1:80", got)
	}
	// Keys the map does not touch keep their earlier values.
	if cfg.Store.TTL != "45m" {
		t.Errorf("Store.TTL = %q, want env value 45m", cfg.Store.TTL)
	}
}

func TestGetAccessors(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"log.level": "debug"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if got := l.GetString("log.level"); got != "debug" {
		t.Errorf("GetString(log.level) = %q, want debug", got)
	}
	if got := l.Get("log.level"); got != "debug" {
		t.Errorf("Get(log.level) = %v, want debug", got)
	}
	if _, ok := l.All()["log.level"]; !ok {
		t.Error("All() missing log.level")
	}
}
