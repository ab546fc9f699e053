package config

// CLIConfig is the configuration for cartvault-cli.
type CLIConfig struct {
	// DefaultServer is the server address used when --server is absent.
	DefaultServer string `yaml:"default_server"`

	// DefaultOutput is the output format used when --output is absent.
	// One of: table, json, yaml.
	DefaultOutput string `yaml:"default_output"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultServer: "127.0.0.1:6180",
		DefaultOutput: "table",
	}
}
