// Package main provides the entry point for cartvault-server.
//
// The server is the CartVault service process:
//
//   - HTTP API for cart management and token-based recovery
//   - TTL-governed in-memory store with a bounded background sweep
//   - Prometheus metrics on /metrics
//
// Usage:
//
//	cartvault-server [flags]
//	cartvault-server --config /path/to/config.yaml
//
// Configuration comes from defaults, an optional YAML file, and
// CARTVAULT_* environment variables, in ascending precedence. The
// recovery signing secret has no default and must be provided.
package main
