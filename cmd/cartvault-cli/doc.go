// Package main provides the entry point for cartvault-cli.
//
// The CLI tool provides command-line access to a CartVault server for:
//
//   - Cart management (create, get, add, remove, customer, delete)
//   - Cart recovery from signed tokens
//   - System administration (status, health, sweep)
//
// Usage:
//
//	cartvault-cli [command] [flags]
//	cartvault-cli cart create --item sku-mug=2 --output json
//	cartvault-cli recover <token>
//
// The server address comes from --server, CARTVAULT_SERVER, or the
// CLI config file, in that order.
package main
