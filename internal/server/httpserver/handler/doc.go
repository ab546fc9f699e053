// Package handler provides HTTP request handlers for CartVault.
//
// This package implements the HTTP API endpoints for cart management,
// recovery tokens, and administrative operations:
//
//   - cart.go: cart CRUD and line operations
//   - recovery.go: token-based cart recovery
//   - health.go: liveness and readiness probes
//   - admin.go: status summary and manual sweep trigger
//   - types.go: request/response payloads and the response envelope
package handler
