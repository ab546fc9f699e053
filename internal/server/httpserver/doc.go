// Package httpserver provides the HTTP server for CartVault.
//
// This package implements the HTTP transport layer:
//
//   - server.go: net/http server lifecycle
//   - router.go: route table and middleware assembly
//   - middleware.go: request ID, panic recovery, rate limiting, logging
//
// Request handlers live in the handler subpackage.
package httpserver
