// Package command defines the cartvault-cli command tree.
//
// Commands are thin: they parse flags, call the API client, and hand
// the response to an output formatter. All cart semantics live on the
// server.
package command
