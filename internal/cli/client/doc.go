// Package client provides the HTTP API client used by cartvault-cli.
//
// All calls go through the server's JSON envelope; the client unwraps
// the data field and converts error envelopes into Go errors carrying
// the server's error code.
package client
