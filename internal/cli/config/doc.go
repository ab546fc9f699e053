// Package config defines the cartvault-cli configuration file.
//
// The file holds defaults the user would otherwise repeat on every
// invocation (server address, output format). Flags and environment
// variables always win over the file.
package config
