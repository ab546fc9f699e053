// Package output provides output formatting for cartvault-cli.
//
// Three formats are supported: an aligned text table for terminals,
// indented JSON, and YAML. Table rendering is reflection-driven so
// commands can hand any response struct straight to a Formatter.
package output
