// Package cli defines the Cobra command tree for the extctl CLI. Each file
// in this package registers one top-level command (status, enable, backup,
// etc.) with the root command. Commands delegate to the activation and
// backup packages and only handle flag parsing, I/O formatting and exit
// status.
package cli
