// Package schema validates the JSON documents extctl reads and writes
// (settings, extension manifests and backups) against JSON Schemas embedded
// in the binary, and reports leaf-level issues with their instance paths.
package schema
