// Package manifest reads the documents that register extensions: the
// project manifest (.mcp.json) and the user-level config. Both hold an
// "mcpServers" object keyed by extension id.
package manifest
