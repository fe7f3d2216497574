package manifest

import (
	"encoding/json"
	"fmt"
)

// KeyServers is the object holding extension definitions keyed by id.
const KeyServers = "mcpServers"

// Scope selects which registry of extensions an operation applies to.
type Scope string

const (
	ScopeUser    Scope = "user"
	ScopeProject Scope = "project"
)

// ParseScope parses a scope name.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeUser, ScopeProject:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("unknown scope %q (want %q or %q)", s, ScopeUser, ScopeProject)
	}
}

// Server is one extension definition. Only the fields extctl displays are
// decoded; the raw definition is kept alongside.
type Server struct {
	Type    string            `json:"type,omitempty"`
	Command string            `json:"command,omitempty"`
	URL     string            `json:"url,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Transport returns the declared transport, defaulting to stdio for
// command-based servers.
func (s Server) Transport() string {
	switch {
	case s.Type != "":
		return s.Type
	case s.URL != "":
		return "http"
	default:
		return "stdio"
	}
}

// Document is a parsed manifest. IDs keep the order the servers appear in
// the file.
type Document struct {
	IDs     []string
	Servers map[string]Server
}

// Len returns the number of registered extensions.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.IDs)
}

// Has reports whether id is registered.
func (d *Document) Has(id string) bool {
	if d == nil {
		return false
	}
	_, ok := d.Servers[id]
	return ok
}
