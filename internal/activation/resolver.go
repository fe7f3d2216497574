package activation

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/agentx-labs/extctl/internal/settings"
)

// DefaultNamespace is the permission namespace used by the host application.
const DefaultNamespace = "mcp"

const permissionSep = "__"

// Reason records which mechanism made an extension active.
type Reason int

const (
	// Inactive means no mechanism activates the extension.
	Inactive Reason = iota
	// ViaGlobalFlag means enable-all is set and the id is not disabled.
	ViaGlobalFlag
	// ViaEnabledList means the id is in the explicit enabled list.
	ViaEnabledList
	// ViaPermission means the allow-list grants the extension an action.
	ViaPermission
)

var reasonNames = map[Reason]string{
	Inactive:       "none",
	ViaGlobalFlag:  "all",
	ViaEnabledList: "specific",
	ViaPermission:  "permission",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// MarshalText renders the reason by name for JSON and YAML output.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses a reason name.
func (r *Reason) UnmarshalText(text []byte) error {
	for reason, name := range reasonNames {
		if name == string(text) {
			*r = reason
			return nil
		}
	}
	return fmt.Errorf("unknown activation reason %q", text)
}

// Status is the derived activation state of one extension.
type Status struct {
	ID     string `json:"id" yaml:"id"`
	Active bool   `json:"active" yaml:"active"`
	Reason Reason `json:"reason" yaml:"reason"`
}

// Resolver evaluates activation precedence. It is a value type with no
// I/O; the zero value uses DefaultNamespace.
type Resolver struct {
	Namespace string
}

// NewResolver returns a Resolver for the given permission namespace.
func NewResolver(namespace string) Resolver {
	return Resolver{Namespace: namespace}
}

func (r Resolver) namespace() string {
	if r.Namespace == "" {
		return DefaultNamespace
	}
	return r.Namespace
}

// PermissionPrefix returns "<ns>__<id>__", the prefix shared by every
// permission string scoped to the extension.
func (r Resolver) PermissionPrefix(id string) string {
	return r.namespace() + permissionSep + id + permissionSep
}

// Wildcard returns the permission granting every action of the extension.
func (r Resolver) Wildcard(id string) string {
	return r.PermissionPrefix(id) + "*"
}

// Resolve computes the activation status of one extension. Rules are
// checked in order and the first match wins:
//  1. enable-all is set and the id is not disabled
//  2. the id is in the enabled list
//  3. the allow-list holds the wildcard or any entry prefixed <ns>__<id>__
//  4. otherwise inactive
func (r Resolver) Resolve(st *settings.Settings, id string) Status {
	return r.snapshot(st).resolve(id)
}

// ResolveAll resolves each id in input order. Duplicates are kept.
func (r Resolver) ResolveAll(st *settings.Settings, ids []string) []Status {
	snap := r.snapshot(st)
	out := make([]Status, 0, len(ids))
	for _, id := range ids {
		out = append(out, snap.resolve(id))
	}
	return out
}

// ExtensionPermissions returns allow-list entries in the extension namespace.
func (r Resolver) ExtensionPermissions(st *settings.Settings) []string {
	prefix := r.namespace() + permissionSep
	var out []string
	for _, p := range st.AllowList() {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}

// PermissionsFor returns allow-list entries scoped to one extension,
// including its wildcard.
func (r Resolver) PermissionsFor(st *settings.Settings, id string) []string {
	prefix := r.PermissionPrefix(id)
	var out []string
	for _, p := range st.AllowList() {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}

type snapshot struct {
	r         Resolver
	enableAll bool
	enabled   mapset.Set[string]
	disabled  mapset.Set[string]
	allow     []string
}

func (r Resolver) snapshot(st *settings.Settings) snapshot {
	if st == nil {
		st = &settings.Settings{}
	}
	return snapshot{
		r:         r,
		enableAll: st.GlobalEnableAll(),
		enabled:   mapset.NewThreadUnsafeSet(st.EnabledIDs()...),
		disabled:  mapset.NewThreadUnsafeSet(st.DisabledIDs()...),
		allow:     st.AllowList(),
	}
}

func (s snapshot) resolve(id string) Status {
	switch {
	case s.enableAll && !s.disabled.Contains(id):
		return Status{ID: id, Active: true, Reason: ViaGlobalFlag}
	case s.enabled.Contains(id):
		return Status{ID: id, Active: true, Reason: ViaEnabledList}
	case s.hasPermission(id):
		return Status{ID: id, Active: true, Reason: ViaPermission}
	default:
		return Status{ID: id, Reason: Inactive}
	}
}

func (s snapshot) hasPermission(id string) bool {
	wildcard := s.r.Wildcard(id)
	prefix := s.r.PermissionPrefix(id)
	for _, p := range s.allow {
		if p == wildcard || strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
