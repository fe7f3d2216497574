package activation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentx-labs/extctl/internal/settings"
)

func parseSettings(t *testing.T, doc string) *settings.Settings {
	t.Helper()
	st, err := settings.Parse([]byte(doc))
	require.NoError(t, err)
	return st
}

func TestResolve_Precedence(t *testing.T) {
	r := NewResolver("ext")

	tests := []struct {
		name   string
		doc    string
		id     string
		active bool
		reason Reason
	}{
		{"empty document", `{}`, "x", false, Inactive},
		{"enable-all", `{"enableAllProjectMcpServers": true}`, "x", true, ViaGlobalFlag},
		{"enable-all beats enabled list", `{"enableAllProjectMcpServers": true, "enabledMcpjsonServers": ["x"]}`, "x", true, ViaGlobalFlag},
		{"enabled list", `{"enabledMcpjsonServers": ["x"]}`, "x", true, ViaEnabledList},
		{"enabled list beats permission", `{"enabledMcpjsonServers": ["x"], "permissions": {"allow": ["ext__x__*"]}}`, "x", true, ViaEnabledList},
		{"wildcard permission", `{"permissions": {"allow": ["ext__x__*"]}}`, "x", true, ViaPermission},
		{"action permission", `{"permissions": {"allow": ["ext__x__read"]}}`, "x", true, ViaPermission},
		{"other extension permission", `{"permissions": {"allow": ["ext__y__read"]}}`, "x", false, Inactive},
		{"other namespace", `{"permissions": {"allow": ["mcp__x__*"]}}`, "x", false, Inactive},
		{"prefix without separator", `{"permissions": {"allow": ["ext__xy__read"]}}`, "x", false, Inactive},
		{"disabled under enable-all", `{"enableAllProjectMcpServers": true, "disabledMcpjsonServers": ["x"]}`, "x", false, Inactive},
		{"disabled under enable-all falls through to permission", `{"enableAllProjectMcpServers": true, "disabledMcpjsonServers": ["x"], "permissions": {"allow": ["ext__x__*"]}}`, "x", true, ViaPermission},
		{"enable-all false", `{"enableAllProjectMcpServers": false}`, "x", false, Inactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(parseSettings(t, tt.doc), tt.id)
			assert.Equal(t, tt.id, got.ID)
			assert.Equal(t, tt.active, got.Active)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestResolve_NilSettings(t *testing.T) {
	got := Resolver{}.Resolve(nil, "x")
	assert.False(t, got.Active)
	assert.Equal(t, Inactive, got.Reason)
}

func TestResolveAll_KeepsInputOrder(t *testing.T) {
	st := parseSettings(t, `{"enabledMcpjsonServers": ["b"]}`)
	got := NewResolver("ext").ResolveAll(st, []string{"c", "b", "a", "b"})

	ids := make([]string, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"c", "b", "a", "b"}, ids)
	assert.True(t, got[1].Active)
	assert.True(t, got[3].Active)
	assert.False(t, got[0].Active)
}

func TestResolver_DefaultNamespace(t *testing.T) {
	var r Resolver
	assert.Equal(t, "mcp__github__", r.PermissionPrefix("github"))
	assert.Equal(t, "mcp__github__*", r.Wildcard("github"))
	assert.Equal(t, "ext__github__*", NewResolver("ext").Wildcard("github"))
}

func TestResolver_PermissionQueries(t *testing.T) {
	st := parseSettings(t, `{"permissions": {"allow": ["Bash(ls)", "ext__x__read", "ext__y__*", "ext__x__write"]}}`)
	r := NewResolver("ext")

	assert.Equal(t, []string{"ext__x__read", "ext__y__*", "ext__x__write"}, r.ExtensionPermissions(st))
	assert.Equal(t, []string{"ext__x__read", "ext__x__write"}, r.PermissionsFor(st, "x"))
	assert.Empty(t, r.PermissionsFor(st, "z"))
}

func TestReason_Text(t *testing.T) {
	data, err := json.Marshal(Status{ID: "x", Active: true, Reason: ViaEnabledList})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "x", "active": true, "reason": "specific"}`, string(data))

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`{"id": "y", "reason": "permission"}`), &s))
	assert.Equal(t, ViaPermission, s.Reason)

	assert.Error(t, json.Unmarshal([]byte(`{"reason": "bogus"}`), &s))
	assert.Equal(t, "Reason(42)", Reason(42).String())
}
