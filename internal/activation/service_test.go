package activation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentx-labs/extctl/internal/manifest"
	"github.com/agentx-labs/extctl/internal/settings"
)

type fakeLister map[manifest.Scope][]string

func (f fakeLister) ListExtensionIDs(scope manifest.Scope) ([]string, error) {
	ids, ok := f[scope]
	if !ok {
		return nil, errors.New("no such scope")
	}
	return ids, nil
}

func newTestService(t *testing.T, lister ExtensionLister) (*Service, *settings.Store) {
	t.Helper()
	store := settings.NewStore(filepath.Join(t.TempDir(), ".claude", "settings.local.json"), nil)
	return NewService(store, lister, "ext", time.Second, nil), store
}

func TestService_Statuses(t *testing.T) {
	svc, store := newTestService(t, fakeLister{manifest.ScopeProject: {"github", "fs", "db"}})
	writeSettings(t, store, `{"enabledMcpjsonServers": ["fs"], "permissions": {"allow": ["ext__db__query", "Bash(ls)"]}}`)

	statuses, err := svc.GetActivationStatuses(manifest.ScopeProject)
	require.NoError(t, err)
	assert.Equal(t, []Status{
		{ID: "github", Active: false, Reason: Inactive},
		{ID: "fs", Active: true, Reason: ViaEnabledList},
		{ID: "db", Active: true, Reason: ViaPermission},
	}, statuses)

	summary, err := svc.Summary(manifest.ScopeProject)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ActiveCount())
	assert.False(t, summary.EnableAll)
	assert.Equal(t, []string{"ext__db__query"}, summary.Permissions)
	assert.Equal(t, []string{"fs"}, summary.Enabled)
	assert.Equal(t, []string{}, summary.Disabled)

	_, err = svc.Summary(manifest.ScopeUser)
	assert.Error(t, err)
}

func TestService_SummaryEmptyPermissions(t *testing.T) {
	svc, _ := newTestService(t, fakeLister{manifest.ScopeProject: nil})
	summary, err := svc.Summary(manifest.ScopeProject)
	require.NoError(t, err)
	assert.NotNil(t, summary.Permissions)
	assert.Empty(t, summary.Statuses)
}

func TestService_Activate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		strategy Strategy
		want     string
	}{
		{StrategyAll, `{"enableAllProjectMcpServers": true}`},
		{StrategySpecific, `{"enabledMcpjsonServers": ["a", "b"]}`},
		{StrategyPermission, `{"permissions": {"allow": ["ext__a__*", "ext__b__*"], "deny": []}}`},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			svc, store := newTestService(t, fakeLister{})
			require.NoError(t, svc.Activate(ctx, []string{"a", "b"}, tt.strategy))
			assert.JSONEq(t, tt.want, readFile(t, store.Path()))

			for _, id := range []string{"a", "b"} {
				status, err := svc.IsActive(id)
				require.NoError(t, err)
				assert.True(t, status.Active, id)
			}
		})
	}

	svc, _ := newTestService(t, fakeLister{})
	assert.Error(t, svc.Activate(ctx, nil, Strategy("bogus")))
}

func TestService_Initialize(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, fakeLister{})

	created, err := svc.Initialize(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	assert.JSONEq(t, `{"enableAllProjectMcpServers": true}`, readFile(t, store.Path()))

	require.NoError(t, svc.DisableSpecific(ctx, []string{"a"}))
	before := readFile(t, store.Path())

	created, err = svc.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, before, readFile(t, store.Path()))
}

func TestService_DeactivateThenRevokeIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, fakeLister{})
	require.NoError(t, svc.GrantPermissions(ctx, []string{"ext__a__*"}))
	require.NoError(t, svc.Deactivate(ctx, []string{"a"}))
	require.NoError(t, svc.RevokePermissions(ctx, []string{"ext__a__*"}))

	st, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, st.AllowList())
	assert.Equal(t, []string{"a"}, st.DisabledIDs())
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("permission")
	require.NoError(t, err)
	assert.Equal(t, StrategyPermission, s)

	_, err = ParseStrategy("some")
	assert.Error(t, err)
}
