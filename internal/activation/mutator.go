package activation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agentx-labs/extctl/internal/settings"
)

// errUnchanged tells Update to skip the save; the transition was a no-op on
// a document that should not be created just to record nothing.
var errUnchanged = errors.New("settings unchanged")

// Mutator applies activation state transitions to the settings file.
// Each operation is one transaction: lock, load, transform, save once.
// Operations are idempotent and only fail on I/O, parse or lock errors.
type Mutator struct {
	store       *settings.Store
	resolver    Resolver
	lockTimeout time.Duration
	logger      *zap.Logger
}

// NewMutator returns a Mutator writing through store.
func NewMutator(store *settings.Store, resolver Resolver, lockTimeout time.Duration, logger *zap.Logger) *Mutator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mutator{
		store:       store,
		resolver:    resolver,
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

// EnableAll sets enable-all and drops both explicit lists.
func (m *Mutator) EnableAll(ctx context.Context) error {
	return m.Update(ctx, "enable-all", func(st *settings.Settings) error {
		enableAll(st)
		return nil
	})
}

// EnableSpecific switches to explicit mode and enables ids.
func (m *Mutator) EnableSpecific(ctx context.Context, ids []string) error {
	return m.Update(ctx, "enable", func(st *settings.Settings) error {
		enableSpecific(st, ids)
		return nil
	}, zap.Strings("ids", ids))
}

// DisableSpecific disables ids. The enable-all flag is left as is.
func (m *Mutator) DisableSpecific(ctx context.Context, ids []string) error {
	return m.Update(ctx, "disable", func(st *settings.Settings) error {
		disableSpecific(st, ids)
		return nil
	}, zap.Strings("ids", ids))
}

// GrantPermissions appends permissions missing from the allow-list.
func (m *Mutator) GrantPermissions(ctx context.Context, perms []string) error {
	return m.Update(ctx, "grant", func(st *settings.Settings) error {
		grantPermissions(st, perms)
		return nil
	}, zap.Strings("permissions", perms))
}

// RevokePermissions removes exact matches from the allow-list.
func (m *Mutator) RevokePermissions(ctx context.Context, perms []string) error {
	return m.Update(ctx, "revoke", func(st *settings.Settings) error {
		if !revokePermissions(st, perms) {
			return errUnchanged
		}
		return nil
	}, zap.Strings("permissions", perms))
}

// Deactivate disables each id and revokes every permission scoped to it.
func (m *Mutator) Deactivate(ctx context.Context, ids []string) error {
	return m.Update(ctx, "deactivate", func(st *settings.Settings) error {
		deactivate(st, m.resolver, ids)
		return nil
	}, zap.Strings("ids", ids))
}

// Update runs fn as a locked read-modify-write transaction. Nothing is
// written if fn fails.
func (m *Mutator) Update(ctx context.Context, op string, fn func(*settings.Settings) error, fields ...zap.Field) error {
	lock := settings.NewLock(m.store.Path(), m.lockTimeout)
	if err := lock.Acquire(ctx); err != nil {
		return fmt.Errorf("locking settings: %w", err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			m.logger.Warn("releasing settings lock", zap.Error(err))
		}
	}()

	st, err := m.store.Load()
	if err != nil {
		return err
	}

	if err := fn(st); err != nil {
		if errors.Is(err, errUnchanged) {
			m.logger.Debug("settings unchanged", append(fields, zap.String("operation", op))...)
			return nil
		}
		return err
	}

	if err := m.store.Save(st); err != nil {
		return err
	}

	m.logger.Debug("settings updated", append(fields, zap.String("operation", op), zap.String("path", m.store.Path()))...)
	return nil
}

// Transitions. Each operates on an in-memory document only.

func enableAll(st *settings.Settings) {
	st.SetGlobalEnableAll(true)
	st.Enabled.Clear()
	st.Disabled.Clear()
}

// enableSpecific flips enable-all off without reconciling the disabled list
// against the extensions that flag used to cover.
func enableSpecific(st *settings.Settings, ids []string) {
	if st.GlobalEnableAll() {
		st.SetGlobalEnableAll(false)
	}
	st.Enabled.Add(ids...)
	if st.Disabled.Present() {
		st.Disabled.Remove(ids...)
		if st.Disabled.Len() == 0 {
			st.Disabled.Clear()
		}
	}
}

func disableSpecific(st *settings.Settings, ids []string) {
	st.Disabled.Add(ids...)
	if st.Enabled.Present() {
		st.Enabled.Remove(ids...)
		if st.Enabled.Len() == 0 {
			st.Enabled.Clear()
		}
	}
}

func grantPermissions(st *settings.Settings, perms []string) {
	st.EnsurePermissions().Allow.Add(perms...)
}

// revokePermissions reports false when there is no allow-list to edit.
func revokePermissions(st *settings.Settings, perms []string) bool {
	if st.Permissions == nil || !st.Permissions.Allow.Present() {
		return false
	}
	st.Permissions.Allow.Remove(perms...)
	return true
}

func deactivate(st *settings.Settings, r Resolver, ids []string) {
	for _, id := range ids {
		// Collect before mutating; revocation edits the list being scanned.
		scoped := r.PermissionsFor(st, id)
		disableSpecific(st, []string{id})
		if len(scoped) > 0 {
			revokePermissions(st, scoped)
		}
	}
}
