package activation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agentx-labs/extctl/internal/manifest"
	"github.com/agentx-labs/extctl/internal/settings"
)

// ExtensionLister enumerates the extension ids registered in a scope.
type ExtensionLister interface {
	ListExtensionIDs(scope manifest.Scope) ([]string, error)
}

// Strategy selects how Activate turns extensions on.
type Strategy string

const (
	// StrategyAll sets enable-all.
	StrategyAll Strategy = "all"
	// StrategySpecific adds the ids to the enabled list.
	StrategySpecific Strategy = "specific"
	// StrategyPermission grants each id its wildcard permission.
	StrategyPermission Strategy = "permission"
)

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyAll, StrategySpecific, StrategyPermission:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown activation strategy %q (want all, specific or permission)", s)
	}
}

// Summary is a report of activation state for one scope.
type Summary struct {
	Scope       manifest.Scope `json:"scope" yaml:"scope"`
	EnableAll   bool           `json:"enableAll" yaml:"enableAll"`
	Enabled     []string       `json:"enabled" yaml:"enabled"`
	Disabled    []string       `json:"disabled" yaml:"disabled"`
	Statuses    []Status       `json:"extensions" yaml:"extensions"`
	Permissions []string       `json:"permissions" yaml:"permissions"`
}

// ActiveCount returns how many extensions are active.
func (s *Summary) ActiveCount() int {
	n := 0
	for _, st := range s.Statuses {
		if st.Active {
			n++
		}
	}
	return n
}

// Service combines the resolver, mutator and manifest lister behind the
// operations the command layer exposes.
type Service struct {
	store    *settings.Store
	lister   ExtensionLister
	resolver Resolver
	mutator  *Mutator
	logger   *zap.Logger
}

// NewService wires a Service.
func NewService(store *settings.Store, lister ExtensionLister, namespace string, lockTimeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := NewResolver(namespace)
	return &Service{
		store:    store,
		lister:   lister,
		resolver: resolver,
		mutator:  NewMutator(store, resolver, lockTimeout, logger),
		logger:   logger,
	}
}

// Resolver returns the resolver used by the service.
func (s *Service) Resolver() Resolver { return s.resolver }

// Mutator returns the mutator used by the service.
func (s *Service) Mutator() *Mutator { return s.mutator }

// GetActivationStatuses resolves every extension registered in scope, in
// registry order.
func (s *Service) GetActivationStatuses(scope manifest.Scope) ([]Status, error) {
	ids, err := s.lister.ListExtensionIDs(scope)
	if err != nil {
		return nil, fmt.Errorf("listing %s extensions: %w", scope, err)
	}
	st, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolveAll(st, ids), nil
}

// Summary reports statuses plus the extension-scoped allow-list entries.
func (s *Service) Summary(scope manifest.Scope) (*Summary, error) {
	ids, err := s.lister.ListExtensionIDs(scope)
	if err != nil {
		return nil, fmt.Errorf("listing %s extensions: %w", scope, err)
	}
	st, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return &Summary{
		Scope:       scope,
		EnableAll:   st.GlobalEnableAll(),
		Enabled:     nonNil(st.EnabledIDs()),
		Disabled:    nonNil(st.DisabledIDs()),
		Statuses:    s.resolver.ResolveAll(st, ids),
		Permissions: nonNil(s.resolver.ExtensionPermissions(st)),
	}, nil
}

// nonNil keeps empty lists rendering as [] rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// IsActive resolves a single extension.
func (s *Service) IsActive(id string) (Status, error) {
	st, err := s.store.Load()
	if err != nil {
		return Status{}, err
	}
	return s.resolver.Resolve(st, id), nil
}

// EnableAll sets enable-all and clears the explicit lists.
func (s *Service) EnableAll(ctx context.Context) error {
	return s.mutator.EnableAll(ctx)
}

// EnableSpecific enables ids explicitly.
func (s *Service) EnableSpecific(ctx context.Context, ids []string) error {
	return s.mutator.EnableSpecific(ctx, ids)
}

// DisableSpecific disables ids explicitly.
func (s *Service) DisableSpecific(ctx context.Context, ids []string) error {
	return s.mutator.DisableSpecific(ctx, ids)
}

// Deactivate disables ids and revokes their scoped permissions.
func (s *Service) Deactivate(ctx context.Context, ids []string) error {
	return s.mutator.Deactivate(ctx, ids)
}

// GrantPermissions adds permissions to the allow-list.
func (s *Service) GrantPermissions(ctx context.Context, perms []string) error {
	return s.mutator.GrantPermissions(ctx, perms)
}

// RevokePermissions removes permissions from the allow-list.
func (s *Service) RevokePermissions(ctx context.Context, perms []string) error {
	return s.mutator.RevokePermissions(ctx, perms)
}

// Activate turns ids on using strategy. StrategyAll ignores ids.
func (s *Service) Activate(ctx context.Context, ids []string, strategy Strategy) error {
	switch strategy {
	case StrategyAll:
		return s.mutator.EnableAll(ctx)
	case StrategySpecific:
		return s.mutator.EnableSpecific(ctx, ids)
	case StrategyPermission:
		perms := make([]string, 0, len(ids))
		for _, id := range ids {
			perms = append(perms, s.resolver.Wildcard(id))
		}
		return s.mutator.GrantPermissions(ctx, perms)
	default:
		return fmt.Errorf("unknown activation strategy %q", strategy)
	}
}

// Initialize creates a settings file with enable-all set when the project
// has none. An existing file is left untouched. Reports whether a file was
// created.
func (s *Service) Initialize(ctx context.Context) (bool, error) {
	created := false
	err := s.mutator.Update(ctx, "init", func(st *settings.Settings) error {
		if _, found, err := s.store.LoadIfExists(); err != nil {
			return err
		} else if found {
			return errUnchanged
		}
		enableAll(st)
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}
