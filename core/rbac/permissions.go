package rbac

import (
	"context"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// PermissionCollection is the collection holding (component, action, role)
// permission rows.
const PermissionCollection = "permissions"

// PermissionStore answers whether a role is granted an action on a
// component. Implementations must treat their own failures as errors, never
// as silent denials, so the gate can log them.
type PermissionStore interface {
	Allowed(ctx context.Context, component, action, role string) (bool, error)
}

// StaticPermissions is the in-memory store built from the rolesAndActions
// declarations of registered model specs.
type StaticPermissions struct {
	// component -> role -> action set; "*" as an action grants everything
	grants map[string]map[string]map[string]bool
}

// NewStaticPermissions creates an empty static store.
func NewStaticPermissions() *StaticPermissions {
	return &StaticPermissions{grants: make(map[string]map[string]map[string]bool)}
}

// Grant records that role may perform the listed actions on component.
func (s *StaticPermissions) Grant(component, role string, actions []string) {
	if s.grants[component] == nil {
		s.grants[component] = make(map[string]map[string]bool)
	}
	if s.grants[component][role] == nil {
		s.grants[component][role] = make(map[string]bool)
	}
	for _, action := range actions {
		s.grants[component][role][action] = true
	}
}

// GrantModel loads a full rolesAndActions declaration for one component.
func (s *StaticPermissions) GrantModel(component string, rolesAndActions map[string][]string) {
	for role, actions := range rolesAndActions {
		s.Grant(component, role, actions)
	}
}

// Allowed implements PermissionStore.
func (s *StaticPermissions) Allowed(_ context.Context, component, action, role string) (bool, error) {
	roles := s.grants[component]
	if roles == nil {
		return false, nil
	}
	actions := roles[role]
	if actions == nil {
		return false, nil
	}
	return actions["*"] || actions[action], nil
}

// CollectionPermissions consults the permissions collection through the
// database, so grants can be edited at runtime.
type CollectionPermissions struct {
	app core.App
}

func NewCollectionPermissions(app core.App) *CollectionPermissions {
	return &CollectionPermissions{app: app}
}

// Allowed implements PermissionStore with a single indexed lookup.
func (s *CollectionPermissions) Allowed(ctx context.Context, component, action, role string) (bool, error) {
	var total int
	err := s.app.DB().
		Select("COUNT(*)").
		From(PermissionCollection).
		Where(dbx.And(
			dbx.HashExp{"component": component, "role": role},
			dbx.In("action", action, "*"),
		)).
		WithContext(ctx).
		Row(&total)
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

// ChainPermissions consults stores in order; the first grant wins. An error
// from any store propagates so the gate denies.
type ChainPermissions []PermissionStore

// Allowed implements PermissionStore.
func (c ChainPermissions) Allowed(ctx context.Context, component, action, role string) (bool, error) {
	for _, store := range c {
		ok, err := store.Allowed(ctx, component, action, role)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
