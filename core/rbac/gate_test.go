package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/gridkit-dev/pb-gridkit/core/server"
	"github.com/pocketbase/pocketbase/core"
)

func authRecord(t *testing.T, roles ...string) *core.Record {
	t.Helper()
	col := core.NewAuthCollection("clients")
	col.Fields.Add(&core.SelectField{
		Name:      RolesField,
		Values:    []string{"viewer", "editor", "admin"},
		MaxSelect: 3,
	})
	rec := core.NewRecord(col)
	rec.Set(RolesField, roles)
	return rec
}

func superuserRecord(t *testing.T) *core.Record {
	t.Helper()
	col := core.NewAuthCollection(core.CollectionNameSuperusers)
	return core.NewRecord(col)
}

type failingStore struct{}

func (failingStore) Allowed(context.Context, string, string, string) (bool, error) {
	return false, errors.New("storage offline")
}

func TestAuthorizeNilCallerIsUnauthenticated(t *testing.T) {
	gate := NewGate(NewStaticPermissions(), nil)

	err := gate.Authorize(context.Background(), "users", ActionList, nil)

	if !server.IsUnauthenticated(err) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	var srvErr *server.ServerError
	if errors.As(err, &srvErr) && srvErr.Context["required_action"] != ActionList {
		t.Errorf("missing required_action context: %+v", srvErr.Context)
	}
}

func TestAuthorizeGrantedRole(t *testing.T) {
	static := NewStaticPermissions()
	static.Grant("users", "viewer", []string{ActionList, ActionRead})
	gate := NewGate(static, nil)

	if err := gate.Authorize(context.Background(), "users", ActionRead, authRecord(t, "viewer")); err != nil {
		t.Fatalf("expected allow, got %v", err)
	}
}

func TestAuthorizeDeniedAction(t *testing.T) {
	static := NewStaticPermissions()
	static.Grant("users", "user", []string{ActionList, ActionRead})
	gate := NewGate(static, nil)

	err := gate.Authorize(context.Background(), "users", ActionDelete, authRecord(t, "user"))

	if !server.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if server.StatusOf(err) != 403 {
		t.Errorf("status = %d, want 403", server.StatusOf(err))
	}
	var srvErr *server.ServerError
	if errors.As(err, &srvErr) {
		if srvErr.Context["required_action"] != ActionDelete {
			t.Errorf("required_action = %v", srvErr.Context["required_action"])
		}
		if srvErr.Context["component"] != "users" {
			t.Errorf("component = %v", srvErr.Context["component"])
		}
	}
}

func TestAuthorizeWildcardActionGrant(t *testing.T) {
	static := NewStaticPermissions()
	static.Grant("orders", "admin", []string{"*"})
	gate := NewGate(static, nil)

	for _, action := range []string{ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete} {
		if err := gate.Authorize(context.Background(), "orders", action, authRecord(t, "admin")); err != nil {
			t.Errorf("wildcard grant denied %s: %v", action, err)
		}
	}
}

func TestAuthorizeSuperuserBypass(t *testing.T) {
	gate := NewGate(NewStaticPermissions(), nil)

	if err := gate.Authorize(context.Background(), "anything", ActionDelete, superuserRecord(t)); err != nil {
		t.Fatalf("superuser must bypass the permission table, got %v", err)
	}
}

// A failing permission store denies instead of allowing.
func TestAuthorizeFailSecure(t *testing.T) {
	gate := NewGate(failingStore{}, nil)

	err := gate.Authorize(context.Background(), "users", ActionList, authRecord(t, "viewer"))

	if !server.IsForbidden(err) {
		t.Fatalf("expected forbidden on store failure, got %v", err)
	}
}

func TestChainPermissions(t *testing.T) {
	first := NewStaticPermissions()
	second := NewStaticPermissions()
	second.Grant("users", "viewer", []string{ActionList})
	chain := ChainPermissions{first, second}

	ok, err := chain.Allowed(context.Background(), "users", ActionList, "viewer")
	if err != nil || !ok {
		t.Errorf("chain should find the grant in the second store: ok=%v err=%v", ok, err)
	}

	ok, err = chain.Allowed(context.Background(), "users", ActionDelete, "viewer")
	if err != nil || ok {
		t.Errorf("chain should deny missing grants: ok=%v err=%v", ok, err)
	}

	failing := ChainPermissions{failingStore{}, second}
	if _, err := failing.Allowed(context.Background(), "users", ActionList, "viewer"); err == nil {
		t.Error("store errors must propagate")
	}
}

func TestRolesOf(t *testing.T) {
	if roles := RolesOf(nil); roles != nil {
		t.Errorf("nil auth roles = %v", roles)
	}

	roles := RolesOf(authRecord(t, "viewer", "editor"))
	if len(roles) != 2 {
		t.Errorf("roles = %v", roles)
	}

	roles = RolesOf(superuserRecord(t))
	found := false
	for _, r := range roles {
		if r == "superuser" {
			found = true
		}
	}
	if !found {
		t.Errorf("superuser role missing: %v", roles)
	}
}
