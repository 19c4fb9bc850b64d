package rbac

import (
	"context"
	"log/slog"

	"github.com/gridkit-dev/pb-gridkit/core/server"
	"github.com/pocketbase/pocketbase/core"
)

// RolesField is the auth record field listing the caller's role names.
const RolesField = "roles"

// Gate is the authorization checkpoint consulted by the router for every
// non-public route.
type Gate struct {
	store PermissionStore
	log   *slog.Logger
}

func NewGate(store PermissionStore, log *slog.Logger) *Gate {
	return &Gate{store: store, log: log}
}

// RolesOf extracts the role names from an auth record. Superusers carry the
// implicit superuser role.
func RolesOf(auth *core.Record) []string {
	if auth == nil {
		return nil
	}
	roles := auth.GetStringSlice(RolesField)
	if auth.Collection().Name == core.CollectionNameSuperusers {
		roles = append(roles, "superuser")
	}
	return roles
}

// Authorize verifies that the caller may perform action on component. A
// missing caller yields an unauthenticated error; a role set without a
// matching grant yields forbidden; a storage failure denies (fail-secure).
// Every check is logged with the caller, component, action and outcome.
func (g *Gate) Authorize(ctx context.Context, component, action string, auth *core.Record) error {
	if auth == nil {
		g.logOutcome("", component, action, "unauthenticated")
		return server.NewUnauthenticatedError("authorize", "authentication required").
			WithContext("required_action", action)
	}

	// superusers bypass the permission table
	if auth.Collection().Name == core.CollectionNameSuperusers {
		g.logOutcome(auth.Id, component, action, "allowed")
		return nil
	}

	for _, role := range RolesOf(auth) {
		ok, err := g.store.Allowed(ctx, component, action, role)
		if err != nil {
			g.logOutcome(auth.Id, component, action, "denied")
			if g.log != nil {
				g.log.Error("permission lookup failed",
					"component", component,
					"action", action,
					"role", role,
					"error", err,
				)
			}
			return server.NewForbiddenError("authorize", "permission lookup failed").
				WithContext("required_action", action)
		}
		if ok {
			g.logOutcome(auth.Id, component, action, "allowed")
			return nil
		}
	}

	g.logOutcome(auth.Id, component, action, "denied")
	return server.NewForbiddenError("authorize", "insufficient permissions").
		WithContext("required_action", action).
		WithContext("component", component)
}

func (g *Gate) logOutcome(userID, component, action, outcome string) {
	if g.log == nil {
		return
	}
	g.log.Debug("authorization check",
		"user_id", userID,
		"component", component,
		"action", action,
		"outcome", outcome,
	)
}
