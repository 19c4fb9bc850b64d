// Package rbac maps matched routes onto required actions and verifies them
// against the caller's roles. The gate is fail-secure: any lookup failure
// denies.
package rbac

import (
	"net/http"
	"regexp"
)

// Standard actions. Routes may declare custom actions beyond this set.
const (
	ActionList   = "list"
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// idShaped matches path segments that look like a concrete record id:
// numeric, or the 15+ character alphanumeric ids PocketBase generates.
var idShaped = regexp.MustCompile(`^(\d+|[a-zA-Z0-9]{15,})$`)

// ActionForRoute determines the required action for a matched route. An
// explicit declaration wins; otherwise the HTTP method is mapped, with GET
// splitting into read for single-resource paths (terminal wildcard or
// id-shaped segment) and list for everything else.
func ActionForRoute(method string, components []string, explicit string) string {
	if explicit != "" {
		return explicit
	}
	switch method {
	case http.MethodGet:
		if isSingleResource(components) {
			return ActionRead
		}
		return ActionList
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}

func isSingleResource(components []string) bool {
	if len(components) == 0 {
		return false
	}
	last := components[len(components)-1]
	return last == "?" || idShaped.MatchString(last)
}

// genericPrefixes are leading path segments that carry no component
// information (mount prefixes, api version tags).
var genericPrefixes = map[string]bool{
	"api": true,
	"v1":  true,
	"v2":  true,
	"v3":  true,
}

// ComponentForRoute determines the permission component: the model name for
// model-backed routes, the first non-generic path segment as a fallback, or
// the controller identifier for plain controllers.
func ComponentForRoute(model, controller string, components []string) string {
	if model != "" {
		return model
	}
	for _, c := range components {
		if c == "?" || genericPrefixes[c] {
			continue
		}
		if controller == "" {
			return c
		}
		break
	}
	return controller
}
