package gateway

import (
	"github.com/gridkit-dev/pb-gridkit/core/metadata"
)

// DefaultModelRoutes declares the standard CRUD route table for a model,
// served by its generic controller. The roles apply to every route; pass
// "*" to make the model public.
func DefaultModelRoutes(model string, roles ...string) []metadata.RouteDeclaration {
	base := "/" + model
	item := base + "/?"
	idParam := []string{"", "id"}

	return []metadata.RouteDeclaration{
		{Method: "GET", Path: base, Handler: "list", AllowedRoles: roles,
			Description: "List " + model + " with filtering, sorting, search and pagination"},
		{Method: "GET", Path: item, Handler: "read", ParameterNames: idParam, AllowedRoles: roles,
			Description: "Fetch one " + model + " record by id"},
		{Method: "POST", Path: base, Handler: "create", AllowedRoles: roles,
			Description: "Create a " + model + " record"},
		{Method: "PUT", Path: item, Handler: "update", ParameterNames: idParam, AllowedRoles: roles,
			Description: "Replace a " + model + " record"},
		{Method: "PATCH", Path: item, Handler: "update", ParameterNames: idParam, AllowedRoles: roles,
			Description: "Update a " + model + " record"},
		{Method: "DELETE", Path: item, Handler: "delete", ParameterNames: idParam, AllowedRoles: roles,
			Description: "Delete a " + model + " record"},
	}
}
