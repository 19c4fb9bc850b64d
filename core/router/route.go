package router

import (
	"fmt"
	"net/http"

	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/gridkit-dev/pb-gridkit/core/server"
)

// allowedMethods is the closed set of HTTP methods a route may declare.
var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

// HandlerFunc is the signature every pipeline handler implements. The
// returned value is handed to the response formatter; returning a
// *formatter.Result carries totals and status alongside the data.
type HandlerFunc func(*Request) (any, error)

// Controller exposes a route table and named handlers to the registry.
// Implementations register themselves with the gateway before startup.
type Controller interface {
	Name() string
	Routes() []metadata.RouteDeclaration
	Handlers() map[string]HandlerFunc
}

// Route is the compiled, immutable form of a validated route declaration.
type Route struct {
	Method         string
	Path           string
	Components     []string
	ParameterNames []string
	ControllerName string
	HandlerName    string
	Handler        HandlerFunc
	AllowedRoles   []string
	Action         string // explicit RBAC action, empty for the method mapping
	Model          string // backing model name, empty for plain controllers
	Description    string
}

// Public reports whether the route skips authorization: no allowed roles,
// or a "*" entry.
func (r *Route) Public() bool {
	if len(r.AllowedRoles) == 0 {
		return true
	}
	for _, role := range r.AllowedRoles {
		if role == "*" {
			return true
		}
	}
	return false
}

// HandlerID identifies the bound handler for logging.
func (r *Route) HandlerID() string {
	return r.ControllerName + "." + r.HandlerName
}

// compileRoute validates a declaration against its resolved controller and
// produces the immutable route. Any defect is an invalid-route error, which
// fails startup.
func compileRoute(decl metadata.RouteDeclaration, ctrl Controller, model string) (*Route, error) {
	if decl.Method == "" || decl.Path == "" || decl.Handler == "" {
		return nil, server.NewInvalidRouteError("compile_route",
			fmt.Sprintf("route %s %s: method, path and handler are required", decl.Method, decl.Path), nil)
	}
	if !allowedMethods[decl.Method] {
		return nil, server.NewInvalidRouteError("compile_route",
			fmt.Sprintf("route %s %s: method not allowed", decl.Method, decl.Path), nil)
	}
	if decl.Path[0] != '/' {
		return nil, server.NewInvalidRouteError("compile_route",
			fmt.Sprintf("route %s %s: path must start with /", decl.Method, decl.Path), nil)
	}

	handler, ok := ctrl.Handlers()[decl.Handler]
	if !ok {
		return nil, server.NewInvalidRouteError("compile_route",
			fmt.Sprintf("route %s %s: controller %q has no handler %q", decl.Method, decl.Path, ctrl.Name(), decl.Handler), nil)
	}

	components := SplitPath(decl.Path)
	names := decl.ParameterNames
	if names == nil {
		names = make([]string, len(components))
	}
	if len(names) != len(components) {
		return nil, server.NewInvalidRouteError("compile_route",
			fmt.Sprintf("route %s %s: %d parameter names for %d path components", decl.Method, decl.Path, len(names), len(components)), nil)
	}

	return &Route{
		Method:         decl.Method,
		Path:           decl.Path,
		Components:     components,
		ParameterNames: append([]string{}, names...),
		ControllerName: ctrl.Name(),
		HandlerName:    decl.Handler,
		Handler:        handler,
		AllowedRoles:   append([]string{}, decl.AllowedRoles...),
		Action:         decl.Action,
		Model:          model,
		Description:    decl.Description,
	}, nil
}
