package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/gridkit-dev/pb-gridkit/core/server"
)

// Registry is the immutable route index built once at startup. Routes are
// grouped by (method, path length) for the primary lookup pass, with a
// per-method flat list for the trailing-wildcard fallback pass. Hot reload
// swaps the whole registry reference, never mutates it.
type Registry struct {
	byMethodLen map[string]map[int][]*Route
	byMethod    map[string][]*Route
	controllers map[string]Controller
	routes      []*Route
}

// BuildRegistry discovers routes from explicit controller route tables and
// from registered model metadata, validates each declaration and indexes
// the survivors. Any invalid declaration fails the build.
func BuildRegistry(controllers []Controller, models []*metadata.Model) (*Registry, error) {
	reg := &Registry{
		byMethodLen: make(map[string]map[int][]*Route),
		byMethod:    make(map[string][]*Route),
		controllers: make(map[string]Controller, len(controllers)),
	}

	for _, ctrl := range controllers {
		if ctrl.Name() == "" {
			return nil, server.NewInvalidRouteError("build_registry", "controller with empty name", nil)
		}
		if _, dup := reg.controllers[ctrl.Name()]; dup {
			return nil, server.NewInvalidRouteError("build_registry",
				fmt.Sprintf("duplicate controller %q", ctrl.Name()), nil)
		}
		reg.controllers[ctrl.Name()] = ctrl
	}

	// controller-declared route tables
	for _, ctrl := range sortedControllers(reg.controllers) {
		for _, decl := range ctrl.Routes() {
			target := ctrl
			if decl.Controller != "" && decl.Controller != ctrl.Name() {
				resolved, err := reg.resolveController(decl.Controller, "")
				if err != nil {
					return nil, err
				}
				target = resolved
			}
			route, err := compileRoute(decl, target, "")
			if err != nil {
				return nil, err
			}
			reg.add(route)
		}
	}

	// model-declared api routes
	for _, model := range models {
		for _, decl := range model.Routes {
			ctrl, err := reg.resolveController(decl.Controller, model.Name)
			if err != nil {
				return nil, err
			}
			route, err := compileRoute(decl, ctrl, model.Name)
			if err != nil {
				return nil, err
			}
			reg.add(route)
		}
	}

	return reg, nil
}

// resolveController finds the handler class for a declaration. Resolution
// order: exact registered name, the <Model>Controller convention, then a
// case-insensitive scan over everything discovered so far.
func (r *Registry) resolveController(name, model string) (Controller, error) {
	if name != "" {
		if ctrl, ok := r.controllers[name]; ok {
			return ctrl, nil
		}
	}
	if model != "" {
		if ctrl, ok := r.controllers[model+"Controller"]; ok {
			return ctrl, nil
		}
	}
	if name != "" {
		for registered, ctrl := range r.controllers {
			if strings.EqualFold(registered, name) {
				return ctrl, nil
			}
		}
	}
	return nil, server.NewInvalidRouteError("resolve_controller",
		fmt.Sprintf("cannot resolve controller %q (model %q)", name, model), nil)
}

func (r *Registry) add(route *Route) {
	if r.byMethodLen[route.Method] == nil {
		r.byMethodLen[route.Method] = make(map[int][]*Route)
	}
	length := len(route.Components)
	r.byMethodLen[route.Method][length] = append(r.byMethodLen[route.Method][length], route)
	r.byMethod[route.Method] = append(r.byMethod[route.Method], route)
	r.routes = append(r.routes, route)
}

// FindBest returns the best-scoring route for a concrete method and path,
// or nil when nothing matches. The primary pass scores the (method, length)
// bucket; the fallback pass scans every route of the method and lets a
// terminal wildcard absorb extra trailing segments.
func (r *Registry) FindBest(method, path string) *Route {
	client := SplitPath(path)

	if bucket := r.byMethodLen[method][len(client)]; len(bucket) > 0 {
		if route, score := bestMatch(client, bucket); score > 0 {
			return route
		}
	}

	var best *Route
	bestScore := 0
	for _, route := range r.byMethod[method] {
		score := Score(client, route.Components)
		if score == 0 {
			score = scoreTrailingWildcard(client, route)
		}
		if score > bestScore {
			best, bestScore = route, score
		}
	}
	return best
}

// Routes returns every registered route ordered by path then method, for
// the catalog endpoint.
func (r *Registry) Routes() []*Route {
	routes := make([]*Route, len(r.routes))
	copy(routes, r.routes)
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	return routes
}

// Len returns the number of registered routes.
func (r *Registry) Len() int {
	return len(r.routes)
}

func sortedControllers(m map[string]Controller) []Controller {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Controller, 0, len(names))
	for _, name := range names {
		out = append(out, m[name])
	}
	return out
}
