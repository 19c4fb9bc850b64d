package gateway

import (
	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/gridkit-dev/pb-gridkit/core/router"
	"github.com/gridkit-dev/pb-gridkit/core/server"
	"github.com/gridkit-dev/pb-gridkit/core/validator"
)

// SystemController serves the gateway's introspection routes: the route
// catalog and the per-model filter and search capabilities clients use to
// build their grids.
type SystemController struct {
	gw *Gateway
}

func newSystemController(gw *Gateway) *SystemController {
	return &SystemController{gw: gw}
}

func (c *SystemController) Name() string {
	return "SystemController"
}

// Routes declares the public introspection endpoints.
func (c *SystemController) Routes() []metadata.RouteDeclaration {
	return []metadata.RouteDeclaration{
		{
			Method:       "GET",
			Path:         "/catalog",
			Handler:      "catalog",
			AllowedRoles: []string{"*"},
			Description:  "Registered routes and model capabilities",
		},
		{
			Method:         "GET",
			Path:           "/catalog/?",
			Handler:        "modelCatalog",
			ParameterNames: []string{"", "model"},
			AllowedRoles:   []string{"*"},
			Description:    "Capabilities of a single model",
		},
	}
}

func (c *SystemController) Handlers() map[string]router.HandlerFunc {
	return map[string]router.HandlerFunc{
		"catalog":      c.catalog,
		"modelCatalog": c.modelCatalog,
	}
}

// catalog lists every registered route plus the capability catalog of every
// registered model.
func (c *SystemController) catalog(req *router.Request) (any, error) {
	registry := c.gw.router.Registry()

	routes := make([]map[string]any, 0, registry.Len())
	for _, route := range registry.Routes() {
		routes = append(routes, map[string]any{
			"method":      route.Method,
			"path":        route.Path,
			"handler":     route.HandlerID(),
			"model":       route.Model,
			"public":      route.Public(),
			"description": route.Description,
		})
	}

	models := make(map[string]any, len(c.gw.provider.ModelNames()))
	for _, name := range c.gw.provider.ModelNames() {
		model, err := c.gw.provider.Model(name)
		if err != nil {
			continue
		}
		models[name] = modelCapabilities(model)
	}

	return map[string]any{
		"routes": routes,
		"models": models,
	}, nil
}

// modelCatalog returns the capability catalog of one registered model.
func (c *SystemController) modelCatalog(req *router.Request) (any, error) {
	name := req.Param("model")
	model, err := c.gw.provider.Model(name)
	if err != nil {
		return nil, server.NewRouteNotFoundError("model_catalog", "unknown model "+name)
	}
	return modelCapabilities(model), nil
}

func modelCapabilities(model *metadata.Model) map[string]any {
	return map[string]any{
		"name":             model.Name,
		"displayName":      model.DisplayName,
		"filterableFields": validator.SupportedFilters(model),
		"searchableFields": validator.SearchableFields(model),
	}
}
