// Package gateway assembles the request-resolution pipeline on top of a
// PocketBase app: model registration, route discovery, the authorization
// gate and the catch-all mount that feeds every request through the router.
package gateway

import (
	"log/slog"
	"sync"

	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/gridkit-dev/pb-gridkit/core/rbac"
	"github.com/gridkit-dev/pb-gridkit/core/router"
	"github.com/gridkit-dev/pb-gridkit/core/server"
	"github.com/pocketbase/pocketbase/core"
)

// DefaultPrefix is where the pipeline mounts unless overridden.
const DefaultPrefix = "/api/grid"

// Gateway owns the registered model specs and controllers and mounts the
// pipeline during the serve event.
type Gateway struct {
	app core.App
	log *slog.Logger

	mu          sync.Mutex
	specs       map[string]metadata.ModelSpec
	controllers []router.Controller
	grants      map[string]map[string][]string

	provider *collectionProvider
	router   *router.Router

	prefix             string
	exposeErrors       bool
	usePermissionTable bool
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithPrefix changes the mount point of the pipeline.
func WithPrefix(prefix string) Option {
	return func(g *Gateway) {
		if prefix != "" {
			g.prefix = prefix
		}
	}
}

// ExposeDetailedErrors keeps 5xx error detail in responses. Meant for
// development; defaults to off.
func ExposeDetailedErrors() Option {
	return func(g *Gateway) {
		g.exposeErrors = true
	}
}

// WithPermissionTable chains the permissions collection behind the static
// spec grants, so operators can add grants at runtime.
func WithPermissionTable() Option {
	return func(g *Gateway) {
		g.usePermissionTable = true
	}
}

// New creates a gateway bound to app. Call RegisterModel/RegisterController
// before Mount; the registry is built once the serve event fires.
func New(app core.App, opts ...Option) *Gateway {
	g := &Gateway{
		app:    app,
		log:    app.Logger(),
		specs:  make(map[string]metadata.ModelSpec),
		grants: make(map[string]map[string][]string),
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ExposesDetailedErrors reports the error-detail mode, for wiring the
// global error middleware.
func (g *Gateway) ExposesDetailedErrors() bool {
	return g.exposeErrors
}

// Prefix returns the pipeline mount point.
func (g *Gateway) Prefix() string {
	return g.prefix
}

// Router returns the pipeline router, nil before Mount completes.
func (g *Gateway) Router() *router.Router {
	return g.router
}

// RegisterModel adds a model spec. Registering the same name twice replaces
// the earlier spec.
func (g *Gateway) RegisterModel(spec metadata.ModelSpec) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.specs[spec.Name] = spec
}

// RegisterController adds a custom controller discovered at registry build.
func (g *Gateway) RegisterController(ctrl router.Controller) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.controllers = append(g.controllers, ctrl)
}

// Grant adds static permission grants for a non-model component, typically
// a custom controller's identifier.
func (g *Gateway) Grant(component string, rolesAndActions map[string][]string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.grants[component] = rolesAndActions
}

// Mount binds the pipeline to the serve event: ensures the permissions
// collection when enabled, builds the registry and attaches the catch-all
// routes under the prefix.
func (g *Gateway) Mount() {
	g.app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		if g.usePermissionTable {
			if err := g.ensurePermissionsCollection(); err != nil {
				return server.NewConfigError("mount_gateway", "cannot ensure permissions collection", err)
			}
		}

		if err := g.build(); err != nil {
			return err
		}

		group := e.Router.Group(g.prefix)
		group.GET("/{path...}", g.router.Handle)
		group.POST("/{path...}", g.router.Handle)
		group.PUT("/{path...}", g.router.Handle)
		group.PATCH("/{path...}", g.router.Handle)
		group.DELETE("/{path...}", g.router.Handle)

		g.log.Info("gateway mounted",
			"prefix", g.prefix,
			"routes", g.router.Registry().Len(),
			"models", len(g.specs),
		)
		return e.Next()
	})
}

// Reload rebuilds the registry from the current registrations and swaps it
// in without dropping in-flight requests.
func (g *Gateway) Reload() error {
	if g.router == nil {
		return server.NewConfigError("reload_gateway", "gateway is not mounted", nil)
	}
	g.provider.invalidate()
	registry, err := g.buildRegistry()
	if err != nil {
		return err
	}
	g.router.SwapRegistry(registry)
	g.log.Info("gateway registry reloaded", "routes", registry.Len())
	return nil
}

func (g *Gateway) build() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.provider = newCollectionProvider(g.app, g.specs)

	registry, err := g.buildRegistry()
	if err != nil {
		return err
	}

	gate := rbac.NewGate(g.permissionStore(), g.log)
	g.router = router.New(registry, gate, g.provider, g.prefix, g.log)
	return nil
}

// buildRegistry assembles the controller set: the registered custom
// controllers, one generic CRUD controller per model and the system
// controller, then discovers routes from their tables and the model specs.
func (g *Gateway) buildRegistry() (*router.Registry, error) {
	registered := make(map[string]bool)
	controllers := make([]router.Controller, 0, len(g.controllers)+len(g.specs)+1)
	for _, ctrl := range g.controllers {
		controllers = append(controllers, ctrl)
		registered[ctrl.Name()] = true
	}

	models := make([]*metadata.Model, 0, len(g.specs))
	for _, name := range g.provider.ModelNames() {
		model, err := g.provider.Model(name)
		if err != nil {
			return nil, server.NewConfigError("build_registry", "cannot load model "+name, err)
		}
		models = append(models, model)

		generic := NewModelController(name, g.log)
		if !registered[generic.Name()] {
			controllers = append(controllers, generic)
			registered[generic.Name()] = true
		}
	}

	sys := newSystemController(g)
	if !registered[sys.Name()] {
		controllers = append(controllers, sys)
	}

	return router.BuildRegistry(controllers, models)
}

// permissionStore builds the gate's store: static grants from the specs,
// optionally chained with the permissions collection.
func (g *Gateway) permissionStore() rbac.PermissionStore {
	static := rbac.NewStaticPermissions()
	for name, spec := range g.specs {
		static.GrantModel(name, spec.RolesAndActions)
	}
	for component, rolesAndActions := range g.grants {
		static.GrantModel(component, rolesAndActions)
	}
	if !g.usePermissionTable {
		return static
	}
	return rbac.ChainPermissions{static, rbac.NewCollectionPermissions(g.app)}
}

// ensurePermissionsCollection creates the permissions collection on first
// run so the runtime store has something to query.
func (g *Gateway) ensurePermissionsCollection() error {
	if existing, _ := g.app.FindCollectionByNameOrId(rbac.PermissionCollection); existing != nil {
		return nil
	}

	collection := core.NewBaseCollection(rbac.PermissionCollection)
	collection.Fields.Add(&core.TextField{
		Name:     "component",
		Required: true,
		Max:      200,
	})
	collection.Fields.Add(&core.TextField{
		Name:     "action",
		Required: true,
		Max:      50,
	})
	collection.Fields.Add(&core.TextField{
		Name:     "role",
		Required: true,
		Max:      100,
	})
	collection.Fields.Add(&core.AutodateField{
		Name:     "created",
		OnCreate: true,
	})
	collection.AddIndex("idx_permissions_lookup", false, "component, action, role", "")

	if err := g.app.Save(collection); err != nil {
		return err
	}
	g.log.Info("created permissions collection")
	return nil
}
