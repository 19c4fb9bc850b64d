package main

import (
	"log"
	"os"

	"github.com/gridkit-dev/pb-gridkit/core/gateway"
	"github.com/gridkit-dev/pb-gridkit/core/logging"
	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/gridkit-dev/pb-gridkit/core/server"
)

func main() {
	initApp()
}

func initApp() {
	// Create new server instance
	srv := server.New()

	devMode := os.Getenv("GRIDKIT_DEV") != ""

	// Setup logging, error envelope middleware and panic recovery
	logging.SetupLogging(srv, devMode)

	// Seed demo collections before the gateway resolves their metadata
	registerCollections(srv.App())

	// Assemble the gateway: two grid-backed models plus a custom controller
	gw := buildGateway(srv, devMode)
	gw.Mount()

	srv.App().RootCmd.SetArgs([]string{"serve"})

	if err := srv.Start(); err != nil {
		srv.App().Logger().Error("Fatal application error",
			"error", err,
			"uptime", srv.Stats().StartTime,
			"total_requests", srv.Stats().TotalRequests.Load(),
		)
		log.Fatal(err)
	}
}

func buildGateway(srv *server.Server, devMode bool) *gateway.Gateway {
	opts := []gateway.Option{
		gateway.WithPermissionTable(),
	}
	if devMode {
		opts = append(opts, gateway.ExposeDetailedErrors())
	}

	gw := gateway.New(srv.App(), opts...)

	// Public product catalog: anyone may list and read, editors manage.
	gw.RegisterModel(metadata.ModelSpec{
		Name:        "products",
		DisplayName: "Products",
		RolesAndActions: map[string][]string{
			"editor": {"create", "update", "delete"},
			"viewer": {"list", "read"},
		},
		Routes: publicReadRoutes("products", "editor"),
	})

	// Orders are fully protected.
	gw.RegisterModel(metadata.ModelSpec{
		Name:        "orders",
		DisplayName: "Orders",
		RolesAndActions: map[string][]string{
			"editor": {"*"},
			"viewer": {"list", "read"},
		},
		Routes: gateway.DefaultModelRoutes("orders", "editor", "viewer"),
	})

	gw.RegisterController(NewReportController())
	gw.Grant("ReportController", map[string][]string{
		"editor": {"read"},
		"viewer": {"read"},
	})

	return gw
}

// publicReadRoutes opens the list and read routes while keeping the write
// routes protected, subject to the permission grants.
func publicReadRoutes(model string, writerRoles ...string) []metadata.RouteDeclaration {
	routes := gateway.DefaultModelRoutes(model, writerRoles...)
	for i := range routes {
		if routes[i].Handler == "list" || routes[i].Handler == "read" {
			routes[i].AllowedRoles = []string{"*"}
		}
	}
	return routes
}
