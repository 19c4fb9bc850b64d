package core

import (
	"github.com/gridkit-dev/pb-gridkit/core/gateway"
	"github.com/gridkit-dev/pb-gridkit/core/logging"
	"github.com/gridkit-dev/pb-gridkit/core/server"
)

// Re-export server components
var (
	New             = server.New
	WithConfig      = server.WithConfig
	WithPocketbase  = server.WithPocketbase
	InDeveloperMode = server.InDeveloperMode
)

// Re-export gateway components
var (
	NewGateway           = gateway.New
	DefaultModelRoutes   = gateway.DefaultModelRoutes
	WithPrefix           = gateway.WithPrefix
	ExposeDetailedErrors = gateway.ExposeDetailedErrors
	WithPermissionTable  = gateway.WithPermissionTable
)

// Re-export logging components
var (
	SetupLogging  = logging.SetupLogging
	SetupRecovery = logging.SetupRecovery
)
