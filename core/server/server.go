package server

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/gridkit-dev/pb-gridkit/core/monitoring"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Server wraps PocketBase with request statistics and the gateway's
// health endpoint.
type Server struct {
	app      *pocketbase.PocketBase
	stats    *ServerStats
	requests *monitoring.RequestStats
	options  *options
}

// ServerStats tracks server metrics
type ServerStats struct {
	StartTime          time.Time
	TotalRequests      atomic.Uint64
	ActiveConnections  atomic.Int32
	LastRequestTime    atomic.Int64 // Unix timestamp
	TotalErrors        atomic.Uint64
	AverageRequestTime atomic.Int64 // nanoseconds
}

// New creates a server instance. Options args used for precision setup -
// pocketbase.Config and pocketbase.PocketBase instance injection.
func New(create_options ...Option) *Server {
	var (
		opts    *options = &options{healthPath: DefaultHealthPath}
		pb_conf *pocketbase.Config
		pb_app  *pocketbase.PocketBase
	)

	for _, opt := range create_options {
		opt(opts)
	}
	if opts.config != nil {
		pb_conf = opts.config
	} else {
		pb_conf = &pocketbase.Config{
			DefaultDev: opts.developer_mode,
		}
	}

	if opts.pocketbase != nil {
		pb_app = opts.pocketbase
		if opts.developer_mode && !pb_app.App.IsDev() {
			pb_app.Logger().Warn("cannot change developer mode on an already initialized pocketbase.PocketBase instance")
		}
	} else {
		pb_app = pocketbase.NewWithConfig(*pb_conf)
	}

	return &Server{
		app:      pb_app,
		options:  opts,
		requests: monitoring.NewRequestStats(),
		stats: &ServerStats{
			StartTime: time.Now(),
		},
	}
}

// Start initializes and starts the server
func (s *Server) Start() error {
	app := s.app

	app.OnBootstrap().BindFunc(func(e *core.BootstrapEvent) error {
		app.Logger().Info("Server bootstrapping",
			"time", time.Now(),
			"pid", os.Getpid(),
		)

		if err := e.Next(); err != nil {
			return NewInternalError("bootstrap_initialization", "failed to initialize core resources", err)
		}

		app.Logger().Info("Server bootstrap complete",
			"time", time.Now(),
			"pid", os.Getpid(),
			"db_path", app.DataDir(),
		)

		return nil
	})

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		app.Logger().Info("Server initialized",
			"start_time", s.stats.StartTime,
			"pid", os.Getpid(),
			"db_path", app.DataDir(),
		)

		e.Router.BindFunc(func(c *core.RequestEvent) error {
			start := time.Now()
			s.stats.ActiveConnections.Add(1)
			s.stats.TotalRequests.Add(1)

			err := c.Next()

			s.stats.ActiveConnections.Add(-1)
			s.stats.LastRequestTime.Store(time.Now().Unix())

			duration := time.Since(start).Nanoseconds()
			oldAvg := s.stats.AverageRequestTime.Load()
			totalReqs := s.stats.TotalRequests.Load()
			if totalReqs > 1 {
				newAvg := (oldAvg*(int64(totalReqs)-1) + duration) / int64(totalReqs)
				s.stats.AverageRequestTime.Store(newAvg)
			} else {
				s.stats.AverageRequestTime.Store(duration)
			}

			if err != nil {
				s.stats.TotalErrors.Add(1)
			}

			return err
		})

		if !s.options.disableHealth {
			s.RegisterHealthRoute(e)
		}

		return e.Next()
	})

	if err := app.Start(); err != nil {
		return NewInternalError("server_start", "failed to start server", err)
	}
	return nil
}

// App returns the underlying PocketBase instance
func (s *Server) App() *pocketbase.PocketBase {
	return s.app
}

// Stats returns the current server statistics
func (s *Server) Stats() *ServerStats {
	return s.stats
}

// RequestStats returns the per-path and per-dialect request aggregates fed
// by the logging middleware and reported by the health endpoint.
func (s *Server) RequestStats() *monitoring.RequestStats {
	return s.requests
}
