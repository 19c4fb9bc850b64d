package logging

import (
	"context"
	"os"
	"time"

	"github.com/gridkit-dev/pb-gridkit/core/monitoring"
	"github.com/gridkit-dev/pb-gridkit/core/server"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"
)

const (
	// TraceIDHeader carries the per-request trace id on both request and
	// response.
	TraceIDHeader = "X-Trace-ID"
	RequestIDKey  = "request_id"
)

// shouldExcludeFromLogging returns true if the path should be excluded from
// request logging and metrics.
func shouldExcludeFromLogging(path string) bool {
	return path == "/service-worker.js" || path == "/favicon.ico" || path == "/manifest.json"
}

// InfoWithContext logs an info message with context data using PocketBase's logger
func InfoWithContext(ctx context.Context, app core.App, message string, data map[string]any) {
	logger := app.Logger()

	if ctx != nil {
		if id, ok := ctx.Value(RequestIDKey).(string); ok {
			logger = logger.With("request_id", id)
		}
	}

	for key, value := range data {
		logger = logger.With(key, value)
	}

	logger.Info(message)
}

// ErrorWithContext logs an error message with context data using PocketBase's logger
func ErrorWithContext(ctx context.Context, app core.App, message string, err error, data map[string]any) {
	logger := app.Logger()

	if ctx != nil {
		if id, ok := ctx.Value(RequestIDKey).(string); ok {
			logger = logger.With("request_id", id)
		}
	}

	if err != nil {
		logger = logger.With("error", err.Error())
	}

	for key, value := range data {
		logger = logger.With(key, value)
	}

	logger.Error(message)
}

// SetupLogging wires the trace-id middleware, per-request metrics and the
// global error handler. The expose flag controls whether 5xx messages keep
// their detail in responses.
func SetupLogging(srv *server.Server, expose bool) {
	app := srv.App()
	requestStats := srv.RequestStats()

	appLogger := app.Logger().With(
		"pid", os.Getpid(),
		"start_time", time.Now().Format(time.RFC3339),
	)

	appLogger.Info("Application starting up",
		"event", "app_startup",
	)

	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		appLogger.Info("Application shutting down",
			"event", "app_shutdown",
			"is_restart", e.IsRestart,
			"uptime", time.Since(srv.Stats().StartTime).Round(time.Second).String(),
			"total_requests", srv.Stats().TotalRequests.Load(),
			"avg_request_time_ns", srv.Stats().AverageRequestTime.Load(),
		)
		return e.Next()
	})

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		SetupErrorHandler(app, e, expose)

		e.Router.BindFunc(func(c *core.RequestEvent) error {
			defer func() {
				RecoverFromPanic(app, c)
			}()

			traceID := uuid.NewString()
			c.Request.Header.Set(TraceIDHeader, traceID)
			c.Response.Header().Set(TraceIDHeader, traceID)

			start := time.Now()

			err := c.Next()

			duration := time.Since(start)
			path := c.Request.URL.Path

			if !shouldExcludeFromLogging(path) {
				statusCode := 200
				if err != nil {
					statusCode = server.StatusOf(err)
				}
				dialect, _ := c.Get(monitoring.DialectEventKey).(string)
				requestStats.TrackRequest(monitoring.RequestMetrics{
					Path:          path,
					Method:        c.Request.Method,
					StatusCode:    statusCode,
					Duration:      duration,
					Timestamp:     start,
					UserAgent:     c.Request.UserAgent(),
					ContentLength: c.Request.ContentLength,
					RemoteAddr:    c.Request.RemoteAddr,
					Dialect:       dialect,
				})

				app.Logger().WithGroup("request").Debug("Request processed",
					"event", "http_request",
					"trace_id", traceID,
					"method", c.Request.Method,
					"path", path,
					"duration", monitoring.FormatDuration(duration),
					"ip", c.Request.RemoteAddr,
					"request_rate", requestStats.GetRequestRate(),
				)
			}

			return err
		})
		return e.Next()
	})
}

// SetupRecovery configures panic recovery on its own, for callers not using
// SetupLogging.
func SetupRecovery(app core.App, e *core.ServeEvent) {
	e.Router.BindFunc(func(c *core.RequestEvent) error {
		defer func() {
			RecoverFromPanic(app, c)
		}()
		return c.Next()
	})
}
