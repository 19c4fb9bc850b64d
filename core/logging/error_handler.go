package logging

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gridkit-dev/pb-gridkit/core/formatter"
	"github.com/gridkit-dev/pb-gridkit/core/monitoring"
	"github.com/gridkit-dev/pb-gridkit/core/server"

	"github.com/pocketbase/pocketbase/core"
)

// SetupErrorHandler binds the global error middleware: every error escaping
// a handler is logged and serialized into the uniform error envelope.
func SetupErrorHandler(app core.App, e *core.ServeEvent, expose bool) {
	e.Router.BindFunc(func(c *core.RequestEvent) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		traceID := c.Request.Header.Get(TraceIDHeader)
		status, envelope := formatter.FormatError(err, traceID, expose)

		logger := app.Logger()
		logArgs := []any{
			"trace_id", traceID,
			"status_code", status,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"error", err.Error(),
		}

		var srvErr *server.ServerError
		if errors.As(err, &srvErr) {
			logArgs = append(logArgs, "error_type", srvErr.Type, "operation", srvErr.Op)
		}

		if status >= http.StatusInternalServerError {
			logger.Error("Request error", logArgs...)
		} else {
			logger.Warn("Request rejected", logArgs...)
		}

		return c.JSON(status, envelope)
	})
}

// HandleContextErrors normalizes context-related errors before they reach
// the error middleware.
func HandleContextErrors(ctx context.Context, err error, op string) error {
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return server.NewCanceledError(op, ctx.Err())
	}

	var monErr *monitoring.MonitoringError
	if errors.As(err, &monErr) {
		return err
	}

	var srvErr *server.ServerError
	if errors.As(err, &srvErr) {
		return err
	}

	return server.NewInternalError(op, "unexpected error occurred", err)
}

// RecoverFromPanic recovers from panics and writes a 500 envelope.
func RecoverFromPanic(app core.App, c *core.RequestEvent) {
	if r := recover(); r != nil {
		traceID := c.Request.Header.Get(TraceIDHeader)

		app.Logger().Error("Panic recovered",
			"event", "panic",
			"trace_id", traceID,
			"error", r,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"stack", string(debug.Stack()),
		)

		err := server.NewInternalError("request_handler", "internal server error", nil)
		status, envelope := formatter.FormatError(err, traceID, false)
		_ = c.JSON(status, envelope)
	}
}
