package formatter

import (
	"errors"
	"net/http"
	"time"

	"github.com/gridkit-dev/pb-gridkit/core/server"
)

// FormatError serializes any pipeline error into the uniform error
// envelope. When expose is false, 5xx messages are replaced with a
// sanitized placeholder so internals never leak.
func FormatError(err error, traceID string, expose bool) (int, map[string]any) {
	status := server.StatusOf(err)
	errType := server.ErrTypeInternal
	code := ""
	message := "internal server error"
	var context map[string]any

	var srvErr *server.ServerError
	if errors.As(err, &srvErr) {
		errType = srvErr.Type
		code = srvErr.Op
		message = srvErr.Message
		context = srvErr.Context
	} else if err != nil && expose {
		message = err.Error()
	}

	if status >= http.StatusInternalServerError && !expose {
		message = "internal server error"
	}

	body := map[string]any{
		"message": message,
		"type":    errType,
		"code":    code,
	}
	if len(context) > 0 {
		body["context"] = context
	}
	if traceID != "" {
		body["trace_id"] = traceID
	}

	return status, map[string]any{
		"success":   false,
		"status":    status,
		"error":     body,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}
