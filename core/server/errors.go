package server

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types emitted by the request pipeline. The set is closed: the HTTP
// status of a response is a function of the type, never of the message.
const (
	ErrTypeRouteNotFound    = "route_not_found"
	ErrTypeInvalidRoute     = "invalid_route_definition"
	ErrTypeMissingParameter = "missing_parameter"
	ErrTypeBadRequest       = "bad_request"
	ErrTypeUnauthenticated  = "unauthenticated"
	ErrTypeForbidden        = "forbidden"
	ErrTypeHandler          = "handler_error"
	ErrTypeCanceled         = "request_canceled"
	ErrTypeDatabase         = "database_error"
	ErrTypeConfig           = "config_error"
	ErrTypeInternal         = "internal_error"
)

// StatusCanceled is the 499-style status used when the client goes away or
// the per-request deadline fires before the handler finishes.
const StatusCanceled = 499

// ServerError is the structured error carried through the pipeline.
type ServerError struct {
	Type       string         // error type category
	Message    string         // human-readable message
	Op         string         // operation that failed
	StatusCode int            // HTTP status code
	Context    map[string]any // extra serialized context (required_action etc.)
	Err        error          // original error
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s failed: %v", e.Type, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %s", e.Type, e.Op, e.Message)
}

// Unwrap returns the wrapped error.
func (e *ServerError) Unwrap() error {
	return e.Err
}

// WithContext attaches a serializable context entry to the error.
func (e *ServerError) WithContext(key string, value any) *ServerError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newError(errType, op, message string, status int, err error) *ServerError {
	return &ServerError{
		Type:       errType,
		Message:    message,
		Op:         op,
		StatusCode: status,
		Err:        err,
	}
}

// NewRouteNotFoundError is returned when no registered route matches.
func NewRouteNotFoundError(op, message string) *ServerError {
	return newError(ErrTypeRouteNotFound, op, message, http.StatusNotFound, nil)
}

// NewInvalidRouteError rejects a route definition during discovery. It is
// fatal at startup, never at request time.
func NewInvalidRouteError(op, message string, err error) *ServerError {
	return newError(ErrTypeInvalidRoute, op, message, http.StatusInternalServerError, err)
}

// NewMissingParameterError signals an absent required path parameter.
func NewMissingParameterError(op, parameter string) *ServerError {
	e := newError(ErrTypeMissingParameter, op, fmt.Sprintf("missing required parameter %q", parameter), http.StatusBadRequest, nil)
	return e.WithContext("parameter", parameter)
}

// NewBadRequestError signals a malformed request.
func NewBadRequestError(op, message string, err error) *ServerError {
	return newError(ErrTypeBadRequest, op, message, http.StatusBadRequest, err)
}

// NewUnauthenticatedError is returned when a protected route is called
// without credentials.
func NewUnauthenticatedError(op, message string) *ServerError {
	return newError(ErrTypeUnauthenticated, op, message, http.StatusUnauthorized, nil)
}

// NewForbiddenError is returned when the caller's roles lack the required
// action on the component.
func NewForbiddenError(op, message string) *ServerError {
	return newError(ErrTypeForbidden, op, message, http.StatusForbidden, nil)
}

// NewHandlerError wraps an error surfaced by a handler, preserving the
// status it asked for.
func NewHandlerError(op, message string, status int, err error) *ServerError {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return newError(ErrTypeHandler, op, message, status, err)
}

// NewCanceledError is returned when the request context ends before the
// handler does.
func NewCanceledError(op string, err error) *ServerError {
	return newError(ErrTypeCanceled, op, "request canceled", StatusCanceled, err)
}

// NewDatabaseError wraps a storage failure.
func NewDatabaseError(op, message string, err error) *ServerError {
	return newError(ErrTypeDatabase, op, message, http.StatusInternalServerError, err)
}

// NewConfigError signals an invalid gateway configuration.
func NewConfigError(op, message string, err error) *ServerError {
	return newError(ErrTypeConfig, op, message, 0, err)
}

// NewInternalError wraps anything uncaught.
func NewInternalError(op, message string, err error) *ServerError {
	return newError(ErrTypeInternal, op, message, http.StatusInternalServerError, err)
}

// IsErrorType checks whether err is a ServerError of the given type.
func IsErrorType(err error, errorType string) bool {
	var srvErr *ServerError
	if errors.As(err, &srvErr) {
		return srvErr.Type == errorType
	}
	return false
}

// IsRouteNotFound checks for a registry miss.
func IsRouteNotFound(err error) bool {
	return IsErrorType(err, ErrTypeRouteNotFound)
}

// IsForbidden checks for an authorization denial.
func IsForbidden(err error) bool {
	return IsErrorType(err, ErrTypeForbidden)
}

// IsUnauthenticated checks for a missing-credentials denial.
func IsUnauthenticated(err error) bool {
	return IsErrorType(err, ErrTypeUnauthenticated)
}

// StatusOf maps any error onto its HTTP status. Plain errors are internal.
func StatusOf(err error) int {
	var srvErr *ServerError
	if errors.As(err, &srvErr) && srvErr.StatusCode > 0 {
		return srvErr.StatusCode
	}
	return http.StatusInternalServerError
}
