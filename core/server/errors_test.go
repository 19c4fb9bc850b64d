package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorTaxonomyStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"route not found", NewRouteNotFoundError("match", "no route"), http.StatusNotFound},
		{"invalid route", NewInvalidRouteError("compile", "bad decl", nil), http.StatusInternalServerError},
		{"missing parameter", NewMissingParameterError("extract", "id"), http.StatusBadRequest},
		{"bad request", NewBadRequestError("parse", "bad body", nil), http.StatusBadRequest},
		{"unauthenticated", NewUnauthenticatedError("authorize", "no auth"), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("authorize", "denied"), http.StatusForbidden},
		{"handler default", NewHandlerError("list", "boom", 0, nil), http.StatusInternalServerError},
		{"handler explicit", NewHandlerError("create", "conflict", http.StatusConflict, nil), http.StatusConflict},
		{"canceled", NewCanceledError("dispatch", nil), StatusCanceled},
		{"database", NewDatabaseError("query", "locked", nil), http.StatusInternalServerError},
		{"internal", NewInternalError("panic", "boom", nil), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsErrorType(t *testing.T) {
	err := NewForbiddenError("authorize", "denied")

	if !IsErrorType(err, ErrTypeForbidden) || !IsForbidden(err) {
		t.Error("forbidden error not recognized")
	}
	if IsErrorType(err, ErrTypeRouteNotFound) {
		t.Error("type confusion")
	}

	wrapped := fmt.Errorf("pipeline: %w", err)
	if !IsForbidden(wrapped) {
		t.Error("errors.As must see through wrapping")
	}

	if IsErrorType(errors.New("boom"), ErrTypeInternal) {
		t.Error("plain errors carry no type")
	}
	if IsRouteNotFound(nil) || IsUnauthenticated(nil) {
		t.Error("nil is not an error type")
	}
}

func TestServerErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewDatabaseError("save", "write failed", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause lost")
	}
	if err.Error() == "" {
		t.Error("empty message")
	}
}

func TestWithContext(t *testing.T) {
	err := NewForbiddenError("authorize", "denied").
		WithContext("component", "users").
		WithContext("required_action", "delete")

	if err.Context["component"] != "users" || err.Context["required_action"] != "delete" {
		t.Errorf("context = %v", err.Context)
	}
}
