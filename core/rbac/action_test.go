package rbac

import (
	"testing"
)

func TestActionForRoute(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		components []string
		explicit   string
		want       string
	}{
		{"explicit wins", "GET", []string{"users"}, "approve", "approve"},
		{"get collection is list", "GET", []string{"users"}, "", ActionList},
		{"get terminal wildcard is read", "GET", []string{"users", "?"}, "", ActionRead},
		{"get numeric id is read", "GET", []string{"users", "123"}, "", ActionRead},
		{"get record id is read", "GET", []string{"users", "a1b2c3d4e5f6g7h"}, "", ActionRead},
		{"get short segment is list", "GET", []string{"users", "export"}, "", ActionList},
		{"post is create", "POST", []string{"users"}, "", ActionCreate},
		{"put is update", "PUT", []string{"users", "?"}, "", ActionUpdate},
		{"patch is update", "PATCH", []string{"users", "?"}, "", ActionUpdate},
		{"delete is delete", "DELETE", []string{"users", "?"}, "", ActionDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActionForRoute(tt.method, tt.components, tt.explicit)
			if got != tt.want {
				t.Errorf("ActionForRoute(%s, %v, %q) = %q, want %q",
					tt.method, tt.components, tt.explicit, got, tt.want)
			}
		})
	}
}

func TestComponentForRoute(t *testing.T) {
	tests := []struct {
		name       string
		model      string
		controller string
		components []string
		want       string
	}{
		{"model wins", "users", "UsersController", []string{"users", "?"}, "users"},
		{"plain controller", "", "ReportController", []string{"reports", "sales"}, "ReportController"},
		{"no controller falls back to segment", "", "", []string{"api", "v1", "users"}, "users"},
		{"all generic keeps controller", "", "SystemController", []string{"api", "v1"}, "SystemController"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComponentForRoute(tt.model, tt.controller, tt.components)
			if got != tt.want {
				t.Errorf("ComponentForRoute(%q, %q, %v) = %q, want %q",
					tt.model, tt.controller, tt.components, got, tt.want)
			}
		})
	}
}
