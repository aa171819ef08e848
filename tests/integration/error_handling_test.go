//go:build integration
// +build integration

package integration

import (
	"net/http"
	"testing"
)

func TestUnauthorizedAccess(t *testing.T) {
	resp := makeAuthenticatedRequest(t, http.MethodGet, baseURL()+"/v1/users/me", "", nil)
	var errResp map[string]any
	decodeJSON(t, resp, http.StatusUnauthorized, &errResp)

	if errResp["error"] == nil {
		t.Fatal("error field is missing")
	}
}

func TestInvalidToken(t *testing.T) {
	resp := makeAuthenticatedRequest(t, http.MethodGet, baseURL()+"/v1/quizzes", "not-a-jwt", nil)
	var errResp map[string]any
	decodeJSON(t, resp, http.StatusUnauthorized, &errResp)

	if errResp["error"] != "invalid_token" {
		t.Fatalf("unexpected error code: %v", errResp["error"])
	}
}

func TestForbiddenAccess(t *testing.T) {
	// The first account on a fresh database is an admin, so make sure this one is not the first.
	_ = createRegisteredUser(t, uniqueEmail("first"), "testpassword123")
	learner := createRegisteredUser(t, uniqueEmail("learner"), "testpassword123")
	if learner.IsAdmin {
		t.Skip("database was empty; learner became admin")
	}

	resp := makeAuthenticatedRequest(t, http.MethodGet, baseURL()+"/v1/admin/dashboard", learner.AccessToken, nil)
	var errResp map[string]any
	decodeJSON(t, resp, http.StatusForbidden, &errResp)

	if errResp["error"] != "admin_required" {
		t.Fatalf("unexpected error code: %v", errResp["error"])
	}
}

func TestValidationErrors(t *testing.T) {
	resp := makeAuthenticatedRequest(t, http.MethodPost, baseURL()+"/v1/auth/register", "", map[string]string{
		"name":     "X",
		"email":    "not-an-email",
		"password": "123",
	})
	var errResp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decodeJSON(t, resp, http.StatusBadRequest, &errResp)

	for _, field := range []string{"name", "email", "password"} {
		if errResp.Fields[field] == "" {
			t.Fatalf("expected a message for %s, got %v", field, errResp.Fields)
		}
	}
}

func TestUnknownSession(t *testing.T) {
	user := createRegisteredUser(t, uniqueEmail("nosession"), "testpassword123")

	resp := makeAuthenticatedRequest(t, http.MethodGet, baseURL()+"/v1/sessions/00000000-0000-4000-8000-000000000000", user.AccessToken, nil)
	var errResp map[string]any
	decodeJSON(t, resp, http.StatusNotFound, &errResp)
	if errResp["error"] != "session_not_found" {
		t.Fatalf("unexpected error code: %v", errResp["error"])
	}
}
