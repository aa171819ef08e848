//go:build integration
// +build integration

package integration

import (
	"net/http"
	"testing"
)

func TestRegisterFlow(t *testing.T) {
	user := createRegisteredUser(t, uniqueEmail("register"), "testpassword123")

	if user.ID == "" {
		t.Fatal("user ID is empty")
	}
	if user.AccessToken == "" || user.RefreshToken == "" {
		t.Fatal("token pair is incomplete")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	email := uniqueEmail("dup")
	_ = createRegisteredUser(t, email, "testpassword123")

	resp := makeAuthenticatedRequest(t, http.MethodPost, baseURL()+"/v1/auth/register", "", map[string]string{
		"name":     "Second",
		"email":    email,
		"password": "testpassword123",
	})
	var errResp map[string]any
	decodeJSON(t, resp, http.StatusConflict, &errResp)
	if errResp["error"] != "email_taken" {
		t.Fatalf("unexpected error code: %v", errResp["error"])
	}
}

func TestLoginAndMe(t *testing.T) {
	email := uniqueEmail("login")
	_ = createRegisteredUser(t, email, "testpassword123")

	user := loginUser(t, email, "testpassword123")
	if user.AccessToken == "" {
		t.Fatal("access token is empty")
	}

	resp := makeAuthenticatedRequest(t, http.MethodGet, baseURL()+"/v1/users/me", user.AccessToken, nil)
	var me userInfo
	decodeJSON(t, resp, http.StatusOK, &me)
	if me.Email != email {
		t.Fatalf("expected %s, got %s", email, me.Email)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	email := uniqueEmail("wrongpw")
	_ = createRegisteredUser(t, email, "testpassword123")

	resp := makeAuthenticatedRequest(t, http.MethodPost, baseURL()+"/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "not-the-password",
	})
	decodeJSON(t, resp, http.StatusUnauthorized, nil)
}

func TestRefreshFlow(t *testing.T) {
	user := createRegisteredUser(t, uniqueEmail("refresh"), "testpassword123")

	resp := makeAuthenticatedRequest(t, http.MethodPost, baseURL()+"/v1/auth/refresh", "", map[string]string{
		"refresh_token": user.RefreshToken,
	})
	var tokens userInfo
	decodeJSON(t, resp, http.StatusOK, &tokens)
	if tokens.AccessToken == "" {
		t.Fatal("refreshed access token is empty")
	}

	resp = makeAuthenticatedRequest(t, http.MethodPost, baseURL()+"/v1/auth/refresh", "", map[string]string{
		"refresh_token": user.AccessToken,
	})
	decodeJSON(t, resp, http.StatusUnauthorized, nil)
}
