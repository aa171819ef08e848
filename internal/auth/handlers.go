package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/auth/jwt"
	"github.com/cyberguardian/platform/internal/validation"
	httperrors "github.com/cyberguardian/platform/pkg/http/errors"
)

const oauthStateCookie = "oauth_state"

// HTTPHandlers provides REST endpoints for authentication.
type HTTPHandlers struct {
	authSvc       *Service
	oauthSvc      *OAuthService
	validator     *validation.Validator
	secureCookies bool
	logger        zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for auth endpoints.
func NewHTTPHandlers(authSvc *Service, oauthSvc *OAuthService, v *validation.Validator, secureCookies bool, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		authSvc:       authSvc,
		oauthSvc:      oauthSvc,
		validator:     v,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Register handles POST /v1/auth/register
func (h *HTTPHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if fields := h.validator.DecodeJSON(r, &req); fields != nil {
		httperrors.RespondFieldErrors(w, fields)
		return
	}

	user, tokens, err := h.authSvc.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			httperrors.RespondConflict(w, httperrors.ErrCodeEmailTaken, "An account with this email already exists")
		case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
			httperrors.RespondValidationError(w, httperrors.ErrCodeRegistrationFailed, err.Error(), "password")
		default:
			h.logger.Error().Err(err).Msg("registration failed")
			httperrors.RespondInternalError(w, "Registration failed")
		}
		return
	}

	h.setSessionCookie(w, tokens)
	h.respondJSON(w, http.StatusCreated, authResponse{User: user, TokenPair: tokens})
}

// Login handles POST /v1/auth/login
func (h *HTTPHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if fields := h.validator.DecodeJSON(r, &req); fields != nil {
		httperrors.RespondFieldErrors(w, fields)
		return
	}

	user, tokens, err := h.authSvc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeLoginFailed, "Invalid email or password")
			return
		}
		h.logger.Error().Err(err).Msg("login failed")
		httperrors.RespondInternalError(w, "Login failed")
		return
	}

	h.setSessionCookie(w, tokens)
	h.respondJSON(w, http.StatusOK, authResponse{User: user, TokenPair: tokens})
}

// RefreshToken handles POST /v1/auth/refresh
func (h *HTTPHandlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if fields := h.validator.DecodeJSON(r, &req); fields != nil {
		httperrors.RespondFieldErrors(w, fields)
		return
	}

	tokens, err := h.authSvc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, jwt.ErrExpiredToken), errors.Is(err, ErrUserNotFound):
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeRefreshFailed, "Invalid or expired refresh token")
		default:
			h.logger.Error().Err(err).Msg("refresh failed")
			httperrors.RespondInternalError(w, "Token refresh failed")
		}
		return
	}

	h.setSessionCookie(w, tokens)
	h.respondJSON(w, http.StatusOK, tokens)
}

// Logout handles POST /v1/auth/logout by clearing the session cookie.
func (h *HTTPHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// GetMe handles GET /v1/users/me (requires auth middleware)
func (h *HTTPHandlers) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "Invalid or missing token")
		return
	}

	user, err := h.authSvc.Me(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "Account no longer exists")
			return
		}
		h.logger.Error().Err(err).Msg("load current user failed")
		httperrors.RespondInternalError(w, "Could not load account")
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// OAuthStart handles GET /v1/oauth/{provider}/start
func (h *HTTPHandlers) OAuthStart(w http.ResponseWriter, r *http.Request) {
	if !h.oauthSvc.Configured() {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeOAuthNotConfigured, "OAuth is not configured")
		return
	}

	// CSRF state, echoed back by the provider and checked against the cookie.
	state := uuid.NewString()

	authURL, err := h.oauthSvc.StartOAuthFlow(r.PathValue("provider"), state)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthStartFailed, err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	h.respondJSON(w, http.StatusOK, map[string]string{
		"auth_url": authURL,
		"state":    state,
	})
}

// OAuthCallback handles GET /v1/oauth/{provider}/callback
func (h *HTTPHandlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !h.oauthSvc.Configured() {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeOAuthNotConfigured, "OAuth is not configured")
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthMissingCode, "Authorization code required")
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthInvalidState, "Invalid or missing state parameter")
		return
	}

	info, err := h.oauthSvc.HandleOAuthCallback(r.Context(), r.PathValue("provider"), code)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthCallbackFailed, err.Error())
		return
	}

	user, tokens, err := h.authSvc.SignInExternal(r.Context(), info.Email, info.Name)
	if err != nil {
		h.logger.Error().Err(err).Msg("oauth sign-in failed")
		httperrors.RespondInternalError(w, "Sign-in failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	h.setSessionCookie(w, tokens)
	h.respondJSON(w, http.StatusOK, authResponse{User: user, TokenPair: tokens})
}

type authResponse struct {
	User *User `json:"user"`
	*TokenPair
}

func (h *HTTPHandlers) setSessionCookie(w http.ResponseWriter, tokens *TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
