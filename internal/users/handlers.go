package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/auth"
	"github.com/cyberguardian/platform/internal/validation"
	httperrors "github.com/cyberguardian/platform/pkg/http/errors"
)

// HTTPHandlers exposes the admin user endpoints.
type HTTPHandlers struct {
	svc       *Service
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewHTTPHandlers creates user administration handlers.
func NewHTTPHandlers(svc *Service, v *validation.Validator, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, validator: v, logger: logger}
}

// List handles GET /v1/admin/users?search=
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error().Err(err).Msg("list users failed")
		httperrors.RespondInternalError(w, "Could not load users")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"users": list})
}

// Update handles PUT /v1/admin/users/{id}
func (h *HTTPHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateRequest
	if fields := h.validator.DecodeJSON(r, &req); fields != nil {
		httperrors.RespondFieldErrors(w, fields)
		return
	}

	u, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, u)
}

// Delete handles DELETE /v1/admin/users/{id}
func (h *HTTPHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), claims.UserID, id); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Progress handles GET /v1/admin/users/{id}/progress
func (h *HTTPHandlers) Progress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Progress(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, p)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeUserNotFound, "User not found")
		return uuid.Nil, false
	}
	return id, true
}

func (h *HTTPHandlers) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeUserNotFound, "User not found")
	case errors.Is(err, ErrEmailTaken):
		httperrors.RespondConflict(w, httperrors.ErrCodeEmailTaken, err.Error())
	case errors.Is(err, ErrDeleteSelf):
		httperrors.RespondConflict(w, httperrors.ErrCodeConflict, err.Error())
	default:
		h.logger.Error().Err(err).Msg("user administration failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeUserUpdateFailed, "Could not complete the request")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
