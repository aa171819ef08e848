package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/auth"
	httperrors "github.com/cyberguardian/platform/pkg/http/errors"
)

// HTTPHandlers exposes dashboards.
type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger
}

// NewHTTPHandlers creates dashboard handlers.
func NewHTTPHandlers(svc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, logger: logger}
}

// Mine handles GET /v1/dashboard
func (h *HTTPHandlers) Mine(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	d, err := h.svc.ForUser(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("user dashboard failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeDashboardFailed, "Could not load dashboard")
		return
	}
	h.respondJSON(w, http.StatusOK, d)
}

// Admin handles GET /v1/admin/dashboard
func (h *HTTPHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.ForAdmin(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("admin dashboard failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeDashboardFailed, "Could not load dashboard")
		return
	}
	h.respondJSON(w, http.StatusOK, d)
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
