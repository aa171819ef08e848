package feedback

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/auth"
	"github.com/cyberguardian/platform/internal/validation"
	httperrors "github.com/cyberguardian/platform/pkg/http/errors"
)

// SubmitRequest is the body of a feedback submission.
type SubmitRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

// HTTPHandlers exposes feedback endpoints.
type HTTPHandlers struct {
	svc       *Service
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewHTTPHandlers creates feedback handlers.
func NewHTTPHandlers(svc *Service, v *validation.Validator, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, validator: v, logger: logger}
}

// Submit handles POST /v1/quizzes/{id}/feedback
func (h *HTTPHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req SubmitRequest
	if fields := h.validator.DecodeJSON(r, &req); fields != nil {
		httperrors.RespondFieldErrors(w, fields)
		return
	}

	id, err := h.svc.Submit(r.Context(), claims.UserID, r.PathValue("id"), req.Feedback)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFeedback):
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "feedback")
		case errors.Is(err, ErrQuizNotFound):
			httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
		default:
			h.logger.Error().Err(err).Msg("save feedback failed")
			httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeFeedbackSaveFailed, "Could not save feedback")
		}
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// List handles GET /v1/admin/feedback
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list feedback failed")
		httperrors.RespondInternalError(w, "Could not load feedback")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"feedback": items})
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
