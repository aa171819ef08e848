package tutor

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/auth"
	"github.com/cyberguardian/platform/internal/validation"
	httperrors "github.com/cyberguardian/platform/pkg/http/errors"
)

// AskRequest is a question for the tutor.
type AskRequest struct {
	Question    string `json:"question" validate:"required,max=4000"`
	Personality string `json:"personality" validate:"omitempty,oneof=Friendly Formal Technical friendly formal technical"`
}

// FeedbackRequest describes a finished quiz.
type FeedbackRequest struct {
	QuizTitle      string `json:"quiz_title" validate:"required"`
	Score          int    `json:"score" validate:"min=0,ltefield=TotalQuestions"`
	TotalQuestions int    `json:"total_questions" validate:"min=1"`
}

// HTTPHandlers exposes the tutor over REST.
type HTTPHandlers struct {
	svc       *Service
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for tutor endpoints.
func NewHTTPHandlers(svc *Service, v *validation.Validator, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, validator: v, logger: logger}
}

// Ask handles POST /v1/tutor/ask
func (h *HTTPHandlers) Ask(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req AskRequest
	if fields := h.validator.DecodeJSON(r, &req); fields != nil {
		httperrors.RespondFieldErrors(w, fields)
		return
	}

	reply, err := h.svc.Ask(r.Context(), claims.UserID, req.Question, req.Personality)
	if err != nil {
		code, status, msg := classify(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("tutor ask failed")
		}
		httperrors.RespondError(w, status, code, msg)
		return
	}
	h.respondJSON(w, http.StatusOK, reply)
}

// History handles GET /v1/tutor/history
func (h *HTTPHandlers) History(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	msgs, err := h.svc.History(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error().Err(err).Msg("load chat history failed")
		httperrors.RespondInternalError(w, "Could not load chat history")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// QuizFeedback handles POST /v1/tutor/quiz-feedback
func (h *HTTPHandlers) QuizFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if fields := h.validator.DecodeJSON(r, &req); fields != nil {
		httperrors.RespondFieldErrors(w, fields)
		return
	}

	text := h.svc.QuizFeedback(r.Context(), req.QuizTitle, req.Score, req.TotalQuestions)
	h.respondJSON(w, http.StatusOK, map[string]string{"feedback": text})
}

// classify maps tutor errors to an error code, HTTP status and client message.
func classify(err error) (string, int, string) {
	switch {
	case errors.Is(err, ErrRateLimited):
		return httperrors.ErrCodeRateLimited, http.StatusTooManyRequests, err.Error()
	case errors.Is(err, ErrEmptyQuestion), errors.Is(err, ErrUnknownPersonality):
		return httperrors.ErrCodeInvalidRequest, http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrNotConfigured):
		return httperrors.ErrCodeFeatureNotAvailable, http.StatusServiceUnavailable, "The AI tutor is not available"
	default:
		return httperrors.ErrCodeTutorFailed, http.StatusBadGateway, "The AI tutor could not answer right now"
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
