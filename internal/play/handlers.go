package play

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/auth"
	"github.com/cyberguardian/platform/internal/catalog"
	"github.com/cyberguardian/platform/internal/quiz"
	"github.com/cyberguardian/platform/internal/validation"
	httperrors "github.com/cyberguardian/platform/pkg/http/errors"
)

// AnswerRequest submits one option for the active question.
type AnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// ReviewRequest lists previously missed question ids.
type ReviewRequest struct {
	QuestionIDs []string `json:"question_ids" validate:"required,min=1,dive,uuid"`
}

// HTTPHandlers exposes the play API.
type HTTPHandlers struct {
	svc       *Service
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for play endpoints.
func NewHTTPHandlers(svc *Service, v *validation.Validator, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, validator: v, logger: logger}
}

// Start handles POST /v1/quizzes/{id}/sessions
func (h *HTTPHandlers) Start(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	view, err := h.svc.Start(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, view)
}

// StartReview handles POST /v1/reviews
func (h *HTTPHandlers) StartReview(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req ReviewRequest
	if fields := h.validator.DecodeJSON(r, &req); fields != nil {
		httperrors.RespondFieldErrors(w, fields)
		return
	}

	view, err := h.svc.StartReview(r.Context(), claims.UserID, req.QuestionIDs)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, view)
}

// Get handles GET /v1/sessions/{id}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Get(r.Context(), userID, sessionID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// Answer handles POST /v1/sessions/{id}/answer
func (h *HTTPHandlers) Answer(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if fields := h.validator.DecodeJSON(r, &req); fields != nil {
		httperrors.RespondFieldErrors(w, fields)
		return
	}

	view, err := h.svc.Answer(r.Context(), userID, sessionID, req.Answer)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// Next handles POST /v1/sessions/{id}/next
func (h *HTTPHandlers) Next(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.sessionParams(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Next(r.Context(), userID, sessionID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

func (h *HTTPHandlers) sessionParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return uuid.Nil, uuid.Nil, false
	}
	return claims.UserID, sessionID, true
}

func (h *HTTPHandlers) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrQuizNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
	case errors.Is(err, catalog.ErrQuizLocked):
		httperrors.RespondForbidden(w, httperrors.ErrCodeQuizLocked, err.Error())
	case errors.Is(err, quiz.ErrEmptyQuiz):
		httperrors.RespondError(w, http.StatusUnprocessableEntity, httperrors.ErrCodeInvalidQuiz, err.Error())
	case errors.Is(err, quiz.ErrNoReviewQuestions):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeNoReviewQuestions, err.Error())
	case errors.Is(err, ErrSessionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found or expired")
	case errors.Is(err, ErrSessionBusy):
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionBusy, err.Error())
	case errors.Is(err, quiz.ErrNoActiveQuestion),
		errors.Is(err, quiz.ErrAlreadyAnswered),
		errors.Is(err, quiz.ErrNotAnswered),
		errors.Is(err, quiz.ErrSessionComplete):
		httperrors.RespondConflict(w, httperrors.ErrCodeInvalidTransition, err.Error())
	default:
		h.logger.Error().Err(err).Msg("play request failed")
		httperrors.RespondInternalError(w, "Session update failed")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
