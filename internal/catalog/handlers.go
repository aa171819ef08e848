package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/auth"
	httperrors "github.com/cyberguardian/platform/pkg/http/errors"
)

// HTTPHandlers exposes the quiz catalog and its admin authoring endpoints.
type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for catalog endpoints.
func NewHTTPHandlers(svc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, logger: logger}
}

// List handles GET /v1/quizzes
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	entries, err := h.svc.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error().Err(err).Msg("list quizzes failed")
		httperrors.RespondInternalError(w, "Could not load quizzes")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"quizzes": entries})
}

// Get handles GET /v1/admin/quizzes/{id}; the response includes correct answers.
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.GetQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, q)
}

// Create handles POST /v1/admin/quizzes
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var in QuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	id, err := h.svc.CreateQuiz(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Replace handles PUT /v1/admin/quizzes/{id}
func (h *HTTPHandlers) Replace(w http.ResponseWriter, r *http.Request) {
	var in QuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	id := r.PathValue("id")
	if err := h.svc.ReplaceQuiz(r.Context(), id, in); err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

// Delete handles DELETE /v1/admin/quizzes/{id}
func (h *HTTPHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteQuiz(r.Context(), r.PathValue("id")); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandlers) respondErr(w http.ResponseWriter, err error) {
	var invalid *InvalidInputError
	var answerErr *AnswerNotInOptionsError
	switch {
	case errors.As(err, &invalid):
		httperrors.RespondErrorWithDetails(w, http.StatusBadRequest, httperrors.ErrCodeInvalidQuiz, "Quiz is invalid", map[string]any{
			"fields": invalid.Fields,
		})
	case errors.As(err, &answerErr):
		httperrors.RespondErrorWithDetails(w, http.StatusBadRequest, httperrors.ErrCodeAnswerNotInOptions, answerErr.Error(), map[string]any{
			"question_index": answerErr.Index,
		})
	case errors.Is(err, ErrQuizNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
	default:
		httperrors.RespondInternalError(w, "Quiz could not be saved")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
