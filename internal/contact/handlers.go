package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/validation"
	httperrors "github.com/cyberguardian/platform/pkg/http/errors"
)

type sender interface {
	Send(ctx context.Context, msg Message) error
}

// HTTPHandlers exposes the contact form endpoint.
type HTTPHandlers struct {
	mailer    sender
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewHTTPHandlers creates contact handlers.
func NewHTTPHandlers(mailer sender, v *validation.Validator, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{mailer: mailer, validator: v, logger: logger}
}

// Submit handles POST /v1/contact
func (h *HTTPHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if fields := h.validator.DecodeJSON(r, &msg); fields != nil {
		httperrors.RespondFieldErrors(w, fields)
		return
	}

	if err := h.mailer.Send(r.Context(), msg); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeFeatureNotAvailable, "The contact form is not available")
			return
		}
		h.logger.Error().Err(err).Msg("contact relay failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeContactDeliveryFail, "Your message could not be delivered")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "sent"})
}
