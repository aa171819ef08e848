package tutor

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cyberguardian/platform/internal/auth"
	httperrors "github.com/cyberguardian/platform/pkg/http/errors"
	"github.com/cyberguardian/platform/pkg/http/ws"
)

// ServeWS handles GET /ws/tutor. Each "ask" message gets one "answer" or "error" reply
// carrying the same request_id.
func (h *HTTPHandlers) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	raw, err := ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	logger := h.logger.With().Str("user_id", claims.UserID.String()).Logger()
	conn := ws.NewConnection(raw, logger)
	go conn.WritePump()

	ctx := r.Context()
	conn.ReadPump(func(msg ws.Message) error {
		switch msg.Type {
		case ws.TypePing:
			return send(conn, ws.TypePong, msg.RequestID, nil)
		case ws.TypeAsk:
			var payload ws.AskPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				return sendError(conn, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid ask payload")
			}
			reply, err := h.svc.Ask(ctx, claims.UserID, payload.Question, payload.Personality)
			if err != nil {
				code, _, text := classify(err)
				return sendError(conn, msg.RequestID, code, text)
			}
			return send(conn, ws.TypeAnswer, msg.RequestID, ws.AnswerPayload{
				Answer:      reply.Answer,
				Personality: string(reply.Personality),
			})
		default:
			return sendError(conn, msg.RequestID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type %q", msg.Type))
		}
	})
	<-conn.Done()
}

func send(conn *ws.Connection, msgType, requestID string, payload any) error {
	msg, err := ws.NewMessage(msgType, requestID, payload)
	if err != nil {
		return err
	}
	return conn.Send(msg)
}

func sendError(conn *ws.Connection, requestID, code, message string) error {
	return send(conn, ws.TypeError, requestID, ws.ErrorPayload{Code: code, Message: message})
}
