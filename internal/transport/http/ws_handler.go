package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"skin-assessment-service/internal/app"
	"skin-assessment-service/internal/domain"
)

type WSHandler struct {
	service  *app.AssessmentService
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewWSHandler(service *app.AssessmentService, log *slog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID  string `json:"questionId"`
	OptionIndex int    `json:"optionIndex"`
}

type fieldPayload struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs one assessment session for the lifetime of the connection.
// Every state change is pushed as a "state" message; intents are "answer", "field", "submit" and "restart".
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// The session outlives request-scoped cancellation only until the socket closes.
	ctx := context.WithoutCancel(r.Context())

	started, err := h.service.Start(ctx)
	if err != nil {
		h.log.Error("start assessment failed", "error", err)
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	sessionID := started.SessionID
	log := h.log.With("session", sessionID)
	defer h.service.Close(ctx, sessionID)

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer goroutine: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.handleIntent(ctx, sessionID, inbound); err != nil {
			select {
			case send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}:
			case <-writerDone:
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// handleIntent applies one inbound message. Resulting state reaches the client through the subscription.
func (h *WSHandler) handleIntent(ctx context.Context, sessionID string, inbound inboundMessage) error {
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errors.New("invalid answer payload")
		}
		_, err := h.service.Answer(ctx, sessionID, domain.AnswerSubmission{
			QuestionID:  payload.QuestionID,
			OptionIndex: payload.OptionIndex,
		})
		return err
	case "field":
		var payload fieldPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errors.New("invalid field payload")
		}
		_, err := h.service.UpdateContact(ctx, sessionID, payload.Field, payload.Value)
		return err
	case "submit":
		_, err := h.service.SubmitLead(ctx, sessionID)
		if errors.Is(err, domain.ErrLeadInvalid) {
			// Field errors are part of the pushed state.
			return nil
		}
		return err
	case "restart":
		_, err := h.service.Restart(ctx, sessionID)
		return err
	default:
		return errors.New("unsupported message type")
	}
}
