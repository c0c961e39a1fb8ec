package in_ws

import (
	"context"
	"encoding/json"
	"net/http"

	"chaski/internal/delivery/application/ports/in"
	"chaski/internal/shared/auth"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/ws"
)

// ChatWSHandler обрабатывает WebSocket соединения участников чата посылок.
// Через это же соединение отправитель получает уведомления о ставках.
type ChatWSHandler struct {
	hub           *ws.Hub
	sendMessageUC in.SendMessageUseCase
	log           *logger.Logger
}

// NewChatWSHandler создает новый WS handler.
// SendMessageUseCase устанавливается отдельно: его notifier пишет в hub
// этого же handler'а.
func NewChatWSHandler(jwtSvc *auth.JWTService, log *logger.Logger) *ChatWSHandler {
	authFunc := func(token string) (userID, role string, err error) {
		claims, err := jwtSvc.ValidateToken(token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID, claims.Role, nil
	}

	hub := ws.NewHub(authFunc, log)

	handler := &ChatWSHandler{
		hub: hub,
		log: log,
	}
	hub.SetMessageHandler(handler.handleMessage)

	return handler
}

// SetSendMessageUseCase подключает use case отправки сообщений
func (h *ChatWSHandler) SetSendMessageUseCase(uc in.SendMessageUseCase) {
	h.sendMessageUC = uc
}

// GetHub возвращает WebSocket hub
func (h *ChatWSHandler) GetHub() *ws.Hub {
	return h.hub
}

// ServeWS обрабатывает WebSocket соединение
func (h *ChatWSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.hub.ServeWS(w, r)
}

// chatWSMessage — входящее сообщение чата по WebSocket
type chatWSMessage struct {
	PackageID string `json:"package_id"`
	Body      string `json:"body"`
}

// handleMessage обрабатывает входящие сообщения клиентов
func (h *ChatWSHandler) handleMessage(client *ws.Client, msgType string, data json.RawMessage) error {
	switch msgType {
	case "ping":
		return h.hub.SendTypedMessage(client.UserID, "pong", map[string]string{
			"status": "ok",
		})

	case "chat_message":
		var msg chatWSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return h.hub.SendTypedMessage(client.UserID, "error", map[string]string{
				"error": "invalid chat_message payload",
			})
		}

		saved, err := h.sendMessageUC.Execute(context.Background(), in.SendMessageInput{
			PackageID: msg.PackageID,
			SenderID:  client.UserID,
			Body:      msg.Body,
		})
		if err != nil {
			h.log.Warn(logger.Entry{
				Action:    "ws_chat_message_rejected",
				Message:   err.Error(),
				PackageID: msg.PackageID,
				Additional: map[string]any{
					"user_id": client.UserID,
				},
			})
			return h.hub.SendTypedMessage(client.UserID, "error", map[string]string{
				"error": err.Error(),
			})
		}

		// Подтверждение отправителю; получателю сообщение доставит notifier
		return h.hub.SendTypedMessage(client.UserID, "chat_message_ack", map[string]any{
			"message_id": saved.ID,
			"package_id": saved.PackageID,
		})

	default:
		h.log.Warn(logger.Entry{
			Action:  "ws_unknown_message_type",
			Message: msgType,
			Additional: map[string]any{
				"user_id": client.UserID,
			},
		})
	}

	return nil
}
