package out_ws

import (
	"context"

	"chaski/internal/delivery/application/ports/out"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/ws"
)

// WsChatNotifier доставляет сообщения чата через WebSocket
type WsChatNotifier struct {
	hub *ws.Hub
	log *logger.Logger
}

// NewWsChatNotifier создает новый notifier
func NewWsChatNotifier(hub *ws.Hub, log *logger.Logger) *WsChatNotifier {
	return &WsChatNotifier{
		hub: hub,
		log: log,
	}
}

// NotifyParticipant отправляет сообщение участнику чата.
// Оффлайн-получатель прочитает сообщение из истории при следующем запросе.
func (n *WsChatNotifier) NotifyParticipant(ctx context.Context, userID string, msg out.ChatMessage) error {
	if !n.hub.IsUserConnected(userID) {
		n.log.Debug(logger.Entry{
			Action:    "chat_recipient_offline",
			Message:   userID,
			PackageID: msg.PackageID,
		})
		return nil
	}

	if err := n.hub.SendToUserJSON(userID, msg); err != nil {
		n.log.Error(logger.Entry{
			Action:    "notify_chat_participant_failed",
			Message:   err.Error(),
			PackageID: msg.PackageID,
			Error:     &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"user_id": userID,
			},
		})
		return err
	}

	n.log.Debug(logger.Entry{
		Action:    "chat_message_delivered",
		Message:   msg.MessageID,
		PackageID: msg.PackageID,
		Additional: map[string]any{
			"user_id": userID,
		},
	})

	return nil
}
