package out

import (
	"context"
)

// ChatMessage — сообщение чата для доставки через WebSocket
type ChatMessage struct {
	Type       string `json:"type"` // chat_message
	MessageID  string `json:"message_id"`
	PackageID  string `json:"package_id"`
	TrackingID string `json:"tracking_id"`
	SenderID   string `json:"sender_id"`
	Body       string `json:"body"`
	SentAt     string `json:"sent_at"`
}

// ChatNotifier — интерфейс для доставки сообщений чата в реальном времени
type ChatNotifier interface {
	// NotifyParticipant отправляет сообщение участнику чата
	NotifyParticipant(ctx context.Context, userID string, msg ChatMessage) error
}
