package out_ws

import (
	"context"
	"fmt"

	"chaski/internal/notification/domain"
	"chaski/internal/shared/ws"
)

// WsPushNotifier доставляет уведомления через общий WebSocket hub
type WsPushNotifier struct {
	hub *ws.Hub
}

// NewWsPushNotifier создает новый push-notifier
func NewWsPushNotifier(hub *ws.Hub) *WsPushNotifier {
	return &WsPushNotifier{hub: hub}
}

// Push отправляет уведомление подключенному пользователю
func (n *WsPushNotifier) Push(_ context.Context, notification *domain.Notification) error {
	if !n.hub.IsUserConnected(notification.UserID) {
		return fmt.Errorf("user %s not connected", notification.UserID)
	}
	return n.hub.SendTypedMessage(notification.UserID, "notification", notification)
}
