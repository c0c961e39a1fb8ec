package in

import (
	"context"

	"chaski/internal/notification/domain"
)

// ListNotificationsInput — выборка уведомлений пользователя
type ListNotificationsInput struct {
	UserID     string
	OnlyUnread bool
	Limit      int
	Offset     int
}

// ListNotificationsUseCase возвращает уведомления пользователя (новые первыми)
type ListNotificationsUseCase interface {
	Execute(ctx context.Context, input ListNotificationsInput) ([]*domain.Notification, error)
}

// UnreadCountUseCase возвращает число непрочитанных уведомлений
type UnreadCountUseCase interface {
	Execute(ctx context.Context, userID string) (int, error)
}

// MarkReadUseCase помечает уведомление прочитанным
type MarkReadUseCase interface {
	Execute(ctx context.Context, notificationID, userID string) error
}

// MarkAllReadUseCase помечает все уведомления пользователя прочитанными
type MarkAllReadUseCase interface {
	Execute(ctx context.Context, userID string) (int, error)
}
