package out

import (
	"context"
	"time"

	"chaski/internal/notification/domain"
)

// NotificationRepository — хранилище уведомлений
type NotificationRepository interface {
	// Create сохраняет уведомление безусловно
	Create(ctx context.Context, n *domain.Notification) error

	// CreateIfAbsent сохраняет уведомление, если для тройки
	// (user_id, package_id, type) нет записи свежее window
	// (window <= 0 — любая запись считается дубликатом).
	// Возвращает true, если запись была создана этим вызовом.
	CreateIfAbsent(ctx context.Context, n *domain.Notification, window time.Duration) (bool, error)

	ListByUser(ctx context.Context, userID string, onlyUnread bool, limit, offset int) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)

	// MarkRead помечает уведомление прочитанным. Возвращает
	// ErrNotificationNotFound, если оно не принадлежит пользователю.
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// PushNotifier отправляет уведомление подключенному пользователю
type PushNotifier interface {
	Push(ctx context.Context, n *domain.Notification) error
}
