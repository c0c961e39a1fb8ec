package usecase

import (
	"context"

	"chaski/internal/notification/application/ports/in"
	"chaski/internal/notification/application/ports/out"
	"chaski/internal/notification/domain"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// ListNotificationsService возвращает уведомления пользователя
type ListNotificationsService struct {
	repo out.NotificationRepository
}

// NewListNotificationsService создает новый сервис
func NewListNotificationsService(repo out.NotificationRepository) *ListNotificationsService {
	return &ListNotificationsService{repo: repo}
}

// Execute возвращает уведомления (новые первыми)
func (s *ListNotificationsService) Execute(ctx context.Context, input in.ListNotificationsInput) ([]*domain.Notification, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, input.UserID, input.OnlyUnread, limit, offset)
}

// UnreadCountService считает непрочитанные уведомления
type UnreadCountService struct {
	repo out.NotificationRepository
}

// NewUnreadCountService создает новый сервис
func NewUnreadCountService(repo out.NotificationRepository) *UnreadCountService {
	return &UnreadCountService{repo: repo}
}

// Execute возвращает число непрочитанных уведомлений
func (s *UnreadCountService) Execute(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkReadService помечает уведомление прочитанным
type MarkReadService struct {
	repo out.NotificationRepository
}

// NewMarkReadService создает новый сервис
func NewMarkReadService(repo out.NotificationRepository) *MarkReadService {
	return &MarkReadService{repo: repo}
}

// Execute помечает уведомление прочитанным от имени пользователя
func (s *MarkReadService) Execute(ctx context.Context, notificationID, userID string) error {
	return s.repo.MarkRead(ctx, notificationID, userID)
}

// MarkAllReadService помечает все уведомления пользователя прочитанными
type MarkAllReadService struct {
	repo out.NotificationRepository
}

// NewMarkAllReadService создает новый сервис
func NewMarkAllReadService(repo out.NotificationRepository) *MarkAllReadService {
	return &MarkAllReadService{repo: repo}
}

// Execute помечает все уведомления прочитанными, возвращает их число
func (s *MarkAllReadService) Execute(ctx context.Context, userID string) (int, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
