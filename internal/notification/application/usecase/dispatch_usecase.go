package usecase

import (
	"context"
	"time"

	"chaski/internal/notification/application/ports/out"
	"chaski/internal/notification/domain"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/utils"
)

// DispatchService сохраняет уведомление и доставляет его по WebSocket.
// Push выполняется best-effort: офлайн-пользователь прочитает уведомление
// из истории, ошибка доставки не откатывает запись.
type DispatchService struct {
	repo out.NotificationRepository
	push out.PushNotifier
	log  *logger.Logger
}

// NewDispatchService создает новый сервис доставки уведомлений
func NewDispatchService(repo out.NotificationRepository, push out.PushNotifier, log *logger.Logger) *DispatchService {
	return &DispatchService{
		repo: repo,
		push: push,
		log:  log,
	}
}

// Dispatch безусловно сохраняет и отправляет уведомление
func (s *DispatchService) Dispatch(ctx context.Context, n *domain.Notification) error {
	s.prepare(n)
	if err := n.Validate(); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	s.pushBestEffort(ctx, n)
	return nil
}

// DispatchOnce сохраняет уведомление, только если для тройки
// (пользователь, посылка, тип) нет записи свежее window
// (window <= 0 — достаточно любой записи). Возвращает true,
// если уведомление было создано этим вызовом.
func (s *DispatchService) DispatchOnce(ctx context.Context, n *domain.Notification, window time.Duration) (bool, error) {
	s.prepare(n)
	if err := n.Validate(); err != nil {
		return false, err
	}

	created, err := s.repo.CreateIfAbsent(ctx, n, window)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	s.pushBestEffort(ctx, n)
	return true, nil
}

func (s *DispatchService) prepare(n *domain.Notification) {
	if n.ID == "" {
		n.ID = utils.NewUUID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
}

func (s *DispatchService) pushBestEffort(ctx context.Context, n *domain.Notification) {
	if err := s.push.Push(ctx, n); err != nil {
		s.log.Debug(logger.Entry{
			Action:    "notification_push_skipped",
			Message:   err.Error(),
			PackageID: n.PackageID,
			Additional: map[string]any{
				"user_id": n.UserID,
				"type":    n.Type,
			},
		})
	}
}
