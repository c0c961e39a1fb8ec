package usecase

import (
	"context"
	"fmt"
	"time"

	"chaski/internal/delivery/application/ports/in"
	"chaski/internal/delivery/application/ports/out"
	"chaski/internal/delivery/domain"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/utils"
)

// SendMessageService реализует SendMessageUseCase
type SendMessageService struct {
	pkgRepo  out.PackageRepository
	msgRepo  out.MessageRepository
	notifier out.ChatNotifier
	log      *logger.Logger
}

// NewSendMessageService создает новый сервис отправки сообщений
func NewSendMessageService(
	pkgRepo out.PackageRepository,
	msgRepo out.MessageRepository,
	notifier out.ChatNotifier,
	log *logger.Logger,
) *SendMessageService {
	return &SendMessageService{pkgRepo: pkgRepo, msgRepo: msgRepo, notifier: notifier, log: log}
}

// Execute отправляет сообщение второй стороне посылки.
// Чат доступен только после назначения курьера.
func (s *SendMessageService) Execute(ctx context.Context, input in.SendMessageInput) (*domain.Message, error) {
	pkg, err := s.pkgRepo.FindByID(ctx, input.PackageID)
	if err != nil {
		return nil, err
	}

	recipientID, err := chatRecipient(pkg, input.SenderID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:          utils.NewUUID(),
		PackageID:   input.PackageID,
		SenderID:    input.SenderID,
		RecipientID: recipientID,
		Body:        input.Body,
		CreatedAt:   time.Now().UTC(),
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	if err := s.msgRepo.Create(ctx, msg); err != nil {
		s.log.Error(logger.Entry{
			Action:    "create_message_failed",
			Message:   err.Error(),
			PackageID: input.PackageID,
			Error:     &logger.ErrObj{Msg: err.Error()},
		})
		return nil, fmt.Errorf("create message: %w", err)
	}

	chatMsg := out.ChatMessage{
		Type:       "chat_message",
		MessageID:  msg.ID,
		PackageID:  msg.PackageID,
		TrackingID: pkg.TrackingID,
		SenderID:   msg.SenderID,
		Body:       msg.Body,
		SentAt:     msg.CreatedAt.Format(time.RFC3339),
	}
	if err := s.notifier.NotifyParticipant(ctx, recipientID, chatMsg); err != nil {
		s.log.Error(logger.Entry{
			Action:    "notify_chat_participant_failed",
			Message:   err.Error(),
			PackageID: input.PackageID,
			Error:     &logger.ErrObj{Msg: err.Error()},
		})
		// Сообщение сохранено, доставка через WS — best effort
	}

	return msg, nil
}

// ListMessagesService реализует ListMessagesUseCase
type ListMessagesService struct {
	pkgRepo out.PackageRepository
	msgRepo out.MessageRepository
}

// NewListMessagesService создает новый сервис чтения чата
func NewListMessagesService(pkgRepo out.PackageRepository, msgRepo out.MessageRepository) *ListMessagesService {
	return &ListMessagesService{pkgRepo: pkgRepo, msgRepo: msgRepo}
}

// Execute возвращает сообщения чата и помечает входящие прочитанными
func (s *ListMessagesService) Execute(ctx context.Context, input in.ListMessagesInput) ([]*domain.Message, error) {
	pkg, err := s.pkgRepo.FindByID(ctx, input.PackageID)
	if err != nil {
		return nil, err
	}
	if _, err := chatRecipient(pkg, input.ReaderID); err != nil {
		return nil, err
	}

	msgs, err := s.msgRepo.ListByPackage(ctx, input.PackageID, 200, 0)
	if err != nil {
		return nil, err
	}
	if err := s.msgRepo.MarkRead(ctx, input.PackageID, input.ReaderID); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	return msgs, nil
}

// chatRecipient возвращает вторую сторону чата для actorID.
// Ошибка если чат еще не открыт (курьер не назначен) или actor не участник.
func chatRecipient(pkg *domain.Package, actorID string) (string, error) {
	if pkg.CourierID == nil {
		return "", domain.ErrMessageNotAllowed
	}
	switch actorID {
	case pkg.SenderID:
		return *pkg.CourierID, nil
	case *pkg.CourierID:
		return pkg.SenderID, nil
	}
	return "", domain.ErrForbidden
}
