package out

import (
	"context"

	"chaski/internal/delivery/domain"
)

// MessageRepository — интерфейс репозитория для чата по посылке
type MessageRepository interface {
	// Create сохраняет новое сообщение
	Create(ctx context.Context, msg *domain.Message) error

	// ListByPackage возвращает сообщения по посылке в хронологическом порядке
	ListByPackage(ctx context.Context, packageID string, limit, offset int) ([]*domain.Message, error)

	// MarkRead помечает прочитанными входящие сообщения пользователя по посылке
	MarkRead(ctx context.Context, packageID, recipientID string) error
}
