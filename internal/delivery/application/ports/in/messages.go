package in

import (
	"context"

	"chaski/internal/delivery/domain"
)

// SendMessageInput — новое сообщение в чате посылки
type SendMessageInput struct {
	PackageID string
	SenderID  string
	Body      string
}

// SendMessageUseCase отправляет сообщение второй стороне посылки
type SendMessageUseCase interface {
	Execute(ctx context.Context, input SendMessageInput) (*domain.Message, error)
}

// ListMessagesInput — чтение чата посылки
type ListMessagesInput struct {
	PackageID string
	ReaderID  string
}

// ListMessagesUseCase возвращает сообщения чата и помечает входящие прочитанными
type ListMessagesUseCase interface {
	Execute(ctx context.Context, input ListMessagesInput) ([]*domain.Message, error)
}
