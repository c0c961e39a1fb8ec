package domain

import (
	"fmt"
	"time"
)

// MaxMessageBodyLen ограничивает длину сообщения в чате посылки
const MaxMessageBodyLen = 2000

// Message представляет сообщение чата между отправителем и курьером посылки.
type Message struct {
	ID          string    `json:"id" db:"id"`
	PackageID   string    `json:"package_id" db:"package_id"`
	SenderID    string    `json:"sender_id" db:"sender_id"`
	RecipientID string    `json:"recipient_id" db:"recipient_id"`
	Body        string    `json:"body" db:"body"`
	Read        bool      `json:"read" db:"read"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Validate проверяет тело сообщения
func (m *Message) Validate() error {
	if m.Body == "" {
		return fmt.Errorf("%w: empty message body", ErrMessageNotAllowed)
	}
	if len(m.Body) > MaxMessageBodyLen {
		return fmt.Errorf("%w: message exceeds %d characters", ErrMessageNotAllowed, MaxMessageBodyLen)
	}
	return nil
}
