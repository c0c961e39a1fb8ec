package domain

import (
	"errors"
	"time"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidNotification  = errors.New("invalid notification")
)

// Notification — уведомление пользователя о событии платформы
type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	PackageID string         `json:"package_id,omitempty"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate проверяет обязательные поля уведомления
func (n *Notification) Validate() error {
	if n.UserID == "" || n.Type == "" || n.Title == "" {
		return ErrInvalidNotification
	}
	return nil
}
