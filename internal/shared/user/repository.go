package user

import (
	"context"
	"errors"
)

// ErrUserNotFound возвращается когда пользователь не найден
var ErrUserNotFound = errors.New("user not found")

// Repository — порт доступа к пользователям для сервисов, не владеющих таблицей users
type Repository interface {
	// FindByID находит пользователя по ID
	FindByID(ctx context.Context, id string) (*User, error)

	// Exists проверяет существование пользователя
	Exists(ctx context.Context, id string) (bool, error)
}
