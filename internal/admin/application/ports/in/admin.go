package in

import (
	"context"

	adminout "chaski/internal/admin/application/ports/out"
	"chaski/internal/admin/domain"
	"chaski/internal/shared/user"
)

// CreateUserInput — регистрация пользователя администратором
type CreateUserInput struct {
	Email    string
	FullName string
	Password string
	Role     string
}

// CreateUserUseCase создает пользователя с хешированным паролем
type CreateUserUseCase interface {
	Execute(ctx context.Context, input CreateUserInput) (*user.User, error)
}

// LoginInput — вход по email и паролю
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput — JWT и профиль вошедшего пользователя
type LoginOutput struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// LoginUseCase аутентифицирует пользователя и выдает JWT
type LoginUseCase interface {
	Execute(ctx context.Context, input LoginInput) (*LoginOutput, error)
}

// ListUsersUseCase возвращает пользователей платформы
type ListUsersUseCase interface {
	Execute(ctx context.Context, limit, offset int) ([]*user.User, error)
}

// UpdateRoleInput — смена роли пользователя
type UpdateRoleInput struct {
	ActorID string
	UserID  string
	NewRole string
}

// UpdateRoleUseCase меняет роль по фиксированному графу переходов
type UpdateRoleUseCase interface {
	Execute(ctx context.Context, input UpdateRoleInput) (*user.User, error)
}

// ToggleActiveInput — включение/выключение аккаунта
type ToggleActiveInput struct {
	ActorID string
	UserID  string
}

// ToggleActiveUseCase переключает is_active; деактивация блокируется
// активными посылками пользователя
type ToggleActiveUseCase interface {
	Execute(ctx context.Context, input ToggleActiveInput) (*user.User, error)
}

// ToggleVerificationInput — переключение флага верификации
type ToggleVerificationInput struct {
	UserID string
	Field  string
}

// ToggleVerificationUseCase инвертирует флаг верификации пользователя
type ToggleVerificationUseCase interface {
	Execute(ctx context.Context, input ToggleVerificationInput) (*user.User, error)
}

// PlatformStatsUseCase возвращает агрегаты платформы
type PlatformStatsUseCase interface {
	Execute(ctx context.Context) (*domain.PlatformStats, error)
}

// ListPackagesUseCase — список посылок для админки
type ListPackagesUseCase interface {
	Execute(ctx context.Context, limit, offset int) ([]domain.PackageSummary, error)
}

// ListRoutesUseCase — список маршрутов для админки
type ListRoutesUseCase interface {
	Execute(ctx context.Context, limit, offset int) ([]domain.RouteSummary, error)
}

// TriggerMatchingInput — параметры ручного запуска matching job.
// LookbackHours=0 оставляет окно дедупликации по умолчанию.
type TriggerMatchingInput struct {
	Force         bool
	LookbackHours int
}

// TriggerMatchingUseCase запускает matching job вручную
type TriggerMatchingUseCase interface {
	Execute(ctx context.Context, input TriggerMatchingInput) (*adminout.MatchingRunSummary, error)
}
