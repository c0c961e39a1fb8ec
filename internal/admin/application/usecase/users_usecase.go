package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chaski/internal/admin/application/ports/in"
	"chaski/internal/admin/application/ports/out"
	"chaski/internal/admin/domain"
	"chaski/internal/shared/auth"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/user"
	"chaski/internal/shared/utils"
)

const minPasswordLength = 8

// CreateUserService создает пользователя с bcrypt-хешем пароля
type CreateUserService struct {
	repo out.UserAdminRepository
	log  *logger.Logger
}

// NewCreateUserService создает новый сервис
func NewCreateUserService(repo out.UserAdminRepository, log *logger.Logger) *CreateUserService {
	return &CreateUserService{repo: repo, log: log}
}

// Execute регистрирует пользователя
func (s *CreateUserService) Execute(ctx context.Context, input in.CreateUserInput) (*user.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email", domain.ErrInvalidUser)
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, fmt.Errorf("%w: full_name", domain.ErrInvalidUser)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidUser, minPasswordLength)
	}
	if !domain.ValidRole(input.Role) {
		return nil, fmt.Errorf("%w: role %q", domain.ErrInvalidUser, input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &user.User{
		ID:        utils.NewUUID(),
		Email:     email,
		FullName:  strings.TrimSpace(input.FullName),
		Role:      input.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, u, string(hash)); err != nil {
		return nil, err
	}

	s.log.Info(logger.Entry{
		Action:  "user_created",
		Message: fmt.Sprintf("user %s created with role %s", u.ID, u.Role),
	})
	return u, nil
}

// LoginService аутентифицирует пользователя и выдает JWT
type LoginService struct {
	repo out.UserAdminRepository
	jwt  *auth.JWTService
	log  *logger.Logger
}

// NewLoginService создает новый сервис
func NewLoginService(repo out.UserAdminRepository, jwt *auth.JWTService, log *logger.Logger) *LoginService {
	return &LoginService{repo: repo, jwt: jwt, log: log}
}

// Execute проверяет учетные данные и возвращает токен.
// Неизвестный email и неверный пароль дают одинаковую ошибку.
func (s *LoginService) Execute(ctx context.Context, input in.LoginInput) (*in.LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	u, hash, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == user.ErrUserNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &in.LoginOutput{Token: token, User: u}, nil
}

// ListUsersService возвращает пользователей платформы
type ListUsersService struct {
	repo out.UserAdminRepository
}

// NewListUsersService создает новый сервис
func NewListUsersService(repo out.UserAdminRepository) *ListUsersService {
	return &ListUsersService{repo: repo}
}

// Execute возвращает страницу пользователей
func (s *ListUsersService) Execute(ctx context.Context, limit, offset int) ([]*user.User, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// UpdateRoleService меняет роль пользователя по графу переходов
type UpdateRoleService struct {
	repo out.UserAdminRepository
	log  *logger.Logger
}

// NewUpdateRoleService создает новый сервис
func NewUpdateRoleService(repo out.UserAdminRepository, log *logger.Logger) *UpdateRoleService {
	return &UpdateRoleService{repo: repo, log: log}
}

// Execute выполняет смену роли. Админ не может менять собственную роль —
// это защита от случайной потери последнего администратора.
func (s *UpdateRoleService) Execute(ctx context.Context, input in.UpdateRoleInput) (*user.User, error) {
	if input.ActorID == input.UserID {
		return nil, domain.ErrSelfModification
	}
	if !domain.ValidRole(input.NewRole) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidRoleChange, input.NewRole)
	}

	u, err := s.repo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !domain.CanChangeRole(u.Role, input.NewRole) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidRoleChange, u.Role, input.NewRole)
	}

	if err := s.repo.UpdateRole(ctx, u.ID, input.NewRole); err != nil {
		return nil, err
	}

	s.log.Info(logger.Entry{
		Action:  "user_role_changed",
		Message: fmt.Sprintf("user %s: %s -> %s", u.ID, u.Role, input.NewRole),
		Additional: map[string]any{
			"actor_id": input.ActorID,
		},
	})

	u.Role = input.NewRole
	return u, nil
}

// ToggleActiveService включает и выключает аккаунт пользователя
type ToggleActiveService struct {
	repo out.UserAdminRepository
	log  *logger.Logger
}

// NewToggleActiveService создает новый сервис
func NewToggleActiveService(repo out.UserAdminRepository, log *logger.Logger) *ToggleActiveService {
	return &ToggleActiveService{repo: repo, log: log}
}

// Execute переключает is_active. Самодеактивация запрещена,
// деактивация с активными посылками блокируется со списком причин.
func (s *ToggleActiveService) Execute(ctx context.Context, input in.ToggleActiveInput) (*user.User, error) {
	if input.ActorID == input.UserID {
		return nil, domain.ErrSelfModification
	}

	u, err := s.repo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if u.IsActive {
		blocking, err := s.repo.ActivePackages(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if len(blocking) > 0 {
			return nil, &domain.ActivePackagesError{Packages: blocking}
		}
	}

	next := !u.IsActive
	if err := s.repo.SetActive(ctx, u.ID, next); err != nil {
		return nil, err
	}

	s.log.Info(logger.Entry{
		Action:  "user_active_toggled",
		Message: fmt.Sprintf("user %s active=%v", u.ID, next),
		Additional: map[string]any{
			"actor_id": input.ActorID,
		},
	})

	u.IsActive = next
	return u, nil
}

// ToggleVerificationService переключает флаги верификации
type ToggleVerificationService struct {
	repo out.UserAdminRepository
	log  *logger.Logger
}

// NewToggleVerificationService создает новый сервис
func NewToggleVerificationService(repo out.UserAdminRepository, log *logger.Logger) *ToggleVerificationService {
	return &ToggleVerificationService{repo: repo, log: log}
}

// Execute инвертирует один из флагов верификации пользователя
func (s *ToggleVerificationService) Execute(ctx context.Context, input in.ToggleVerificationInput) (*user.User, error) {
	switch input.Field {
	case out.FieldVerified, out.FieldPhoneVerified, out.FieldIDVerified:
	default:
		return nil, fmt.Errorf("%w: unknown verification field %q", domain.ErrInvalidUser, input.Field)
	}

	u, err := s.repo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	value, err := s.repo.ToggleVerification(ctx, u.ID, input.Field)
	if err != nil {
		return nil, err
	}

	switch input.Field {
	case out.FieldVerified:
		u.IsVerified = value
	case out.FieldPhoneVerified:
		u.PhoneVerified = value
	case out.FieldIDVerified:
		u.IDVerified = value
	}
	return u, nil
}
