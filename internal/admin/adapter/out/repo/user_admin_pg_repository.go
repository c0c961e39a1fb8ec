package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"chaski/internal/admin/domain"
	"chaski/internal/shared/user"
)

const userColumns = `id, email, full_name, role, is_active, is_verified,
	phone_verified, id_verified, max_deviation_km, created_at, updated_at`

// Статусы посылки, блокирующие деактивацию участника
const activeStatuses = `('open_for_bids', 'bid_selected', 'pending_pickup', 'in_transit')`

// UserAdminPgRepository реализует UserAdminRepository поверх PostgreSQL
type UserAdminPgRepository struct {
	pool *pgxpool.Pool
}

// NewUserAdminPgRepository создает новый репозиторий
func NewUserAdminPgRepository(pool *pgxpool.Pool) *UserAdminPgRepository {
	return &UserAdminPgRepository{pool: pool}
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.IsVerified,
		&u.PhoneVerified, &u.IDVerified, &u.MaxDeviationKm, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create сохраняет нового пользователя
func (r *UserAdminPgRepository) Create(ctx context.Context, u *user.User, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, full_name, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.FullName, passwordHash, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByEmail возвращает пользователя и hash его пароля
func (r *UserAdminPgRepository) FindByEmail(ctx context.Context, email string) (*user.User, string, error) {
	var u user.User
	var hash string
	err := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`, password_hash
		FROM users WHERE email = $1`, email,
	).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.IsVerified,
		&u.PhoneVerified, &u.IDVerified, &u.MaxDeviationKm, &u.CreatedAt, &u.UpdatedAt,
		&hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", user.ErrUserNotFound
		}
		return nil, "", fmt.Errorf("find user by email: %w", err)
	}
	return &u, hash, nil
}

// FindByID возвращает пользователя по идентификатору
func (r *UserAdminPgRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// List возвращает страницу пользователей, новые первыми
func (r *UserAdminPgRepository) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateRole меняет роль пользователя
func (r *UserAdminPgRepository) UpdateRole(ctx context.Context, id, role string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = now() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// SetActive устанавливает флаг is_active
func (r *UserAdminPgRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ToggleVerification инвертирует флаг верификации и возвращает новое значение.
// Имя колонки подставляется только из белого списка.
func (r *UserAdminPgRepository) ToggleVerification(ctx context.Context, id, field string) (bool, error) {
	switch field {
	case "is_verified", "phone_verified", "id_verified":
	default:
		return false, fmt.Errorf("unknown verification field %q", field)
	}

	var value bool
	err := r.pool.QueryRow(ctx, fmt.Sprintf(
		`UPDATE users SET %s = NOT %s, updated_at = now() WHERE id = $1 RETURNING %s`,
		field, field, field,
	), id).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, user.ErrUserNotFound
		}
		return false, fmt.Errorf("toggle %s: %w", field, err)
	}
	return value, nil
}

// ActivePackages возвращает незавершенные посылки пользователя
func (r *UserAdminPgRepository) ActivePackages(ctx context.Context, userID string) ([]domain.ActivePackageRef, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tracking_id, status
		FROM packages
		WHERE (sender_id = $1 OR courier_id = $1)
		  AND status IN `+activeStatuses+`
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active packages: %w", err)
	}
	defer rows.Close()

	var refs []domain.ActivePackageRef
	for rows.Next() {
		var ref domain.ActivePackageRef
		if err := rows.Scan(&ref.ID, &ref.TrackingID, &ref.Status); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
