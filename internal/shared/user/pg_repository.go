package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository реализует Repository поверх PostgreSQL
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository создает новый репозиторий пользователей
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// FindByID находит пользователя по ID
func (r *PgRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, full_name, role, is_active, is_verified,
		       phone_verified, id_verified, max_deviation_km, created_at, updated_at
		FROM users
		WHERE id = $1`

	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.IsVerified,
		&u.PhoneVerified, &u.IDVerified, &u.MaxDeviationKm, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Exists проверяет существование пользователя
func (r *PgRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
