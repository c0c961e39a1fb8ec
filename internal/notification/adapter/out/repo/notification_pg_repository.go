package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"chaski/internal/notification/domain"
)

// NotificationPgRepository реализует NotificationRepository поверх PostgreSQL
type NotificationPgRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationPgRepository создает новый репозиторий уведомлений
func NewNotificationPgRepository(pool *pgxpool.Pool) *NotificationPgRepository {
	return &NotificationPgRepository{pool: pool}
}

// Create сохраняет уведомление безусловно
func (r *NotificationPgRepository) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, package_id, title, body, data, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.UserID, n.Type, nullable(n.PackageID), n.Title, n.Body, n.Data, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// CreateIfAbsent вставляет уведомление, только если для
// (user_id, package_id, type) нет записи свежее window.
// Возвращает true при вставке.
func (r *NotificationPgRepository) CreateIfAbsent(ctx context.Context, n *domain.Notification, window time.Duration) (bool, error) {
	var cutoff *time.Time
	if window > 0 {
		t := n.CreatedAt.Add(-window)
		cutoff = &t
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, package_id, title, body, data, read, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE NOT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $2 AND package_id = $4 AND type = $3
			  AND ($10::timestamptz IS NULL OR created_at >= $10)
		)`,
		n.ID, n.UserID, n.Type, nullable(n.PackageID), n.Title, n.Body, n.Data, n.Read, n.CreatedAt, cutoff,
	)
	if err != nil {
		return false, fmt.Errorf("insert notification if absent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByUser возвращает уведомления пользователя, новые первыми
func (r *NotificationPgRepository) ListByUser(ctx context.Context, userID string, onlyUnread bool, limit, offset int) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, type, COALESCE(package_id::text, ''), title, body, data, read, created_at
		FROM notifications
		WHERE user_id = $1`
	if onlyUnread {
		query += ` AND NOT read`
	}
	query += `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.PackageID, &n.Title, &n.Body, &n.Data, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// CountUnread считает непрочитанные уведомления пользователя
func (r *NotificationPgRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead помечает уведомление прочитанным, проверяя владельца
func (r *NotificationPgRepository) MarkRead(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead помечает все уведомления пользователя прочитанными
func (r *NotificationPgRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// nullable превращает пустую строку в NULL для UUID-колонок
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
