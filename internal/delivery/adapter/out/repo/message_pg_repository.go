package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"chaski/internal/delivery/domain"
)

// MessagePgRepository реализует MessageRepository поверх PostgreSQL
type MessagePgRepository struct {
	pool *pgxpool.Pool
}

// NewMessagePgRepository создает новый репозиторий сообщений
func NewMessagePgRepository(pool *pgxpool.Pool) *MessagePgRepository {
	return &MessagePgRepository{pool: pool}
}

// Create сохраняет новое сообщение
func (r *MessagePgRepository) Create(ctx context.Context, msg *domain.Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (id, package_id, sender_id, recipient_id, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		msg.ID, msg.PackageID, msg.SenderID, msg.RecipientID, msg.Body, msg.Read, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByPackage возвращает сообщения по посылке в хронологическом порядке
func (r *MessagePgRepository) ListByPackage(ctx context.Context, packageID string, limit, offset int) ([]*domain.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, package_id, sender_id, recipient_id, body, read, created_at
		FROM messages
		WHERE package_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`, packageID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.PackageID, &m.SenderID, &m.RecipientID, &m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// MarkRead помечает прочитанными входящие сообщения пользователя по посылке
func (r *MessagePgRepository) MarkRead(ctx context.Context, packageID, recipientID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages SET read = TRUE
		WHERE package_id = $1 AND recipient_id = $2 AND NOT read`,
		packageID, recipientID,
	)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}
