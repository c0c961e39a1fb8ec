package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chaski/internal/delivery/application/ports/out"
	"chaski/internal/delivery/domain"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
)

const bidColumns = `
	id, package_id, courier_id, proposed_price, estimated_delivery_hours,
	estimated_pickup_time, message, status, created_at`

// BidPgLedger реализует BidLedger поверх PostgreSQL.
// Все мутации выполняются в транзакции с блокировкой строки посылки,
// поэтому подача и выбор ставок по одной посылке сериализуются.
type BidPgLedger struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewBidPgLedger создает новый реестр ставок
func NewBidPgLedger(pool *pgxpool.Pool, log *logger.Logger) *BidPgLedger {
	return &BidPgLedger{pool: pool, log: log}
}

func scanBid(row pgScanner) (*domain.Bid, error) {
	var b domain.Bid
	err := row.Scan(
		&b.ID, &b.PackageID, &b.CourierID, &b.ProposedPrice, &b.EstimatedDeliveryHours,
		&b.EstimatedPickupTime, &b.Message, &b.Status, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBidNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Submit регистрирует ставку. Предыдущая активная ставка курьера по той же
// посылке помечается superseded в той же транзакции.
func (l *BidPgLedger) Submit(ctx context.Context, bid *domain.Bid) (*out.SubmitResult, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Блокируем строку посылки: сериализует конкурентные Submit/Select
	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM packages WHERE id = $1 FOR UPDATE`, bid.PackageID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPackageNotFound
		}
		return nil, fmt.Errorf("lock package: %w", err)
	}
	if status != model.PackageStatusOpenForBids {
		return nil, domain.ErrStatusConflict
	}

	tag, err := tx.Exec(ctx,
		`UPDATE bids SET status = $1 WHERE package_id = $2 AND courier_id = $3 AND status = $4`,
		model.BidStatusSuperseded, bid.PackageID, bid.CourierID, model.BidStatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("supersede previous bid: %w", err)
	}
	superseded := tag.RowsAffected() > 0

	_, err = tx.Exec(ctx, `
		INSERT INTO bids (
			id, package_id, courier_id, proposed_price, estimated_delivery_hours,
			estimated_pickup_time, message, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		bid.ID, bid.PackageID, bid.CourierID, bid.ProposedPrice, bid.EstimatedDeliveryHours,
		bid.EstimatedPickupTime, bid.Message, bid.Status, bid.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert bid: %w", err)
	}

	var count int
	err = tx.QueryRow(ctx,
		`SELECT count(*) FROM bids WHERE package_id = $1 AND status = $2`,
		bid.PackageID, model.BidStatusActive,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("count active bids: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE packages SET bid_count = $2, updated_at = now() WHERE id = $1`,
		bid.PackageID, count,
	)
	if err != nil {
		return nil, fmt.Errorf("update bid count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	res := *bid
	return &out.SubmitResult{Bid: &res, Superseded: superseded, BidCount: count}, nil
}

// Select выбирает ставку. Побеждает первая зафиксированная транзакция:
// проигравшая увидит статус != open_for_bids и получит ErrStatusConflict.
func (l *BidPgLedger) Select(ctx context.Context, packageID, bidID, senderID string) (*out.SelectResult, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var status, pkgSender string
	err = tx.QueryRow(ctx,
		`SELECT status, sender_id FROM packages WHERE id = $1 FOR UPDATE`, packageID,
	).Scan(&status, &pkgSender)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPackageNotFound
		}
		return nil, fmt.Errorf("lock package: %w", err)
	}
	if pkgSender != senderID {
		return nil, domain.ErrForbidden
	}
	if status != model.PackageStatusOpenForBids {
		return nil, domain.ErrStatusConflict
	}

	bid, err := scanBid(tx.QueryRow(ctx,
		`SELECT`+bidColumns+` FROM bids WHERE id = $1 AND package_id = $2 AND status = $3`,
		bidID, packageID, model.BidStatusActive,
	))
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE bids SET status = $1 WHERE package_id = $2 AND id <> $3 AND status = $4`,
		model.BidStatusRejected, packageID, bidID, model.BidStatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("reject competing bids: %w", err)
	}
	rejected := int(tag.RowsAffected())

	if _, err := tx.Exec(ctx,
		`UPDATE bids SET status = $1 WHERE id = $2`, model.BidStatusSelected, bidID,
	); err != nil {
		return nil, fmt.Errorf("mark bid selected: %w", err)
	}
	bid.Status = model.BidStatusSelected

	pkg, err := scanPackage(tx.QueryRow(ctx, `
		UPDATE packages SET
			status = $2,
			courier_id = $3,
			price = $4,
			selected_bid_id = $5,
			matched_at = now(),
			updated_at = now()
		WHERE id = $1
		RETURNING`+packageColumns,
		packageID, model.PackageStatusBidSelected, bid.CourierID, bid.ProposedPrice, bid.ID,
	))
	if err != nil {
		return nil, fmt.Errorf("update package: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &out.SelectResult{Package: pkg, Bid: bid, Rejected: rejected}, nil
}

// FindByID возвращает ставку по ID
func (l *BidPgLedger) FindByID(ctx context.Context, bidID string) (*domain.Bid, error) {
	return scanBid(l.pool.QueryRow(ctx,
		`SELECT`+bidColumns+` FROM bids WHERE id = $1`, bidID))
}

// ListByPackage возвращает все ставки по посылке в порядке подачи
func (l *BidPgLedger) ListByPackage(ctx context.Context, packageID string) ([]*domain.Bid, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT`+bidColumns+`
		FROM bids
		WHERE package_id = $1
		ORDER BY created_at ASC`, packageID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

// CountActive возвращает число активных ставок по посылке
func (l *BidPgLedger) CountActive(ctx context.Context, packageID string) (int, error) {
	var count int
	err := l.pool.QueryRow(ctx,
		`SELECT count(*) FROM bids WHERE package_id = $1 AND status = $2`,
		packageID, model.BidStatusActive,
	).Scan(&count)
	return count, err
}
