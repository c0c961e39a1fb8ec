package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chaski/internal/delivery/application/ports/out"
	"chaski/internal/delivery/domain"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
)

// packageColumns — порядок колонок для scanPackage
const packageColumns = `
	id, tracking_id, sender_id, courier_id, status, size, weight_kg,
	pickup_address, pickup_lat, pickup_lng, pickup_contact,
	dropoff_address, dropoff_lat, dropoff_lng, dropoff_contact,
	price, bid_deadline, bid_count, selected_bid_id, deadline_extensions,
	is_active, published_at, matched_at, confirmed_at, picked_up_at,
	delivered_at, cancelled_at, cancellation_reason, created_at, updated_at`

// PackagePgRepository реализует PackageRepository поверх PostgreSQL
type PackagePgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPackagePgRepository создает новый репозиторий посылок
func NewPackagePgRepository(pool *pgxpool.Pool, log *logger.Logger) *PackagePgRepository {
	return &PackagePgRepository{pool: pool, log: log}
}

type pgScanner interface {
	Scan(dest ...any) error
}

func scanPackage(row pgScanner) (*domain.Package, error) {
	var p domain.Package
	err := row.Scan(
		&p.ID, &p.TrackingID, &p.SenderID, &p.CourierID, &p.Status, &p.Size, &p.WeightKg,
		&p.PickupAddress, &p.PickupLat, &p.PickupLng, &p.PickupContact,
		&p.DropoffAddress, &p.DropoffLat, &p.DropoffLng, &p.DropoffContact,
		&p.Price, &p.BidDeadline, &p.BidCount, &p.SelectedBidID, &p.DeadlineExtensions,
		&p.IsActive, &p.PublishedAt, &p.MatchedAt, &p.ConfirmedAt, &p.PickedUpAt,
		&p.DeliveredAt, &p.CancelledAt, &p.CancellationReason, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPackageNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create создает новую посылку
func (r *PackagePgRepository) Create(ctx context.Context, pkg *domain.Package) error {
	query := `
		INSERT INTO packages (
			id, tracking_id, sender_id, status, size, weight_kg,
			pickup_address, pickup_lat, pickup_lng, pickup_contact,
			dropoff_address, dropoff_lat, dropoff_lng, dropoff_contact,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.pool.Exec(ctx, query,
		pkg.ID, pkg.TrackingID, pkg.SenderID, pkg.Status, pkg.Size, pkg.WeightKg,
		pkg.PickupAddress, pkg.PickupLat, pkg.PickupLng, pkg.PickupContact,
		pkg.DropoffAddress, pkg.DropoffLat, pkg.DropoffLng, pkg.DropoffContact,
		pkg.IsActive, pkg.CreatedAt, pkg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert package: %w", err)
	}
	return nil
}

// Update перезаписывает содержимое посылки, пока она в статусе new
func (r *PackagePgRepository) Update(ctx context.Context, pkg *domain.Package) (bool, error) {
	query := `
		UPDATE packages SET
			size = $2,
			weight_kg = $3,
			pickup_address = $4,
			pickup_lat = $5,
			pickup_lng = $6,
			pickup_contact = $7,
			dropoff_address = $8,
			dropoff_lat = $9,
			dropoff_lng = $10,
			dropoff_contact = $11,
			updated_at = now()
		WHERE id = $1 AND status = $12`

	tag, err := r.pool.Exec(ctx, query,
		pkg.ID, pkg.Size, pkg.WeightKg,
		pkg.PickupAddress, pkg.PickupLat, pkg.PickupLng, pkg.PickupContact,
		pkg.DropoffAddress, pkg.DropoffLat, pkg.DropoffLng, pkg.DropoffContact,
		model.PackageStatusNew,
	)
	if err != nil {
		return false, fmt.Errorf("update package: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// FindByID возвращает посылку по ID
func (r *PackagePgRepository) FindByID(ctx context.Context, packageID string) (*domain.Package, error) {
	query := `SELECT` + packageColumns + ` FROM packages WHERE id = $1`
	return scanPackage(r.pool.QueryRow(ctx, query, packageID))
}

// FindByTrackingID возвращает посылку по трек-номеру
func (r *PackagePgRepository) FindByTrackingID(ctx context.Context, trackingID string) (*domain.Package, error) {
	query := `SELECT` + packageColumns + ` FROM packages WHERE tracking_id = $1`
	return scanPackage(r.pool.QueryRow(ctx, query, trackingID))
}

// List возвращает посылки по фильтру
func (r *PackagePgRepository) List(ctx context.Context, filter out.PackageFilter) ([]*domain.Package, error) {
	query := `SELECT` + packageColumns + ` FROM packages WHERE 1=1`
	args := []any{}
	idx := 1

	if filter.SenderID != "" {
		query += fmt.Sprintf(" AND sender_id = $%d", idx)
		args = append(args, filter.SenderID)
		idx++
	}
	if filter.CourierID != "" {
		query += fmt.Sprintf(" AND courier_id = $%d", idx)
		args = append(args, filter.CourierID)
		idx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, filter.Status)
		idx++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var packages []*domain.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

// UpdateStatusCAS атомарно переводит посылку из expected в next.
// Временные метки жизненного цикла проставляются той же командой.
func (r *PackagePgRepository) UpdateStatusCAS(ctx context.Context, packageID, expected, next string, at time.Time) (bool, error) {
	query := `
		UPDATE packages SET
			status = $3,
			updated_at = $4,
			confirmed_at = CASE WHEN $3 = 'pending_pickup' THEN $4 ELSE confirmed_at END,
			picked_up_at = CASE WHEN $3 = 'in_transit' THEN $4 ELSE picked_up_at END,
			delivered_at = CASE WHEN $3 = 'delivered' THEN $4 ELSE delivered_at END,
			is_active = CASE WHEN $3 = 'delivered' THEN FALSE ELSE is_active END
		WHERE id = $1 AND status = $2`

	tag, err := r.pool.Exec(ctx, query, packageID, expected, next, at)
	if err != nil {
		return false, fmt.Errorf("update status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Publish атомарно переводит new -> open_for_bids и выставляет дедлайн ставок
func (r *PackagePgRepository) Publish(ctx context.Context, packageID string, deadline time.Time) (bool, error) {
	query := `
		UPDATE packages SET
			status = $3,
			bid_deadline = $2,
			published_at = now(),
			updated_at = now()
		WHERE id = $1 AND status = $4`

	tag, err := r.pool.Exec(ctx, query, packageID, deadline, model.PackageStatusOpenForBids, model.PackageStatusNew)
	if err != nil {
		return false, fmt.Errorf("publish package: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Cancel атомарно отменяет посылку если текущий статус входит в allowedFrom.
// Гонка с выбором ставки разрешается здесь: проигравшая сторона получает 0 строк.
func (r *PackagePgRepository) Cancel(ctx context.Context, packageID, reason string, failed bool, allowedFrom []string) (bool, error) {
	status := model.PackageStatusCanceled
	if failed {
		status = model.PackageStatusFailed
	}

	query := `
		UPDATE packages SET
			status = $2,
			is_active = FALSE,
			cancelled_at = now(),
			cancellation_reason = $3,
			updated_at = now()
		WHERE id = $1 AND status = ANY($4)`

	tag, err := r.pool.Exec(ctx, query, packageID, status, reason, allowedFrom)
	if err != nil {
		return false, fmt.Errorf("cancel package: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AssignCourier атомарно назначает курьера напрямую (open_for_bids -> bid_selected)
func (r *PackagePgRepository) AssignCourier(ctx context.Context, packageID, courierID string) (bool, error) {
	query := `
		UPDATE packages SET
			status = $3,
			courier_id = $2,
			matched_at = now(),
			updated_at = now()
		WHERE id = $1 AND status = $4 AND courier_id IS NULL`

	tag, err := r.pool.Exec(ctx, query, packageID, courierID,
		model.PackageStatusBidSelected, model.PackageStatusOpenForBids)
	if err != nil {
		return false, fmt.Errorf("assign courier: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
