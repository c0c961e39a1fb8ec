package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"chaski/internal/matching/application/ports/out"
	"chaski/internal/matching/domain"
	"chaski/internal/model"
)

// PackageFinderPg читает посылки delivery-сервиса для матчинга и
// обслуживает deadline sweeper. Пишет только поля дедлайна и статуса,
// остальным жизненным циклом посылки владеет delivery service.
type PackageFinderPg struct {
	pool *pgxpool.Pool
}

// NewPackageFinderPg создает новый адаптер чтения посылок
func NewPackageFinderPg(pool *pgxpool.Pool) *PackageFinderPg {
	return &PackageFinderPg{pool: pool}
}

// FindOpenForBids возвращает активные посылки open_for_bids
func (f *PackageFinderPg) FindOpenForBids(ctx context.Context) ([]*domain.CandidatePackage, error) {
	rows, err := f.pool.Query(ctx, `
		SELECT id, tracking_id, sender_id, size,
		       pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
		       bid_deadline, published_at
		FROM packages
		WHERE status = $1 AND is_active`,
		model.PackageStatusOpenForBids)
	if err != nil {
		return nil, fmt.Errorf("find open packages: %w", err)
	}
	defer rows.Close()

	var packages []*domain.CandidatePackage
	for rows.Next() {
		var p domain.CandidatePackage
		err := rows.Scan(
			&p.ID, &p.TrackingID, &p.SenderID, &p.Size,
			&p.PickupLat, &p.PickupLng, &p.DropoffLat, &p.DropoffLng,
			&p.BidDeadline, &p.PublishedAt,
		)
		if err != nil {
			return nil, err
		}
		packages = append(packages, &p)
	}
	return packages, rows.Err()
}

// FindExpired возвращает посылки open_for_bids с истекшим дедлайном
func (f *PackageFinderPg) FindExpired(ctx context.Context, now time.Time) ([]*out.ExpiredPackage, error) {
	rows, err := f.pool.Query(ctx, `
		SELECT id, tracking_id, sender_id, bid_count, deadline_extensions
		FROM packages
		WHERE status = $1 AND is_active AND bid_deadline IS NOT NULL AND bid_deadline < $2`,
		model.PackageStatusOpenForBids, now)
	if err != nil {
		return nil, fmt.Errorf("find expired packages: %w", err)
	}
	defer rows.Close()

	var expired []*out.ExpiredPackage
	for rows.Next() {
		var p out.ExpiredPackage
		if err := rows.Scan(&p.ID, &p.TrackingID, &p.SenderID, &p.BidCount, &p.DeadlineExtensions); err != nil {
			return nil, err
		}
		expired = append(expired, &p)
	}
	return expired, rows.Err()
}

// ExtendDeadline продлевает дедлайн. CAS по deadline_extensions:
// конкурентный sweep продлит только один раз.
func (f *PackageFinderPg) ExtendDeadline(ctx context.Context, packageID string, newDeadline time.Time, prevExtensions int) (bool, error) {
	tag, err := f.pool.Exec(ctx, `
		UPDATE packages SET
			bid_deadline = $2,
			deadline_extensions = deadline_extensions + 1,
			updated_at = now()
		WHERE id = $1 AND status = $3 AND deadline_extensions = $4`,
		packageID, newDeadline, model.PackageStatusOpenForBids, prevExtensions)
	if err != nil {
		return false, fmt.Errorf("extend deadline: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// FailNoBids помечает посылку failed; только если ставок так и нет
func (f *PackageFinderPg) FailNoBids(ctx context.Context, packageID, reason string) (bool, error) {
	tag, err := f.pool.Exec(ctx, `
		UPDATE packages SET
			status = $2,
			is_active = FALSE,
			cancelled_at = now(),
			cancellation_reason = $3,
			updated_at = now()
		WHERE id = $1 AND status = $4 AND bid_count = 0`,
		packageID, model.PackageStatusFailed, reason, model.PackageStatusOpenForBids)
	if err != nil {
		return false, fmt.Errorf("fail package: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
