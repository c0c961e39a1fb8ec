package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"chaski/internal/admin/domain"
	"chaski/internal/model"
)

// StatsPgReader читает агрегаты платформы из PostgreSQL
type StatsPgReader struct {
	pool *pgxpool.Pool
}

// NewStatsPgReader создает новый reader статистики
func NewStatsPgReader(pool *pgxpool.Pool) *StatsPgReader {
	return &StatsPgReader{pool: pool}
}

// PlatformStats собирает сводную статистику одиночными агрегатами
func (r *StatsPgReader) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	stats := &domain.PlatformStats{
		PackagesByStatus: make(map[string]int),
	}

	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE id_verified AND role IN ('courier', 'both'))
		FROM users`,
	).Scan(&stats.TotalUsers, &stats.ActiveUsers, &stats.VerifiedCouriers)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM packages GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("package stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.PackagesByStatus[status] = count
		stats.TotalPackages += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM routes WHERE is_active`,
	).Scan(&stats.ActiveRoutes)
	if err != nil {
		return nil, fmt.Errorf("route stats: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bids WHERE status = $1`, model.BidStatusActive,
	).Scan(&stats.ActiveBids)
	if err != nil {
		return nil, fmt.Errorf("bid stats: %w", err)
	}

	return stats, nil
}

// ListPackages возвращает страницу посылок для админки
func (r *StatsPgReader) ListPackages(ctx context.Context, limit, offset int) ([]domain.PackageSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tracking_id, sender_id, courier_id, status, bid_count, created_at
		FROM packages
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var packages []domain.PackageSummary
	for rows.Next() {
		var p domain.PackageSummary
		if err := rows.Scan(&p.ID, &p.TrackingID, &p.SenderID, &p.CourierID, &p.Status, &p.BidCount, &p.CreatedAt); err != nil {
			return nil, err
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

// ListRoutes возвращает страницу маршрутов для админки
func (r *StatsPgReader) ListRoutes(ctx context.Context, limit, offset int) ([]domain.RouteSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, courier_id, start_address, end_address, max_deviation_km, is_active, created_at
		FROM routes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var routes []domain.RouteSummary
	for rows.Next() {
		var rt domain.RouteSummary
		if err := rows.Scan(&rt.ID, &rt.CourierID, &rt.StartAddress, &rt.EndAddress, &rt.MaxDeviationKm, &rt.IsActive, &rt.CreatedAt); err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}
