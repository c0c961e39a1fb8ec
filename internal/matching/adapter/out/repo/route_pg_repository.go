package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chaski/internal/matching/domain"
)

const routeColumns = `
	id, courier_id, start_address, start_lat, start_lng,
	end_address, end_lat, end_lng, max_deviation_km,
	trip_date, departure_time, is_active, created_at, updated_at`

// RoutePgRepository реализует RouteRepository поверх PostgreSQL
type RoutePgRepository struct {
	pool *pgxpool.Pool
}

// NewRoutePgRepository создает новый репозиторий маршрутов
func NewRoutePgRepository(pool *pgxpool.Pool) *RoutePgRepository {
	return &RoutePgRepository{pool: pool}
}

type pgScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row pgScanner) (*domain.Route, error) {
	var r domain.Route
	err := row.Scan(
		&r.ID, &r.CourierID, &r.StartAddress, &r.StartLat, &r.StartLng,
		&r.EndAddress, &r.EndLat, &r.EndLng, &r.MaxDeviationKm,
		&r.TripDate, &r.DepartureTime, &r.IsActive, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRouteNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Create создает новый маршрут
func (r *RoutePgRepository) Create(ctx context.Context, route *domain.Route) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO routes (
			id, courier_id, start_address, start_lat, start_lng,
			end_address, end_lat, end_lng, max_deviation_km,
			trip_date, departure_time, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		route.ID, route.CourierID, route.StartAddress, route.StartLat, route.StartLng,
		route.EndAddress, route.EndLat, route.EndLng, route.MaxDeviationKm,
		route.TripDate, route.DepartureTime, route.IsActive, route.CreatedAt, route.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert route: %w", err)
	}
	return nil
}

// FindByID возвращает маршрут по ID
func (r *RoutePgRepository) FindByID(ctx context.Context, routeID string) (*domain.Route, error) {
	return scanRoute(r.pool.QueryRow(ctx,
		`SELECT`+routeColumns+` FROM routes WHERE id = $1`, routeID))
}

// ListByCourier возвращает маршруты курьера, активные первыми
func (r *RoutePgRepository) ListByCourier(ctx context.Context, courierID string) ([]*domain.Route, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+routeColumns+`
		FROM routes
		WHERE courier_id = $1
		ORDER BY is_active DESC, created_at DESC`, courierID)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()
	return collectRoutes(rows)
}

// ListActive возвращает все активные маршруты
func (r *RoutePgRepository) ListActive(ctx context.Context) ([]*domain.Route, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT`+routeColumns+` FROM routes WHERE is_active ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list active routes: %w", err)
	}
	defer rows.Close()
	return collectRoutes(rows)
}

// Deactivate выключает маршрут
func (r *RoutePgRepository) Deactivate(ctx context.Context, routeID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE routes SET is_active = FALSE, updated_at = now() WHERE id = $1`, routeID)
	if err != nil {
		return fmt.Errorf("deactivate route: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRouteNotFound
	}
	return nil
}

func collectRoutes(rows pgx.Rows) ([]*domain.Route, error) {
	var routes []*domain.Route
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}
