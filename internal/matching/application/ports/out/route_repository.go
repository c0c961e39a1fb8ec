package out

import (
	"context"

	"chaski/internal/matching/domain"
)

// RouteRepository — интерфейс репозитория маршрутов
type RouteRepository interface {
	// Create создает новый маршрут
	Create(ctx context.Context, route *domain.Route) error

	// FindByID возвращает маршрут по ID
	FindByID(ctx context.Context, routeID string) (*domain.Route, error)

	// ListByCourier возвращает маршруты курьера (активные первыми)
	ListByCourier(ctx context.Context, courierID string) ([]*domain.Route, error)

	// ListActive возвращает все активные маршруты
	ListActive(ctx context.Context) ([]*domain.Route, error)

	// Deactivate выключает маршрут
	Deactivate(ctx context.Context, routeID string) error
}
