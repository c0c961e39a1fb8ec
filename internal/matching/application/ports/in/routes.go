package in

import (
	"context"
	"time"

	"chaski/internal/matching/domain"
)

// CreateRouteInput — входные данные маршрута курьера
type CreateRouteInput struct {
	CourierID      string
	StartAddress   string
	StartLat       float64
	StartLng       float64
	EndAddress     string
	EndLat         float64
	EndLng         float64
	MaxDeviationKm float64
	TripDate       *time.Time
	DepartureTime  *time.Time
}

// CreateRouteUseCase регистрирует маршрут курьера
type CreateRouteUseCase interface {
	Execute(ctx context.Context, input CreateRouteInput) (*domain.Route, error)
}

// ListRoutesUseCase возвращает маршруты курьера
type ListRoutesUseCase interface {
	Execute(ctx context.Context, courierID string) ([]*domain.Route, error)
}

// DeactivateRouteInput — деактивация маршрута владельцем
type DeactivateRouteInput struct {
	RouteID string
	ActorID string
}

// DeactivateRouteUseCase выключает маршрут из матчинга
type DeactivateRouteUseCase interface {
	Execute(ctx context.Context, input DeactivateRouteInput) error
}
