package usecase

import (
	"context"
	"fmt"
	"time"

	"chaski/internal/matching/application/ports/in"
	"chaski/internal/matching/application/ports/out"
	"chaski/internal/matching/domain"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/user"
	"chaski/internal/shared/utils"
)

// CreateRouteService реализует CreateRouteUseCase
type CreateRouteService struct {
	routeRepo out.RouteRepository
	userRepo  user.Repository
	log       *logger.Logger
}

// NewCreateRouteService создает новый сервис регистрации маршрутов
func NewCreateRouteService(routeRepo out.RouteRepository, userRepo user.Repository, log *logger.Logger) *CreateRouteService {
	return &CreateRouteService{routeRepo: routeRepo, userRepo: userRepo, log: log}
}

// Execute регистрирует маршрут курьера. Нулевое max_deviation_km
// заменяется профильным значением курьера.
func (s *CreateRouteService) Execute(ctx context.Context, input in.CreateRouteInput) (*domain.Route, error) {
	courier, err := s.userRepo.FindByID(ctx, input.CourierID)
	if err != nil {
		return nil, err
	}
	if !courier.IsActive || !courier.HasRole(model.RoleCourier) {
		return nil, domain.ErrForbidden
	}

	maxDeviation := input.MaxDeviationKm
	if maxDeviation == 0 {
		maxDeviation = courier.MaxDeviationKm
	}

	now := time.Now().UTC()
	route := &domain.Route{
		ID:             utils.NewUUID(),
		CourierID:      input.CourierID,
		StartAddress:   input.StartAddress,
		StartLat:       input.StartLat,
		StartLng:       input.StartLng,
		EndAddress:     input.EndAddress,
		EndLat:         input.EndLat,
		EndLng:         input.EndLng,
		MaxDeviationKm: maxDeviation,
		TripDate:       input.TripDate,
		DepartureTime:  input.DepartureTime,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := route.Validate(); err != nil {
		return nil, err
	}

	if err := s.routeRepo.Create(ctx, route); err != nil {
		s.log.Error(logger.Entry{
			Action:  "create_route_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"courier_id": input.CourierID,
			},
		})
		return nil, fmt.Errorf("create route: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:  "route_created",
		Message: route.ID,
		Additional: map[string]any{
			"courier_id":       input.CourierID,
			"max_deviation_km": maxDeviation,
		},
	})

	return route, nil
}

// ListRoutesService реализует ListRoutesUseCase
type ListRoutesService struct {
	routeRepo out.RouteRepository
}

// NewListRoutesService создает новый сервис списка маршрутов
func NewListRoutesService(routeRepo out.RouteRepository) *ListRoutesService {
	return &ListRoutesService{routeRepo: routeRepo}
}

// Execute возвращает маршруты курьера
func (s *ListRoutesService) Execute(ctx context.Context, courierID string) ([]*domain.Route, error) {
	return s.routeRepo.ListByCourier(ctx, courierID)
}

// DeactivateRouteService реализует DeactivateRouteUseCase
type DeactivateRouteService struct {
	routeRepo out.RouteRepository
	log       *logger.Logger
}

// NewDeactivateRouteService создает новый сервис деактивации маршрутов
func NewDeactivateRouteService(routeRepo out.RouteRepository, log *logger.Logger) *DeactivateRouteService {
	return &DeactivateRouteService{routeRepo: routeRepo, log: log}
}

// Execute выключает маршрут из матчинга; доступно только владельцу
func (s *DeactivateRouteService) Execute(ctx context.Context, input in.DeactivateRouteInput) error {
	route, err := s.routeRepo.FindByID(ctx, input.RouteID)
	if err != nil {
		return err
	}
	if route.CourierID != input.ActorID {
		return domain.ErrForbidden
	}

	if err := s.routeRepo.Deactivate(ctx, input.RouteID); err != nil {
		return fmt.Errorf("deactivate route: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:  "route_deactivated",
		Message: input.RouteID,
		Additional: map[string]any{
			"courier_id": input.ActorID,
		},
	})
	return nil
}
