package out

import (
	"context"
	"time"

	"chaski/internal/delivery/domain"
)

// PackageFilter — параметры выборки посылок
type PackageFilter struct {
	SenderID  string
	CourierID string
	Status    string
	Limit     int
	Offset    int
}

// PackageRepository — интерфейс репозитория для работы с посылками
type PackageRepository interface {
	// Create создает новую посылку
	Create(ctx context.Context, pkg *domain.Package) error

	// FindByID возвращает посылку по ID
	FindByID(ctx context.Context, packageID string) (*domain.Package, error)

	// Update правит содержимое посылки, пока она в статусе new.
	// Возвращает false, если посылка уже опубликована.
	Update(ctx context.Context, pkg *domain.Package) (bool, error)

	// FindByTrackingID возвращает посылку по трек-номеру
	FindByTrackingID(ctx context.Context, trackingID string) (*domain.Package, error)

	// List возвращает посылки по фильтру
	List(ctx context.Context, filter PackageFilter) ([]*domain.Package, error)

	// UpdateStatusCAS атомарно переводит посылку из expected в next.
	// Возвращает false если текущий статус не совпал с expected (гонка).
	UpdateStatusCAS(ctx context.Context, packageID, expected, next string, at time.Time) (bool, error)

	// Publish атомарно переводит new -> open_for_bids и выставляет дедлайн ставок
	Publish(ctx context.Context, packageID string, deadline time.Time) (bool, error)

	// Cancel атомарно отменяет посылку если текущий статус позволяет.
	// failed=true помечает посылку как failed вместо canceled.
	Cancel(ctx context.Context, packageID, reason string, failed bool, allowedFrom []string) (bool, error)

	// AssignCourier атомарно переводит open_for_bids -> bid_selected с назначением курьера
	// (прямой accept, без ставки)
	AssignCourier(ctx context.Context, packageID, courierID string) (bool, error)
}
