package in

import (
	"context"
	"time"

	"chaski/internal/delivery/domain"
)

// CreatePackageInput — входные данные для создания посылки
type CreatePackageInput struct {
	SenderID       string
	Size           string
	WeightKg       float64
	PickupAddress  string
	PickupLat      float64
	PickupLng      float64
	PickupContact  string
	DropoffAddress string
	DropoffLat     float64
	DropoffLng     float64
	DropoffContact string
}

// CreatePackageUseCase создает посылку в статусе new
type CreatePackageUseCase interface {
	Execute(ctx context.Context, input CreatePackageInput) (*domain.Package, error)
}

// UpdatePackageInput — правка посылки до публикации
type UpdatePackageInput struct {
	PackageID      string
	ActorID        string
	Size           string
	WeightKg       float64
	PickupAddress  string
	PickupLat      float64
	PickupLng      float64
	PickupContact  string
	DropoffAddress string
	DropoffLat     float64
	DropoffLng     float64
	DropoffContact string
}

// UpdatePackageUseCase правит посылку; допускается только в статусе new
type UpdatePackageUseCase interface {
	Execute(ctx context.Context, input UpdatePackageInput) (*domain.Package, error)
}

// PublishPackageInput открывает посылку для ставок
type PublishPackageInput struct {
	PackageID   string
	ActorID     string
	BidDeadline time.Time
}

// PublishPackageUseCase переводит new -> open_for_bids и выставляет bid_deadline
type PublishPackageUseCase interface {
	Execute(ctx context.Context, input PublishPackageInput) (*domain.Package, error)
}

// GetPackageUseCase возвращает посылку по id
type GetPackageUseCase interface {
	Execute(ctx context.Context, packageID string) (*domain.Package, error)
}

// ListPackagesInput — фильтры списка посылок
type ListPackagesInput struct {
	SenderID  string
	CourierID string
	Status    string
	Limit     int
	Offset    int
}

// ListPackagesUseCase возвращает посылки по фильтру
type ListPackagesUseCase interface {
	Execute(ctx context.Context, input ListPackagesInput) ([]*domain.Package, error)
}

// AdvanceStatusInput — продвижение статуса курьером
type AdvanceStatusInput struct {
	PackageID string
	ActorID   string
	ToStatus  string
}

// AdvanceStatusUseCase выполняет строго монотонный переход статуса
// (bid_selected -> pending_pickup -> in_transit -> delivered)
type AdvanceStatusUseCase interface {
	Execute(ctx context.Context, input AdvanceStatusInput) (*domain.Package, error)
}

// CancelPackageInput — отмена посылки отправителем или админом
type CancelPackageInput struct {
	PackageID    string
	ActorID      string
	ActorRole    string
	Reason       string
	MarkAsFailed bool // только для админа
}

// CancelPackageUseCase атомарно отменяет посылку
type CancelPackageUseCase interface {
	Execute(ctx context.Context, input CancelPackageInput) (*domain.Package, error)
}

// AcceptPackageInput — прямое принятие посылки курьером без ставок
type AcceptPackageInput struct {
	PackageID string
	CourierID string
}

// AcceptPackageUseCase назначает курьера напрямую, минуя торги
type AcceptPackageUseCase interface {
	Execute(ctx context.Context, input AcceptPackageInput) (*domain.Package, error)
}
