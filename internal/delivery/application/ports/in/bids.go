package in

import (
	"context"
	"time"

	"chaski/internal/delivery/domain"
)

// SubmitBidInput — входные данные ставки курьера
type SubmitBidInput struct {
	PackageID              string
	CourierID              string
	ProposedPrice          float64
	EstimatedDeliveryHours *int
	EstimatedPickupTime    *time.Time
	Message                string
}

// SubmitBidOutput — результат подачи ставки
type SubmitBidOutput struct {
	Bid        *domain.Bid `json:"bid"`
	Superseded bool        `json:"superseded"` // заменена ли предыдущая ставка курьера
	BidCount   int         `json:"bid_count"`
}

// SubmitBidUseCase подает ставку; повторная подача заменяет предыдущую
type SubmitBidUseCase interface {
	Execute(ctx context.Context, input SubmitBidInput) (*SubmitBidOutput, error)
}

// SelectBidInput — выбор ставки отправителем
type SelectBidInput struct {
	PackageID string
	BidID     string
	ActorID   string
}

// SelectBidOutput — результат выбора ставки
type SelectBidOutput struct {
	Package *domain.Package `json:"package"`
	Bid     *domain.Bid     `json:"bid"`
}

// SelectBidUseCase выбирает ставку, отклоняя остальные
type SelectBidUseCase interface {
	Execute(ctx context.Context, input SelectBidInput) (*SelectBidOutput, error)
}

// ListBidsUseCase возвращает ставки посылки в порядке подачи
type ListBidsUseCase interface {
	Execute(ctx context.Context, packageID string, actorID string) ([]*domain.Bid, error)
}
