package domain

import (
	"time"

	"chaski/internal/model"
)

// Package представляет основную сущность посылки.
type Package struct {
	ID                 string     `json:"id" db:"id"`
	TrackingID         string     `json:"tracking_id" db:"tracking_id"`
	SenderID           string     `json:"sender_id" db:"sender_id"`
	CourierID          *string    `json:"courier_id,omitempty" db:"courier_id"`
	Status             string     `json:"status" db:"status"`
	Size               string     `json:"size" db:"size"`
	WeightKg           float64    `json:"weight_kg" db:"weight_kg"`
	PickupAddress      string     `json:"pickup_address" db:"pickup_address"`
	PickupLat          float64    `json:"pickup_lat" db:"pickup_lat"`
	PickupLng          float64    `json:"pickup_lng" db:"pickup_lng"`
	PickupContact      string     `json:"pickup_contact" db:"pickup_contact"`
	DropoffAddress     string     `json:"dropoff_address" db:"dropoff_address"`
	DropoffLat         float64    `json:"dropoff_lat" db:"dropoff_lat"`
	DropoffLng         float64    `json:"dropoff_lng" db:"dropoff_lng"`
	DropoffContact     string     `json:"dropoff_contact" db:"dropoff_contact"`
	Price              *float64   `json:"price,omitempty" db:"price"`
	BidDeadline        *time.Time `json:"bid_deadline,omitempty" db:"bid_deadline"`
	BidCount           int        `json:"bid_count" db:"bid_count"`
	SelectedBidID      *string    `json:"selected_bid_id,omitempty" db:"selected_bid_id"`
	DeadlineExtensions int        `json:"deadline_extensions" db:"deadline_extensions"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	PublishedAt        *time.Time `json:"published_at,omitempty" db:"published_at"`
	MatchedAt          *time.Time `json:"matched_at,omitempty" db:"matched_at"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	PickedUpAt         *time.Time `json:"picked_up_at,omitempty" db:"picked_up_at"`
	DeliveredAt        *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancellationReason *string    `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// forwardTransitions — строго монотонный порядок статусов.
// canceled/failed сюда не входят: отмена идет только через
// CancelPackageService, где проставляются is_active и cancelled_at.
var forwardTransitions = map[string]string{
	model.PackageStatusNew:           model.PackageStatusOpenForBids,
	model.PackageStatusOpenForBids:   model.PackageStatusBidSelected,
	model.PackageStatusBidSelected:   model.PackageStatusPendingPickup,
	model.PackageStatusPendingPickup: model.PackageStatusInTransit,
	model.PackageStatusInTransit:     model.PackageStatusDelivered,
}

// IsTerminalStatus проверяет, является ли статус терминальным
func IsTerminalStatus(status string) bool {
	switch status {
	case model.PackageStatusDelivered, model.PackageStatusCanceled, model.PackageStatusFailed:
		return true
	}
	return false
}

// CanTransition проверяет допустимость прямого перехода from -> to.
// Разрешен только следующий шаг жизненного цикла; canceled/failed
// через продвижение статуса недостижимы.
func CanTransition(from, to string) bool {
	if IsTerminalStatus(from) {
		return false
	}
	return forwardTransitions[from] == to
}

// IsTerminal проверяет, завершен ли жизненный цикл посылки
func (p *Package) IsTerminal() bool {
	return IsTerminalStatus(p.Status)
}

// AcceptsBids проверяет, открыта ли посылка для ставок
func (p *Package) AcceptsBids() bool {
	return p.IsActive && p.Status == model.PackageStatusOpenForBids
}

// CancellableBySender — отмена отправителем разрешена пока курьер
// не получил посылку физически.
func (p *Package) CancellableBySender() bool {
	if !p.IsActive {
		return false
	}
	switch p.Status {
	case model.PackageStatusNew, model.PackageStatusOpenForBids:
		return true
	}
	return false
}

// HasCustody проверяет, началась ли физическая передача посылки курьеру
func (p *Package) HasCustody() bool {
	switch p.Status {
	case model.PackageStatusInTransit, model.PackageStatusDelivered:
		return true
	}
	return false
}
