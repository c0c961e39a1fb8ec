package domain

import (
	"fmt"
	"time"
)

// MaxBidMessageLen ограничивает длину сообщения курьера в ставке
const MaxBidMessageLen = 500

// minPickupLead — минимальный зазор между подачей ставки и забором посылки
const minPickupLead = time.Hour

// Bid представляет предложение курьера по посылке.
type Bid struct {
	ID                     string     `json:"id" db:"id"`
	PackageID              string     `json:"package_id" db:"package_id"`
	CourierID              string     `json:"courier_id" db:"courier_id"`
	ProposedPrice          float64    `json:"proposed_price" db:"proposed_price"`
	EstimatedDeliveryHours *int       `json:"estimated_delivery_hours,omitempty" db:"estimated_delivery_hours"`
	EstimatedPickupTime    *time.Time `json:"estimated_pickup_time,omitempty" db:"estimated_pickup_time"`
	Message                string     `json:"message" db:"message"`
	Status                 string     `json:"status" db:"status"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
}

// Validate проверяет инварианты новой ставки относительно момента подачи now.
func (b *Bid) Validate(now time.Time) error {
	if b.ProposedPrice <= 0 {
		return fmt.Errorf("%w: proposed price must be positive", ErrInvalidBid)
	}
	if b.EstimatedDeliveryHours != nil && *b.EstimatedDeliveryHours <= 0 {
		return fmt.Errorf("%w: estimated delivery hours must be positive", ErrInvalidBid)
	}
	if b.EstimatedPickupTime != nil && b.EstimatedPickupTime.Before(now.Add(minPickupLead)) {
		return fmt.Errorf("%w: estimated pickup time must be at least one hour from now", ErrInvalidBid)
	}
	if len(b.Message) > MaxBidMessageLen {
		return fmt.Errorf("%w: message exceeds %d characters", ErrInvalidBid, MaxBidMessageLen)
	}
	return nil
}
