package out

import (
	"context"
)

// PackageEventData — данные события жизненного цикла посылки
type PackageEventData struct {
	PackageID      string                 `json:"package_id"`
	TrackingID     string                 `json:"tracking_id"`
	SenderID       string                 `json:"sender_id"`
	CourierID      *string                `json:"courier_id,omitempty"`
	Status         string                 `json:"status"`
	AdditionalData map[string]interface{} `json:"additional_data,omitempty"`
}

// EventPublisher — интерфейс для публикации событий в RabbitMQ
type EventPublisher interface {
	// PublishPackageEvent публикует событие посылки
	// eventType: PACKAGE_PUBLISHED | BID_SUBMITTED | BID_SELECTED | PACKAGE_STATUS_CHANGED | PACKAGE_CANCELLED
	PublishPackageEvent(ctx context.Context, eventType string, data PackageEventData) error
}
