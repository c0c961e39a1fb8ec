package out_amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"chaski/internal/delivery/application/ports/out"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/mq"
)

// PackageEventPublisher публикует события посылок в RabbitMQ
type PackageEventPublisher struct {
	mq  *mq.RabbitMQ
	log *logger.Logger
}

// NewPackageEventPublisher создает новый publisher
func NewPackageEventPublisher(mqConn *mq.RabbitMQ, log *logger.Logger) *PackageEventPublisher {
	return &PackageEventPublisher{
		mq:  mqConn,
		log: log,
	}
}

// PublishPackageEvent публикует событие посылки в RabbitMQ
func (p *PackageEventPublisher) PublishPackageEvent(ctx context.Context, eventType string, data out.PackageEventData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	routingKey := getRoutingKey(eventType)

	if err := p.mq.Publish(ctx, mq.PackageExchange, routingKey, payload); err != nil {
		p.log.Error(logger.Entry{
			Action:    "publish_package_event_failed",
			Message:   err.Error(),
			PackageID: data.PackageID,
			Error:     &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"event_type":  eventType,
				"routing_key": routingKey,
			},
		})
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}

	p.log.Debug(logger.Entry{
		Action:    "package_event_published",
		Message:   eventType,
		PackageID: data.PackageID,
		Additional: map[string]any{
			"routing_key": routingKey,
		},
	})

	return nil
}

// getRoutingKey возвращает routing key для события
func getRoutingKey(eventType string) string {
	switch eventType {
	case model.EventPackagePublished:
		return "package.published"
	case model.EventBidSubmitted:
		return "package.bid_submitted"
	case model.EventBidSelected:
		return "package.bid_selected"
	case model.EventPackageStatusChanged:
		return "package.status_changed"
	case model.EventPackageCancelled:
		return "package.cancelled"
	default:
		return "package.event"
	}
}
