package in_amqp

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"chaski/internal/model"
	"chaski/internal/notification/application/usecase"
	"chaski/internal/notification/domain"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/mq"
)

// packageEventMessage — событие жизненного цикла посылки из package_topic
type packageEventMessage struct {
	PackageID      string         `json:"package_id"`
	TrackingID     string         `json:"tracking_id"`
	SenderID       string         `json:"sender_id"`
	CourierID      *string        `json:"courier_id,omitempty"`
	Status         string         `json:"status"`
	AdditionalData map[string]any `json:"additional_data,omitempty"`
}

// PackageEventsConsumer читает события посылок и создает уведомления
type PackageEventsConsumer struct {
	mqConn   *mq.RabbitMQ
	dispatch *usecase.DispatchService
	log      *logger.Logger
}

// NewPackageEventsConsumer создает новый consumer событий посылок
func NewPackageEventsConsumer(mqConn *mq.RabbitMQ, dispatch *usecase.DispatchService, log *logger.Logger) *PackageEventsConsumer {
	return &PackageEventsConsumer{
		mqConn:   mqConn,
		dispatch: dispatch,
		log:      log,
	}
}

// Start подписывается на очереди package_topic
func (c *PackageEventsConsumer) Start(ctx context.Context) error {
	queues := []string{
		"package.bid_submitted",
		"package.bid_selected",
		"package.status_changed",
		"package.cancelled",
	}
	for _, queue := range queues {
		q := queue
		err := c.mqConn.Consume(ctx, q, "notification_service", func(msg amqp.Delivery) {
			if err := c.handleEvent(ctx, q, msg.Body); err != nil {
				c.log.Error(logger.Entry{
					Action:  "handle_package_event_failed",
					Message: err.Error(),
					Error:   &logger.ErrObj{Msg: err.Error()},
					Additional: map[string]any{
						"queue": q,
					},
				})
				_ = msg.Nack(false, false)
				return
			}
			_ = msg.Ack(false)
		})
		if err != nil {
			return fmt.Errorf("consume %s: %w", q, err)
		}
	}
	return nil
}

// handleEvent строит уведомление по типу события
func (c *PackageEventsConsumer) handleEvent(ctx context.Context, queue string, body []byte) error {
	var event packageEventMessage
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("parse package event: %w", err)
	}

	n := c.buildNotification(queue, &event)
	if n == nil {
		return nil
	}

	if err := c.dispatch.Dispatch(ctx, n); err != nil {
		return fmt.Errorf("dispatch notification: %w", err)
	}

	c.log.Debug(logger.Entry{
		Action:    "notification_dispatched",
		Message:   n.Type,
		PackageID: event.PackageID,
		Additional: map[string]any{
			"user_id": n.UserID,
		},
	})
	return nil
}

func (c *PackageEventsConsumer) buildNotification(queue string, event *packageEventMessage) *domain.Notification {
	data := map[string]any{
		"tracking_id": event.TrackingID,
		"status":      event.Status,
	}
	for k, v := range event.AdditionalData {
		data[k] = v
	}

	switch queue {
	case "package.bid_submitted":
		return &domain.Notification{
			UserID:    event.SenderID,
			Type:      model.NotificationBidReceived,
			PackageID: event.PackageID,
			Title:     "Новая ставка по вашей посылке",
			Body:      fmt.Sprintf("По посылке %s поступила ставка курьера", event.TrackingID),
			Data:      data,
		}

	case "package.bid_selected":
		if event.CourierID == nil {
			return nil
		}
		return &domain.Notification{
			UserID:    *event.CourierID,
			Type:      model.NotificationBidSelected,
			PackageID: event.PackageID,
			Title:     "Ваша ставка выбрана",
			Body:      fmt.Sprintf("Отправитель выбрал вас для доставки посылки %s", event.TrackingID),
			Data:      data,
		}

	case "package.status_changed":
		return &domain.Notification{
			UserID:    event.SenderID,
			Type:      model.NotificationStatusChanged,
			PackageID: event.PackageID,
			Title:     "Статус посылки изменен",
			Body:      fmt.Sprintf("Посылка %s: %s", event.TrackingID, event.Status),
			Data:      data,
		}

	case "package.cancelled":
		// Отправитель сам отменил посылку — уведомляем назначенного курьера
		if event.CourierID == nil {
			return nil
		}
		return &domain.Notification{
			UserID:    *event.CourierID,
			Type:      model.NotificationPackageCancelled,
			PackageID: event.PackageID,
			Title:     "Посылка отменена",
			Body:      fmt.Sprintf("Доставка посылки %s отменена отправителем", event.TrackingID),
			Data:      data,
		}
	}

	c.log.Warn(logger.Entry{
		Action:  "unknown_package_event_queue",
		Message: queue,
	})
	return nil
}
