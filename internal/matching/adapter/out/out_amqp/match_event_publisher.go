package out_amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"chaski/internal/matching/domain"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/mq"
)

// MatchEventPublisher публикует результаты матчинга в RabbitMQ
type MatchEventPublisher struct {
	mq  *mq.RabbitMQ
	log *logger.Logger
}

// NewMatchEventPublisher создает новый publisher
func NewMatchEventPublisher(mqConn *mq.RabbitMQ, log *logger.Logger) *MatchEventPublisher {
	return &MatchEventPublisher{
		mq:  mqConn,
		log: log,
	}
}

// matchFoundEvent — полезная нагрузка события match.found
type matchFoundEvent struct {
	PackageID  string `json:"package_id"`
	TrackingID string `json:"tracking_id"`
	SenderID   string `json:"sender_id"`
	RouteID    string `json:"route_id"`
	CourierID  string `json:"courier_id"`
}

// PublishMatchFound публикует событие найденного совпадения
func (p *MatchEventPublisher) PublishMatchFound(ctx context.Context, match *domain.Match) error {
	payload, err := json.Marshal(matchFoundEvent{
		PackageID:  match.Package.ID,
		TrackingID: match.Package.TrackingID,
		SenderID:   match.Package.SenderID,
		RouteID:    match.RouteID,
		CourierID:  match.CourierID,
	})
	if err != nil {
		return fmt.Errorf("marshal match event: %w", err)
	}

	if err := p.mq.Publish(ctx, mq.MatchingExchange, "match.found", payload); err != nil {
		p.log.Error(logger.Entry{
			Action:    "publish_match_found_failed",
			Message:   err.Error(),
			PackageID: match.Package.ID,
			Error:     &logger.ErrObj{Msg: err.Error()},
		})
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}

	p.log.Debug(logger.Entry{
		Action:    "match_found_published",
		Message:   match.RouteID,
		PackageID: match.Package.ID,
		Additional: map[string]any{
			"courier_id": match.CourierID,
		},
	})
	return nil
}

// PublishJobCompleted публикует сводку завершенного matching job
func (p *MatchEventPublisher) PublishJobCompleted(ctx context.Context, result *domain.JobResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal job result: %w", err)
	}

	if err := p.mq.Publish(ctx, mq.MatchingExchange, "match.job_completed", payload); err != nil {
		p.log.Error(logger.Entry{
			Action:  "publish_job_completed_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}
	return nil
}
