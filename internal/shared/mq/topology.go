package mq

import (
	"context"
	"fmt"

	"chaski/internal/shared/logger"
)

// Имена exchanges
const (
	PackageExchange  = "package_topic"
	MatchingExchange = "matching_topic"
)

// SetupTopology создает все exchanges, queues и bindings
func SetupTopology(ctx context.Context, mq *RabbitMQ, log *logger.Logger) error {
	ch := mq.Channel()
	if ch == nil {
		return fmt.Errorf("rabbitmq channel not available")
	}

	// 1. Exchange: package_topic (topic) — события жизненного цикла посылок
	if err := ch.ExchangeDeclare(
		PackageExchange, // name
		"topic",         // type
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // args
	); err != nil {
		return fmt.Errorf("declare package_topic: %w", err)
	}

	// 2. Exchange: matching_topic (topic) — результаты matching job
	if err := ch.ExchangeDeclare(
		MatchingExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare matching_topic: %w", err)
	}

	// 3. Очереди для package_topic
	packageQueues := []string{
		"package.published",
		"package.bid_submitted",
		"package.bid_selected",
		"package.status_changed",
		"package.cancelled",
	}
	for _, q := range packageQueues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
		routingKey := q
		if err := ch.QueueBind(q, routingKey, PackageExchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q, err)
		}
	}

	// 4. Очереди для matching_topic
	matchingQueues := []string{
		"match.found",
		"match.job_completed",
	}
	for _, q := range matchingQueues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
		routingKey := q
		if err := ch.QueueBind(q, routingKey, MatchingExchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q, err)
		}
	}

	log.Info(logger.Entry{
		Action:  "topology_setup_complete",
		Message: "all exchanges and queues created",
	})

	return nil
}
