package out

import (
	"context"
	"time"

	"chaski/internal/matching/domain"
)

// NotifyOptions управляет cooldown-окном уведомлений о совпадениях.
// Window задает давность, в пределах которой повтор считается дубликатом;
// Force отправляет уведомление заново независимо от окна.
type NotifyOptions struct {
	Force  bool
	Window time.Duration
}

// MatchNotifier доставляет курьеру уведомление о подходящей посылке.
// Реализация обязана дедуплицировать в пределах opts.Window: повторное
// уведомление о той же посылке тому же курьеру возвращает created=false,
// пока окно не истекло и не задан opts.Force.
type MatchNotifier interface {
	NotifyMatch(ctx context.Context, match *domain.Match, opts NotifyOptions) (created bool, err error)
}

// SenderNotifier уведомляет отправителя о событиях дедлайна
type SenderNotifier interface {
	// NotifyBidsWaiting напоминает отправителю выбрать ставку
	NotifyBidsWaiting(ctx context.Context, senderID, packageID string, bidCount int) (created bool, err error)

	// NotifyDeadlineExtended сообщает о продлении дедлайна
	NotifyDeadlineExtended(ctx context.Context, senderID, packageID string) (created bool, err error)

	// NotifyPackageFailed сообщает о снятии посылки без ставок
	NotifyPackageFailed(ctx context.Context, senderID, packageID string) (created bool, err error)
}

// MatchEventPublisher публикует результаты матчинга в RabbitMQ
type MatchEventPublisher interface {
	// PublishMatchFound публикует событие найденного совпадения
	PublishMatchFound(ctx context.Context, match *domain.Match) error

	// PublishJobCompleted публикует сводку завершенного job
	PublishJobCompleted(ctx context.Context, result *domain.JobResult) error
}
