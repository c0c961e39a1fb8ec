package usecase

import (
	"context"
	"fmt"
	"time"

	"chaski/internal/matching/application/ports/in"
	"chaski/internal/matching/application/ports/out"
	"chaski/internal/shared/logger"
)

// SweepDeadlinesService реализует SweepDeadlinesUseCase.
// Посылка без ставок получает продление дедлайна; после maxExtensions
// продлений помечается failed. Посылка со ставками не трогается —
// отправителю отправляется напоминание выбрать ставку.
type SweepDeadlinesService struct {
	store         out.DeadlineStore
	notifier      out.SenderNotifier
	extension     time.Duration
	maxExtensions int
	log           *logger.Logger
}

// NewSweepDeadlinesService создает новый сервис обработки дедлайнов
func NewSweepDeadlinesService(
	store out.DeadlineStore,
	notifier out.SenderNotifier,
	extension time.Duration,
	maxExtensions int,
	log *logger.Logger,
) *SweepDeadlinesService {
	return &SweepDeadlinesService{
		store:         store,
		notifier:      notifier,
		extension:     extension,
		maxExtensions: maxExtensions,
		log:           log,
	}
}

// Execute обрабатывает все посылки с истекшим дедлайном ставок
func (s *SweepDeadlinesService) Execute(ctx context.Context) (*in.SweepResult, error) {
	now := time.Now().UTC()
	expired, err := s.store.FindExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("find expired packages: %w", err)
	}

	result := &in.SweepResult{}
	for _, pkg := range expired {
		switch {
		case pkg.BidCount > 0:
			// Ставки есть — напоминаем отправителю выбрать
			created, err := s.notifier.NotifyBidsWaiting(ctx, pkg.SenderID, pkg.ID, pkg.BidCount)
			if err != nil {
				s.logSweepError("notify_bids_waiting_failed", pkg.ID, err)
				continue
			}
			if created {
				result.Notified++
			}

		case pkg.DeadlineExtensions < s.maxExtensions:
			ok, err := s.store.ExtendDeadline(ctx, pkg.ID, now.Add(s.extension), pkg.DeadlineExtensions)
			if err != nil {
				s.logSweepError("extend_deadline_failed", pkg.ID, err)
				continue
			}
			if !ok {
				// Конкурентное изменение, возьмем на следующем проходе
				continue
			}
			result.Extended++
			if _, err := s.notifier.NotifyDeadlineExtended(ctx, pkg.SenderID, pkg.ID); err != nil {
				s.logSweepError("notify_deadline_extended_failed", pkg.ID, err)
			}

		default:
			ok, err := s.store.FailNoBids(ctx, pkg.ID, "no bids received")
			if err != nil {
				s.logSweepError("fail_package_failed", pkg.ID, err)
				continue
			}
			if !ok {
				continue
			}
			result.Failed++
			if _, err := s.notifier.NotifyPackageFailed(ctx, pkg.SenderID, pkg.ID); err != nil {
				s.logSweepError("notify_package_failed_failed", pkg.ID, err)
			}
		}
	}

	if result.Extended+result.Failed+result.Notified > 0 {
		s.log.Info(logger.Entry{
			Action:  "deadline_sweep_completed",
			Message: fmt.Sprintf("%d extended, %d failed, %d notified", result.Extended, result.Failed, result.Notified),
		})
	}

	return result, nil
}

func (s *SweepDeadlinesService) logSweepError(action, packageID string, err error) {
	s.log.Error(logger.Entry{
		Action:    action,
		Message:   err.Error(),
		PackageID: packageID,
		Error:     &logger.ErrObj{Msg: err.Error()},
	})
}
