package in

import (
	"context"
	"time"

	"chaski/internal/matching/domain"
)

// RunMatchingJobInput — параметры запуска matching job.
// Lookback задает cooldown-окно уведомлений (по умолчанию сутки);
// Force=true отправляет уведомления заново, минуя окно.
type RunMatchingJobInput struct {
	Force    bool
	Lookback time.Duration
}

// RunMatchingJobUseCase сопоставляет открытые посылки с активными маршрутами
type RunMatchingJobUseCase interface {
	Execute(ctx context.Context, input RunMatchingJobInput) (*domain.JobResult, error)
}

// SweepResult — сводка прохода по просроченным дедлайнам
type SweepResult struct {
	Extended int `json:"extended"`
	Failed   int `json:"failed"`
	Notified int `json:"notified"`
}

// SweepDeadlinesUseCase обрабатывает посылки с истекшим дедлайном ставок
type SweepDeadlinesUseCase interface {
	Execute(ctx context.Context) (*SweepResult, error)
}
