package usecase

import (
	"context"

	"chaski/internal/admin/application/ports/in"
	"chaski/internal/admin/application/ports/out"
	"chaski/internal/admin/domain"
)

// PlatformStatsService возвращает агрегаты платформы
type PlatformStatsService struct {
	reader out.StatsReader
}

// NewPlatformStatsService создает новый сервис
func NewPlatformStatsService(reader out.StatsReader) *PlatformStatsService {
	return &PlatformStatsService{reader: reader}
}

// Execute читает сводную статистику
func (s *PlatformStatsService) Execute(ctx context.Context) (*domain.PlatformStats, error) {
	return s.reader.PlatformStats(ctx)
}

// ListPackagesService — список посылок для админки
type ListPackagesService struct {
	reader out.StatsReader
}

// NewListPackagesService создает новый сервис
func NewListPackagesService(reader out.StatsReader) *ListPackagesService {
	return &ListPackagesService{reader: reader}
}

// Execute возвращает страницу посылок
func (s *ListPackagesService) Execute(ctx context.Context, limit, offset int) ([]domain.PackageSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return s.reader.ListPackages(ctx, limit, offset)
}

// ListRoutesService — список маршрутов для админки
type ListRoutesService struct {
	reader out.StatsReader
}

// NewListRoutesService создает новый сервис
func NewListRoutesService(reader out.StatsReader) *ListRoutesService {
	return &ListRoutesService{reader: reader}
}

// Execute возвращает страницу маршрутов
func (s *ListRoutesService) Execute(ctx context.Context, limit, offset int) ([]domain.RouteSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return s.reader.ListRoutes(ctx, limit, offset)
}

// TriggerMatchingService запускает matching job через matching сервис
type TriggerMatchingService struct {
	trigger out.MatchingTrigger
}

// NewTriggerMatchingService создает новый сервис
func NewTriggerMatchingService(trigger out.MatchingTrigger) *TriggerMatchingService {
	return &TriggerMatchingService{trigger: trigger}
}

// Execute проксирует запуск matching job
func (s *TriggerMatchingService) Execute(ctx context.Context, input in.TriggerMatchingInput) (*out.MatchingRunSummary, error) {
	if input.LookbackHours < 0 {
		input.LookbackHours = 0
	}
	return s.trigger.RunMatchingJob(ctx, input.Force, input.LookbackHours)
}
