package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"chaski/internal/matching/application/ports/in"
	"chaski/internal/matching/application/ports/out"
	"chaski/internal/matching/domain"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
)

// RunMatchingJobService реализует RunMatchingJobUseCase.
// Одновременно выполняется не более одного job: повторный запуск
// во время работы возвращает ErrJobAlreadyRunning.
type RunMatchingJobService struct {
	routeRepo out.RouteRepository
	finder    out.PackageFinder
	notifier  out.MatchNotifier
	publisher out.MatchEventPublisher
	log       *logger.Logger
	running   atomic.Bool
}

// NewRunMatchingJobService создает новый сервис matching job
func NewRunMatchingJobService(
	routeRepo out.RouteRepository,
	finder out.PackageFinder,
	notifier out.MatchNotifier,
	publisher out.MatchEventPublisher,
	log *logger.Logger,
) *RunMatchingJobService {
	return &RunMatchingJobService{
		routeRepo: routeRepo,
		finder:    finder,
		notifier:  notifier,
		publisher: publisher,
		log:       log,
	}
}

// Execute сопоставляет открытые посылки с активными маршрутами.
// Повторный прогон по тем же данным в пределах cooldown-окна не создает
// новых уведомлений; force отправляет уведомления заново.
func (s *RunMatchingJobService) Execute(ctx context.Context, input in.RunMatchingJobInput) (*domain.JobResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, domain.ErrJobAlreadyRunning
	}
	defer s.running.Store(false)

	started := time.Now().UTC()
	result := &domain.JobResult{StartedAt: started}

	window := input.Lookback
	if window <= 0 {
		window = model.DefaultMatchLookback
	}
	opts := out.NotifyOptions{Force: input.Force, Window: window}

	packages, err := s.finder.FindOpenForBids(ctx)
	if err != nil {
		return nil, fmt.Errorf("find open packages: %w", err)
	}
	routes, err := s.routeRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active routes: %w", err)
	}
	result.PackagesScanned = len(packages)
	result.RoutesScanned = len(routes)

	for _, route := range routes {
		detail := domain.RouteDetail{
			RouteID:      route.ID,
			CourierID:    route.CourierID,
			StartAddress: route.StartAddress,
			EndAddress:   route.EndAddress,
		}

		for _, pkg := range packages {
			// Отправитель не матчится со своей же посылкой
			if route.CourierID == pkg.SenderID {
				continue
			}
			deviation := route.Deviation(pkg)
			if deviation > route.MaxDeviationKm {
				continue
			}

			result.MatchesFound++
			match := &domain.Match{Package: pkg, RouteID: route.ID, CourierID: route.CourierID}

			created, err := s.notifier.NotifyMatch(ctx, match, opts)
			if err != nil {
				s.log.Error(logger.Entry{
					Action:    "notify_match_failed",
					Message:   err.Error(),
					PackageID: pkg.ID,
					Error:     &logger.ErrObj{Msg: err.Error()},
					Additional: map[string]any{
						"courier_id": route.CourierID,
					},
				})
				continue
			}
			detail.Matches = append(detail.Matches, domain.RouteMatchDetail{
				PackageID:  pkg.ID,
				TrackingID: pkg.TrackingID,
				DistanceKm: deviation,
				Notified:   created,
			})
			if !created {
				result.NotificationsSkipped++
				continue
			}
			result.NotificationsSent++

			if err := s.publisher.PublishMatchFound(ctx, match); err != nil {
				s.log.Error(logger.Entry{
					Action:    "publish_match_found_failed",
					Message:   err.Error(),
					PackageID: pkg.ID,
					Error:     &logger.ErrObj{Msg: err.Error()},
				})
			}
		}

		if len(detail.Matches) > 0 {
			result.RouteDetails = append(result.RouteDetails, detail)
		}
	}

	result.Duration = time.Since(started)

	s.log.Info(logger.Entry{
		Action:  "matching_job_completed",
		Message: fmt.Sprintf("%d matches, %d notified, %d skipped", result.MatchesFound, result.NotificationsSent, result.NotificationsSkipped),
		Additional: map[string]any{
			"packages_scanned": result.PackagesScanned,
			"routes_scanned":   result.RoutesScanned,
			"duration_ms":      result.Duration.Milliseconds(),
			"forced":           input.Force,
		},
	})

	if err := s.publisher.PublishJobCompleted(ctx, result); err != nil {
		s.log.Error(logger.Entry{
			Action:  "publish_job_completed_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	return result, nil
}
