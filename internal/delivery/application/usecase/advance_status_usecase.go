package usecase

import (
	"context"
	"fmt"
	"time"

	"chaski/internal/delivery/application/ports/in"
	"chaski/internal/delivery/application/ports/out"
	"chaski/internal/delivery/domain"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
)

// AdvanceStatusService реализует AdvanceStatusUseCase
type AdvanceStatusService struct {
	pkgRepo   out.PackageRepository
	publisher out.EventPublisher
	log       *logger.Logger
}

// NewAdvanceStatusService создает новый сервис продвижения статуса
func NewAdvanceStatusService(
	pkgRepo out.PackageRepository,
	publisher out.EventPublisher,
	log *logger.Logger,
) *AdvanceStatusService {
	return &AdvanceStatusService{pkgRepo: pkgRepo, publisher: publisher, log: log}
}

// Execute выполняет строго монотонный переход статуса посылки.
// Продвигать статус может только назначенный курьер.
func (s *AdvanceStatusService) Execute(ctx context.Context, input in.AdvanceStatusInput) (*domain.Package, error) {
	pkg, err := s.pkgRepo.FindByID(ctx, input.PackageID)
	if err != nil {
		return nil, err
	}

	if pkg.CourierID == nil || *pkg.CourierID != input.ActorID {
		return nil, domain.ErrForbidden
	}
	if !domain.CanTransition(pkg.Status, input.ToStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrStatusConflict, pkg.Status, input.ToStatus)
	}

	// CAS: если между чтением и записью статус изменился, 0 строк -> конфликт
	ok, err := s.pkgRepo.UpdateStatusCAS(ctx, pkg.ID, pkg.Status, input.ToStatus, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("advance status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: concurrent update", domain.ErrStatusConflict)
	}

	updated, err := s.pkgRepo.FindByID(ctx, pkg.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info(logger.Entry{
		Action:    "package_status_advanced",
		Message:   fmt.Sprintf("%s -> %s", pkg.Status, input.ToStatus),
		PackageID: pkg.ID,
	})

	eventData := out.PackageEventData{
		PackageID:  updated.ID,
		TrackingID: updated.TrackingID,
		SenderID:   updated.SenderID,
		CourierID:  updated.CourierID,
		Status:     updated.Status,
		AdditionalData: map[string]interface{}{
			"previous_status": pkg.Status,
		},
	}
	if err := s.publisher.PublishPackageEvent(ctx, model.EventPackageStatusChanged, eventData); err != nil {
		s.log.Error(logger.Entry{
			Action:    "publish_status_event_failed",
			Message:   err.Error(),
			PackageID: updated.ID,
			Error:     &logger.ErrObj{Msg: err.Error()},
		})
	}

	return updated, nil
}
