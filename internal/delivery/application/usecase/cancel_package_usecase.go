package usecase

import (
	"context"
	"fmt"

	"chaski/internal/delivery/application/ports/in"
	"chaski/internal/delivery/application/ports/out"
	"chaski/internal/delivery/domain"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
)

// CancelPackageService реализует CancelPackageUseCase
type CancelPackageService struct {
	pkgRepo   out.PackageRepository
	publisher out.EventPublisher
	log       *logger.Logger
}

// NewCancelPackageService создает новый сервис отмены посылки
func NewCancelPackageService(
	pkgRepo out.PackageRepository,
	publisher out.EventPublisher,
	log *logger.Logger,
) *CancelPackageService {
	return &CancelPackageService{pkgRepo: pkgRepo, publisher: publisher, log: log}
}

// Execute атомарно отменяет посылку. Отправитель может отменить до выбора
// ставки, админ — в любом нетерминальном статусе. Гонка отмены с выбором
// ставки разрешается на уровне БД: побеждает первая запись.
func (s *CancelPackageService) Execute(ctx context.Context, input in.CancelPackageInput) (*domain.Package, error) {
	pkg, err := s.pkgRepo.FindByID(ctx, input.PackageID)
	if err != nil {
		return nil, err
	}

	isAdmin := input.ActorRole == model.RoleAdmin
	if !isAdmin && pkg.SenderID != input.ActorID {
		return nil, domain.ErrForbidden
	}
	if input.MarkAsFailed && !isAdmin {
		return nil, domain.ErrForbidden
	}

	var allowedFrom []string
	if isAdmin {
		allowedFrom = []string{
			model.PackageStatusNew,
			model.PackageStatusOpenForBids,
			model.PackageStatusBidSelected,
			model.PackageStatusPendingPickup,
			model.PackageStatusInTransit,
		}
	} else {
		if !pkg.CancellableBySender() {
			return nil, domain.ErrNotCancellable
		}
		allowedFrom = []string{model.PackageStatusNew, model.PackageStatusOpenForBids}
	}

	ok, err := s.pkgRepo.Cancel(ctx, pkg.ID, input.Reason, input.MarkAsFailed, allowedFrom)
	if err != nil {
		return nil, fmt.Errorf("cancel package: %w", err)
	}
	if !ok {
		// Статус изменился конкурентно (например, отправитель выбрал ставку)
		return nil, domain.ErrNotCancellable
	}

	updated, err := s.pkgRepo.FindByID(ctx, pkg.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info(logger.Entry{
		Action:    "package_cancelled",
		Message:   updated.Status,
		PackageID: updated.ID,
		Additional: map[string]any{
			"actor_id": input.ActorID,
			"reason":   input.Reason,
		},
	})

	eventData := out.PackageEventData{
		PackageID:  updated.ID,
		TrackingID: updated.TrackingID,
		SenderID:   updated.SenderID,
		CourierID:  updated.CourierID,
		Status:     updated.Status,
		AdditionalData: map[string]interface{}{
			"reason": input.Reason,
		},
	}
	if err := s.publisher.PublishPackageEvent(ctx, model.EventPackageCancelled, eventData); err != nil {
		s.log.Error(logger.Entry{
			Action:    "publish_cancel_event_failed",
			Message:   err.Error(),
			PackageID: updated.ID,
			Error:     &logger.ErrObj{Msg: err.Error()},
		})
	}

	return updated, nil
}
