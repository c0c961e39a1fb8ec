package usecase

import (
	"context"
	"fmt"

	"chaski/internal/delivery/application/ports/in"
	"chaski/internal/delivery/application/ports/out"
	"chaski/internal/delivery/domain"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/user"
)

// AcceptPackageService реализует AcceptPackageUseCase
type AcceptPackageService struct {
	pkgRepo   out.PackageRepository
	userRepo  user.Repository
	publisher out.EventPublisher
	log       *logger.Logger
}

// NewAcceptPackageService создает новый сервис прямого принятия посылки
func NewAcceptPackageService(
	pkgRepo out.PackageRepository,
	userRepo user.Repository,
	publisher out.EventPublisher,
	log *logger.Logger,
) *AcceptPackageService {
	return &AcceptPackageService{pkgRepo: pkgRepo, userRepo: userRepo, publisher: publisher, log: log}
}

// Execute назначает курьера напрямую, минуя торги.
// Посылка переходит open_for_bids -> bid_selected без selected_bid_id.
func (s *AcceptPackageService) Execute(ctx context.Context, input in.AcceptPackageInput) (*domain.Package, error) {
	courier, err := s.userRepo.FindByID(ctx, input.CourierID)
	if err != nil {
		return nil, err
	}
	if !courier.CanBid() {
		return nil, domain.ErrCourierNotVerified
	}

	pkg, err := s.pkgRepo.FindByID(ctx, input.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg.SenderID == input.CourierID {
		return nil, fmt.Errorf("%w: sender cannot accept own package", domain.ErrForbidden)
	}
	if !pkg.AcceptsBids() {
		return nil, domain.ErrStatusConflict
	}

	ok, err := s.pkgRepo.AssignCourier(ctx, pkg.ID, input.CourierID)
	if err != nil {
		return nil, fmt.Errorf("assign courier: %w", err)
	}
	if !ok {
		return nil, domain.ErrStatusConflict
	}

	updated, err := s.pkgRepo.FindByID(ctx, pkg.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info(logger.Entry{
		Action:    "package_accepted",
		Message:   updated.TrackingID,
		PackageID: updated.ID,
		Additional: map[string]any{
			"courier_id": input.CourierID,
		},
	})

	eventData := out.PackageEventData{
		PackageID:  updated.ID,
		TrackingID: updated.TrackingID,
		SenderID:   updated.SenderID,
		CourierID:  updated.CourierID,
		Status:     updated.Status,
		AdditionalData: map[string]interface{}{
			"direct_accept": true,
		},
	}
	if err := s.publisher.PublishPackageEvent(ctx, model.EventBidSelected, eventData); err != nil {
		s.log.Error(logger.Entry{
			Action:    "publish_accept_event_failed",
			Message:   err.Error(),
			PackageID: updated.ID,
			Error:     &logger.ErrObj{Msg: err.Error()},
		})
	}

	return updated, nil
}
