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

// defaultBidWindow — окно приема ставок если дедлайн не задан явно
const defaultBidWindow = 24 * time.Hour

// PublishPackageService реализует PublishPackageUseCase
type PublishPackageService struct {
	pkgRepo   out.PackageRepository
	publisher out.EventPublisher
	log       *logger.Logger
}

// NewPublishPackageService создает новый сервис публикации посылки
func NewPublishPackageService(
	pkgRepo out.PackageRepository,
	publisher out.EventPublisher,
	log *logger.Logger,
) *PublishPackageService {
	return &PublishPackageService{pkgRepo: pkgRepo, publisher: publisher, log: log}
}

// Execute переводит посылку new -> open_for_bids и открывает прием ставок
func (s *PublishPackageService) Execute(ctx context.Context, input in.PublishPackageInput) (*domain.Package, error) {
	pkg, err := s.pkgRepo.FindByID(ctx, input.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg.SenderID != input.ActorID {
		return nil, domain.ErrForbidden
	}

	deadline := input.BidDeadline
	if deadline.IsZero() {
		deadline = time.Now().UTC().Add(defaultBidWindow)
	}
	if deadline.Before(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: bid deadline in the past", domain.ErrInvalidBid)
	}

	ok, err := s.pkgRepo.Publish(ctx, input.PackageID, deadline)
	if err != nil {
		return nil, fmt.Errorf("publish package: %w", err)
	}
	if !ok {
		return nil, domain.ErrStatusConflict
	}

	pkg, err = s.pkgRepo.FindByID(ctx, input.PackageID)
	if err != nil {
		return nil, err
	}

	s.log.Info(logger.Entry{
		Action:    "package_published",
		Message:   pkg.TrackingID,
		PackageID: pkg.ID,
		Additional: map[string]any{
			"bid_deadline": deadline.Format(time.RFC3339),
		},
	})

	eventData := out.PackageEventData{
		PackageID:  pkg.ID,
		TrackingID: pkg.TrackingID,
		SenderID:   pkg.SenderID,
		Status:     model.PackageStatusOpenForBids,
		AdditionalData: map[string]interface{}{
			"pickup_lat":   pkg.PickupLat,
			"pickup_lng":   pkg.PickupLng,
			"dropoff_lat":  pkg.DropoffLat,
			"dropoff_lng":  pkg.DropoffLng,
			"size":         pkg.Size,
			"bid_deadline": deadline.Format(time.RFC3339),
		},
	}
	if err := s.publisher.PublishPackageEvent(ctx, model.EventPackagePublished, eventData); err != nil {
		s.log.Error(logger.Entry{
			Action:    "publish_package_event_failed",
			Message:   err.Error(),
			PackageID: pkg.ID,
			Error:     &logger.ErrObj{Msg: err.Error()},
		})
		// Не возвращаем ошибку, т.к. посылка уже опубликована
	}

	return pkg, nil
}
