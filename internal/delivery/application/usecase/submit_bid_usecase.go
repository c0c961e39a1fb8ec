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
	"chaski/internal/shared/user"
	"chaski/internal/shared/utils"
)

// SubmitBidService реализует SubmitBidUseCase
type SubmitBidService struct {
	pkgRepo   out.PackageRepository
	ledger    out.BidLedger
	userRepo  user.Repository
	publisher out.EventPublisher
	log       *logger.Logger
}

// NewSubmitBidService создает новый сервис подачи ставок
func NewSubmitBidService(
	pkgRepo out.PackageRepository,
	ledger out.BidLedger,
	userRepo user.Repository,
	publisher out.EventPublisher,
	log *logger.Logger,
) *SubmitBidService {
	return &SubmitBidService{
		pkgRepo:   pkgRepo,
		ledger:    ledger,
		userRepo:  userRepo,
		publisher: publisher,
		log:       log,
	}
}

// Execute подает ставку по посылке. Повторная ставка того же курьера
// заменяет предыдущую, а не добавляется к ней.
func (s *SubmitBidService) Execute(ctx context.Context, input in.SubmitBidInput) (*in.SubmitBidOutput, error) {
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
		return nil, fmt.Errorf("%w: sender cannot bid on own package", domain.ErrInvalidBid)
	}

	now := time.Now().UTC()
	if !pkg.AcceptsBids() {
		return nil, fmt.Errorf("%w: package is not open for bids", domain.ErrInvalidBid)
	}
	if pkg.BidDeadline != nil && now.After(*pkg.BidDeadline) {
		return nil, fmt.Errorf("%w: bid deadline has passed", domain.ErrInvalidBid)
	}

	bid := &domain.Bid{
		ID:                     utils.NewUUID(),
		PackageID:              input.PackageID,
		CourierID:              input.CourierID,
		ProposedPrice:          input.ProposedPrice,
		EstimatedDeliveryHours: input.EstimatedDeliveryHours,
		EstimatedPickupTime:    input.EstimatedPickupTime,
		Message:                input.Message,
		Status:                 model.BidStatusActive,
		CreatedAt:              now,
	}
	if err := bid.Validate(now); err != nil {
		return nil, err
	}

	result, err := s.ledger.Submit(ctx, bid)
	if err != nil {
		s.log.Error(logger.Entry{
			Action:    "submit_bid_failed",
			Message:   err.Error(),
			PackageID: input.PackageID,
			Error:     &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"courier_id": input.CourierID,
			},
		})
		return nil, fmt.Errorf("submit bid: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:    "bid_submitted",
		Message:   bid.ID,
		PackageID: input.PackageID,
		Additional: map[string]any{
			"courier_id":     input.CourierID,
			"proposed_price": input.ProposedPrice,
			"superseded":     result.Superseded,
			"bid_count":      result.BidCount,
		},
	})

	eventData := out.PackageEventData{
		PackageID:  pkg.ID,
		TrackingID: pkg.TrackingID,
		SenderID:   pkg.SenderID,
		Status:     pkg.Status,
		AdditionalData: map[string]interface{}{
			"bid_id":         bid.ID,
			"courier_id":     input.CourierID,
			"proposed_price": input.ProposedPrice,
			"bid_count":      result.BidCount,
		},
	}
	if err := s.publisher.PublishPackageEvent(ctx, model.EventBidSubmitted, eventData); err != nil {
		s.log.Error(logger.Entry{
			Action:    "publish_bid_event_failed",
			Message:   err.Error(),
			PackageID: pkg.ID,
			Error:     &logger.ErrObj{Msg: err.Error()},
		})
	}

	return &in.SubmitBidOutput{
		Bid:        result.Bid,
		Superseded: result.Superseded,
		BidCount:   result.BidCount,
	}, nil
}
