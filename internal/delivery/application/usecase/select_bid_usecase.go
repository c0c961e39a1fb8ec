package usecase

import (
	"context"
	"errors"
	"fmt"

	"chaski/internal/delivery/application/ports/in"
	"chaski/internal/delivery/application/ports/out"
	"chaski/internal/delivery/domain"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
)

// SelectBidService реализует SelectBidUseCase
type SelectBidService struct {
	pkgRepo   out.PackageRepository
	ledger    out.BidLedger
	publisher out.EventPublisher
	log       *logger.Logger
}

// NewSelectBidService создает новый сервис выбора ставки
func NewSelectBidService(
	pkgRepo out.PackageRepository,
	ledger out.BidLedger,
	publisher out.EventPublisher,
	log *logger.Logger,
) *SelectBidService {
	return &SelectBidService{pkgRepo: pkgRepo, ledger: ledger, publisher: publisher, log: log}
}

// Execute выбирает ставку. Операция транзакционна: посылка переходит в
// bid_selected, выбранная ставка в selected, конкуренты в rejected.
// Повторный выбор возвращает ErrStatusConflict.
func (s *SelectBidService) Execute(ctx context.Context, input in.SelectBidInput) (*in.SelectBidOutput, error) {
	pkg, err := s.pkgRepo.FindByID(ctx, input.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg.SenderID != input.ActorID {
		return nil, domain.ErrForbidden
	}

	result, err := s.ledger.Select(ctx, input.PackageID, input.BidID, input.ActorID)
	if err != nil {
		if errors.Is(err, domain.ErrStatusConflict) || errors.Is(err, domain.ErrBidNotFound) {
			return nil, err
		}
		s.log.Error(logger.Entry{
			Action:    "select_bid_failed",
			Message:   err.Error(),
			PackageID: input.PackageID,
			Error:     &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"bid_id": input.BidID,
			},
		})
		return nil, fmt.Errorf("select bid: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:    "bid_selected",
		Message:   input.BidID,
		PackageID: input.PackageID,
		Additional: map[string]any{
			"courier_id":    result.Bid.CourierID,
			"agreed_price":  result.Bid.ProposedPrice,
			"rejected_bids": result.Rejected,
		},
	})

	eventData := out.PackageEventData{
		PackageID:  result.Package.ID,
		TrackingID: result.Package.TrackingID,
		SenderID:   result.Package.SenderID,
		CourierID:  result.Package.CourierID,
		Status:     result.Package.Status,
		AdditionalData: map[string]interface{}{
			"bid_id":        result.Bid.ID,
			"agreed_price":  result.Bid.ProposedPrice,
			"rejected_bids": result.Rejected,
		},
	}
	if err := s.publisher.PublishPackageEvent(ctx, model.EventBidSelected, eventData); err != nil {
		s.log.Error(logger.Entry{
			Action:    "publish_select_event_failed",
			Message:   err.Error(),
			PackageID: result.Package.ID,
			Error:     &logger.ErrObj{Msg: err.Error()},
		})
	}

	return &in.SelectBidOutput{
		Package: result.Package,
		Bid:     result.Bid,
	}, nil
}

// ListBidsService реализует ListBidsUseCase
type ListBidsService struct {
	pkgRepo out.PackageRepository
	ledger  out.BidLedger
}

// NewListBidsService создает новый сервис списка ставок
func NewListBidsService(pkgRepo out.PackageRepository, ledger out.BidLedger) *ListBidsService {
	return &ListBidsService{pkgRepo: pkgRepo, ledger: ledger}
}

// Execute возвращает ставки посылки. Отправитель видит все ставки,
// курьер — только свои.
func (s *ListBidsService) Execute(ctx context.Context, packageID string, actorID string) ([]*domain.Bid, error) {
	pkg, err := s.pkgRepo.FindByID(ctx, packageID)
	if err != nil {
		return nil, err
	}

	bids, err := s.ledger.ListByPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg.SenderID == actorID {
		return bids, nil
	}

	own := make([]*domain.Bid, 0, len(bids))
	for _, b := range bids {
		if b.CourierID == actorID {
			own = append(own, b)
		}
	}
	if len(own) == 0 {
		return nil, domain.ErrForbidden
	}
	return own, nil
}
