package usecase

import (
	"context"
	"fmt"

	"chaski/internal/delivery/application/ports/in"
	"chaski/internal/delivery/application/ports/out"
	"chaski/internal/delivery/domain"
	"chaski/internal/geo"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
)

// UpdatePackageService реализует UpdatePackageUseCase
type UpdatePackageService struct {
	pkgRepo out.PackageRepository
	log     *logger.Logger
}

// NewUpdatePackageService создает новый сервис правки посылки
func NewUpdatePackageService(pkgRepo out.PackageRepository, log *logger.Logger) *UpdatePackageService {
	return &UpdatePackageService{pkgRepo: pkgRepo, log: log}
}

// Execute правит посылку отправителя. После публикации посылка
// видна курьерам, поэтому правка допускается только в статусе new.
func (s *UpdatePackageService) Execute(ctx context.Context, input in.UpdatePackageInput) (*domain.Package, error) {
	pkg, err := s.pkgRepo.FindByID(ctx, input.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg.SenderID != input.ActorID {
		return nil, domain.ErrForbidden
	}
	if pkg.Status != model.PackageStatusNew {
		return nil, fmt.Errorf("%w: package already published", domain.ErrStatusConflict)
	}

	if !geo.ValidateCoordinates(input.PickupLat, input.PickupLng) {
		return nil, fmt.Errorf("%w: pickup", domain.ErrInvalidCoordinates)
	}
	if !geo.ValidateCoordinates(input.DropoffLat, input.DropoffLng) {
		return nil, fmt.Errorf("%w: dropoff", domain.ErrInvalidCoordinates)
	}
	if !isValidSize(input.Size) {
		return nil, fmt.Errorf("invalid package size: %s", input.Size)
	}
	if input.WeightKg <= 0 {
		return nil, fmt.Errorf("weight must be positive")
	}

	pkg.Size = input.Size
	pkg.WeightKg = input.WeightKg
	pkg.PickupAddress = input.PickupAddress
	pkg.PickupLat = input.PickupLat
	pkg.PickupLng = input.PickupLng
	pkg.PickupContact = input.PickupContact
	pkg.DropoffAddress = input.DropoffAddress
	pkg.DropoffLat = input.DropoffLat
	pkg.DropoffLng = input.DropoffLng
	pkg.DropoffContact = input.DropoffContact

	updated, err := s.pkgRepo.Update(ctx, pkg)
	if err != nil {
		s.log.Error(logger.Entry{
			Action:    "update_package_failed",
			Message:   err.Error(),
			PackageID: pkg.ID,
			Error:     &logger.ErrObj{Msg: err.Error()},
		})
		return nil, fmt.Errorf("update package: %w", err)
	}
	if !updated {
		// посылка опубликована между чтением и записью
		return nil, fmt.Errorf("%w: package already published", domain.ErrStatusConflict)
	}

	s.log.Info(logger.Entry{
		Action:    "package_updated",
		Message:   pkg.TrackingID,
		PackageID: pkg.ID,
	})

	return pkg, nil
}
