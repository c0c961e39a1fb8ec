package usecase

import (
	"context"
	"fmt"
	"time"

	"chaski/internal/delivery/application/ports/in"
	"chaski/internal/delivery/application/ports/out"
	"chaski/internal/delivery/domain"
	"chaski/internal/geo"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/utils"
)

// CreatePackageService реализует CreatePackageUseCase
type CreatePackageService struct {
	pkgRepo out.PackageRepository
	log     *logger.Logger
}

// NewCreatePackageService создает новый сервис создания посылки
func NewCreatePackageService(pkgRepo out.PackageRepository, log *logger.Logger) *CreatePackageService {
	return &CreatePackageService{pkgRepo: pkgRepo, log: log}
}

// Execute выполняет создание новой посылки в статусе new
func (s *CreatePackageService) Execute(ctx context.Context, input in.CreatePackageInput) (*domain.Package, error) {
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

	now := time.Now().UTC()
	pkg := &domain.Package{
		ID:             utils.NewUUID(),
		TrackingID:     utils.NewTrackingID(),
		SenderID:       input.SenderID,
		Status:         model.PackageStatusNew,
		Size:           input.Size,
		WeightKg:       input.WeightKg,
		PickupAddress:  input.PickupAddress,
		PickupLat:      input.PickupLat,
		PickupLng:      input.PickupLng,
		PickupContact:  input.PickupContact,
		DropoffAddress: input.DropoffAddress,
		DropoffLat:     input.DropoffLat,
		DropoffLng:     input.DropoffLng,
		DropoffContact: input.DropoffContact,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.pkgRepo.Create(ctx, pkg); err != nil {
		s.log.Error(logger.Entry{
			Action:  "create_package_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"sender_id": input.SenderID,
			},
		})
		return nil, fmt.Errorf("create package: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:    "package_created",
		Message:   pkg.TrackingID,
		PackageID: pkg.ID,
		Additional: map[string]any{
			"sender_id": input.SenderID,
			"size":      input.Size,
			"weight_kg": input.WeightKg,
		},
	})

	return pkg, nil
}

// isValidSize проверяет корректность размера посылки
func isValidSize(size string) bool {
	switch size {
	case model.SizeSmall, model.SizeMedium, model.SizeLarge:
		return true
	default:
		return false
	}
}
