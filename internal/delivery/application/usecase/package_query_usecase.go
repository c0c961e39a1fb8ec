package usecase

import (
	"context"

	"chaski/internal/delivery/application/ports/in"
	"chaski/internal/delivery/application/ports/out"
	"chaski/internal/delivery/domain"
)

// GetPackageService реализует GetPackageUseCase
type GetPackageService struct {
	pkgRepo out.PackageRepository
}

// NewGetPackageService создает новый сервис чтения посылки
func NewGetPackageService(pkgRepo out.PackageRepository) *GetPackageService {
	return &GetPackageService{pkgRepo: pkgRepo}
}

// Execute возвращает посылку по ID
func (s *GetPackageService) Execute(ctx context.Context, packageID string) (*domain.Package, error) {
	return s.pkgRepo.FindByID(ctx, packageID)
}

// ListPackagesService реализует ListPackagesUseCase
type ListPackagesService struct {
	pkgRepo out.PackageRepository
}

// NewListPackagesService создает новый сервис списка посылок
func NewListPackagesService(pkgRepo out.PackageRepository) *ListPackagesService {
	return &ListPackagesService{pkgRepo: pkgRepo}
}

// Execute возвращает посылки по фильтру
func (s *ListPackagesService) Execute(ctx context.Context, input in.ListPackagesInput) ([]*domain.Package, error) {
	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}
	return s.pkgRepo.List(ctx, out.PackageFilter{
		SenderID:  input.SenderID,
		CourierID: input.CourierID,
		Status:    input.Status,
		Limit:     limit,
		Offset:    offset,
	})
}
