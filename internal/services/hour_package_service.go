package services

import (
	"context"
	"strings"

	"mindaudit/internal/models"
	"mindaudit/internal/repositories"
)

// HourPackageService manages the purchasable catalog. Packages are never
// deleted, only deactivated, so completed purchases keep their snapshot.
type HourPackageService struct {
	PackageRepo *repositories.HourPackageRepository
	AuditRepo   *repositories.AuditLogRepository
}

func (s *HourPackageService) ListActive(ctx context.Context) ([]models.HourPackage, error) {
	return s.PackageRepo.ListActive(ctx)
}

func (s *HourPackageService) Get(ctx context.Context, id int) (models.HourPackage, error) {
	return s.PackageRepo.GetByID(ctx, id)
}

func (s *HourPackageService) Create(ctx context.Context, actor models.ActingUser, p models.HourPackage) (models.HourPackage, error) {
	if !actor.IsAdmin() {
		return models.HourPackage{}, models.ErrForbidden
	}
	if strings.TrimSpace(p.Name) == "" || p.Hours <= 0 || p.PriceCents <= 0 {
		return models.HourPackage{}, models.ErrInvalidPackage
	}
	created, err := s.PackageRepo.Create(ctx, p)
	if err != nil {
		return models.HourPackage{}, err
	}
	err = s.AuditRepo.Insert(ctx, models.AuditLog{
		ActorID:     actor.ID,
		Role:        actor.Role,
		Action:      "package.create",
		EntityType:  "hour_package",
		EntityID:    int64(created.ID),
		Description: created.Name,
	})
	return created, err
}

func (s *HourPackageService) Update(ctx context.Context, actor models.ActingUser, p models.HourPackage) (models.HourPackage, error) {
	if !actor.IsAdmin() {
		return models.HourPackage{}, models.ErrForbidden
	}
	updated, err := s.PackageRepo.Update(ctx, p)
	if err != nil {
		return models.HourPackage{}, err
	}
	err = s.AuditRepo.Insert(ctx, models.AuditLog{
		ActorID:     actor.ID,
		Role:        actor.Role,
		Action:      "package.update",
		EntityType:  "hour_package",
		EntityID:    int64(updated.ID),
		Description: updated.Name,
	})
	return updated, err
}
