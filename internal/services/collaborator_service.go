package services

import (
	"context"
	"database/sql"

	"mindaudit/internal/models"
	"mindaudit/internal/repositories"
)

// CollaboratorService covers approval, deactivation and the profile view.
// Contract activation is driven by the e-signature webhook.
type CollaboratorService struct {
	DB               *sql.DB
	CollaboratorRepo *repositories.CollaboratorRepository
	CommissionRepo   *repositories.CommissionRepository
	UserRepo         *repositories.UserRepository
	AuditRepo        *repositories.AuditLogRepository
	Notifications    *NotificationService
}

func (s *CollaboratorService) Approve(ctx context.Context, actor models.ActingUser, id int) (models.Collaborator, error) {
	if !actor.IsAdmin() {
		return models.Collaborator{}, models.ErrForbidden
	}
	if err := s.CollaboratorRepo.UpdateStatus(ctx, id, models.CollaboratorActive); err != nil {
		return models.Collaborator{}, err
	}
	if err := s.AuditRepo.Insert(ctx, models.AuditLog{
		ActorID:    actor.ID,
		Role:       actor.Role,
		Action:     "collaborator.approve",
		EntityType: "collaborator",
		EntityID:   int64(id),
	}); err != nil {
		return models.Collaborator{}, err
	}

	collab, err := s.CollaboratorRepo.GetByID(ctx, id)
	if err == nil {
		s.Notifications.NotifyUser(ctx, collab.UserID, "Account approved",
			"Your collaborator account is now active", nil)
	}
	return collab, err
}

func (s *CollaboratorService) Deactivate(ctx context.Context, actor models.ActingUser, id int) (models.Collaborator, error) {
	if !actor.IsAdmin() {
		return models.Collaborator{}, models.ErrForbidden
	}
	if err := s.CollaboratorRepo.UpdateStatus(ctx, id, models.CollaboratorInactive); err != nil {
		return models.Collaborator{}, err
	}
	if err := s.AuditRepo.Insert(ctx, models.AuditLog{
		ActorID:    actor.ID,
		Role:       actor.Role,
		Action:     "collaborator.deactivate",
		EntityType: "collaborator",
		EntityID:   int64(id),
	}); err != nil {
		return models.Collaborator{}, err
	}
	return s.CollaboratorRepo.GetByID(ctx, id)
}

func (s *CollaboratorService) List(ctx context.Context, actor models.ActingUser, status string) ([]models.Collaborator, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}
	return s.CollaboratorRepo.List(ctx, status)
}

// Profile returns the collaborator with commission totals recomputed from the
// commission rows.
func (s *CollaboratorService) Profile(ctx context.Context, actor models.ActingUser, id int) (models.CollaboratorProfile, error) {
	if !actor.IsAdmin() {
		if actor.Role != models.RoleCollaborator || actor.CollaboratorID != id {
			return models.CollaboratorProfile{}, models.ErrForbidden
		}
	}
	collab, err := s.CollaboratorRepo.GetByID(ctx, id)
	if err != nil {
		return models.CollaboratorProfile{}, err
	}
	totals, err := s.CommissionRepo.Totals(ctx, id)
	if err != nil {
		return models.CollaboratorProfile{}, err
	}
	return models.CollaboratorProfile{
		Collaborator:          collab,
		AvailableHoursDisplay: models.FormatHours(collab.AvailableHours),
		PendingCommission:     totals.PendingCents,
		PaidCommission:        totals.PaidCents,
	}, nil
}

// ActivateContract marks the contract signed for a user. Driven by the
// document-completed webhook; absolute updates keep redelivery harmless.
func (s *CollaboratorService) ActivateContract(ctx context.Context, userID int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := s.CollaboratorRepo.ActivateContractTx(ctx, tx, userID); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.AuditRepo.InsertTx(ctx, tx, models.AuditLog{
		ActorID:    0,
		Role:       "system",
		Action:     "collaborator.contract_signed",
		EntityType: "user",
		EntityID:   int64(userID),
	}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.Notifications.NotifyUser(ctx, userID, "Contract signed",
		"Your collaboration contract is active", nil)
	return nil
}
