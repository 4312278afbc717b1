package services

import (
	"context"
	"database/sql"
	"strings"

	"mindaudit/internal/models"
)

// CommissionService accrues and settles collaborator commissions. Accrual is
// at most once per budget, enforced by the unique budget_id index; payment is
// at most once per commission, enforced by the status guard.
type CommissionService struct {
	DB               *sql.DB
	CommissionRepo   CommissionStore
	BudgetRepo       BudgetStore
	CollaboratorRepo CollaboratorLedger
	AuditRepo        AuditTrail
	Notifications    *NotificationService
}

// AcceptBudget moves a budget into accepted_pending_invoice and accrues the
// commission for the attached collaborator, if any. Calling it twice for the
// same budget yields exactly one commission: the second call finds the status
// already flipped and the NOT EXISTS insert a no-op.
func (s *CommissionService) AcceptBudget(ctx context.Context, actor models.ActingUser, budgetID int64) (models.Budget, error) {
	if !actor.IsAdmin() {
		return models.Budget{}, models.ErrForbidden
	}
	budget, err := s.BudgetRepo.GetByID(ctx, budgetID)
	if err != nil {
		return models.Budget{}, err
	}
	switch budget.Status {
	case models.BudgetDraft, models.BudgetSent, models.BudgetAcceptedPendingInvoice:
	default:
		return models.Budget{}, models.ErrInvalidTransition
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Budget{}, err
	}

	if budget.Status != models.BudgetAcceptedPendingInvoice {
		if err := s.BudgetRepo.UpdateStatusTx(ctx, tx, budgetID, budget.Status, models.BudgetAcceptedPendingInvoice); err != nil {
			tx.Rollback()
			if err == sql.ErrNoRows {
				// Concurrent acceptance won; accrual below still idempotent.
				return models.Budget{}, models.ErrInvalidTransition
			}
			return models.Budget{}, err
		}
	}

	if budget.CollaboratorID != nil {
		collab, err := s.CollaboratorRepo.GetByID(ctx, *budget.CollaboratorID)
		if err != nil {
			tx.Rollback()
			return models.Budget{}, err
		}
		amount := models.ApplyBasisPoints(budget.AmountCents, collab.CommissionRateBP)
		created, err := s.CommissionRepo.CreateForBudgetTx(ctx, tx, budgetID, collab.ID, budget.AmountCents, collab.CommissionRateBP, amount)
		if err != nil {
			tx.Rollback()
			return models.Budget{}, err
		}
		if created {
			if err := s.AuditRepo.InsertTx(ctx, tx, models.AuditLog{
				ActorID:     actor.ID,
				Role:        actor.Role,
				Action:      "commission.accrue",
				EntityType:  "budget",
				EntityID:    budgetID,
				Description: "accrued " + models.FormatCents(amount) + " at " + models.FormatCents(collab.CommissionRateBP) + "%",
			}); err != nil {
				tx.Rollback()
				return models.Budget{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Budget{}, err
	}
	return s.BudgetRepo.GetByID(ctx, budgetID)
}

// Pay settles a pending commission with a bank reference. Paying an already
// paid commission is rejected; the original payment data is never overwritten.
func (s *CommissionService) Pay(ctx context.Context, actor models.ActingUser, id int64, reference string, notes *string) (models.Commission, error) {
	if !actor.IsAdmin() {
		return models.Commission{}, models.ErrForbidden
	}
	if strings.TrimSpace(reference) == "" {
		return models.Commission{}, models.ErrPaymentRefRequired
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Commission{}, err
	}
	commission, err := s.CommissionRepo.MarkPaidTx(ctx, tx, id, strings.TrimSpace(reference), notes)
	if err != nil {
		tx.Rollback()
		return models.Commission{}, err
	}
	if err := s.AuditRepo.InsertTx(ctx, tx, models.AuditLog{
		ActorID:     actor.ID,
		Role:        actor.Role,
		Action:      "commission.pay",
		EntityType:  "commission",
		EntityID:    id,
		Description: "paid " + models.FormatCents(commission.CommissionCents) + " ref " + reference,
	}); err != nil {
		tx.Rollback()
		return models.Commission{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Commission{}, err
	}

	if collab, err := s.CollaboratorRepo.GetByID(ctx, commission.CollaboratorID); err == nil {
		s.Notifications.NotifyUser(ctx, collab.UserID, "Commission paid",
			models.FormatCents(commission.CommissionCents)+" EUR, reference "+reference,
			map[string]string{"commission_id": formatID(id)})
	}
	return commission, nil
}

// MarkBudgetPaid records a completed audit payment delivered by the payment
// provider. Replayed events find the budget already paid and do nothing.
func (s *CommissionService) MarkBudgetPaid(ctx context.Context, budgetID int64) error {
	budget, err := s.BudgetRepo.GetByID(ctx, budgetID)
	if err != nil {
		return err
	}
	if budget.Status == models.BudgetPaid {
		return nil
	}
	if err := s.BudgetRepo.UpdateStatus(ctx, budgetID, models.BudgetPaid); err != nil {
		return err
	}
	return s.AuditRepo.Insert(ctx, models.AuditLog{
		Role:        "system",
		Action:      "budget.paid",
		EntityType:  "budget",
		EntityID:    budgetID,
		Description: "payment confirmed by provider webhook",
	})
}

// List returns commissions visible to the actor.
func (s *CommissionService) List(ctx context.Context, actor models.ActingUser, status string) ([]models.Commission, error) {
	if actor.IsAdmin() {
		return s.CommissionRepo.ListByStatus(ctx, status)
	}
	if actor.Role != models.RoleCollaborator {
		return nil, models.ErrForbidden
	}
	return s.CommissionRepo.ListByCollaborator(ctx, actor.CollaboratorID)
}

// Totals returns pending/paid sums derived from commission rows.
func (s *CommissionService) Totals(ctx context.Context, actor models.ActingUser, collaboratorID int) (models.CommissionTotals, error) {
	if !actor.IsAdmin() {
		if actor.Role != models.RoleCollaborator || actor.CollaboratorID != collaboratorID {
			return models.CommissionTotals{}, models.ErrForbidden
		}
	}
	return s.CommissionRepo.Totals(ctx, collaboratorID)
}
