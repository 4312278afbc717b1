package services

import (
	"context"
	"testing"

	"mindaudit/internal/models"
)

func newCommissionService(t *testing.T, budget models.Budget, rateBP int64) (*CommissionService, *fakeCommissions, *fakeBudgets) {
	commissions := &fakeCommissions{}
	budgets := &fakeBudgets{b: budget}
	svc := &CommissionService{
		DB:             stubDB(t),
		CommissionRepo: commissions,
		BudgetRepo:     budgets,
		CollaboratorRepo: &fakeLedger{collab: models.Collaborator{
			ID: 7, UserID: 9, Status: models.CollaboratorActive, CommissionRateBP: rateBP,
		}},
		AuditRepo: &fakeAudit{},
	}
	return svc, commissions, budgets
}

func TestAcceptBudgetAccruesOnce(t *testing.T) {
	// A 1000.00 budget at 10% accepted twice yields exactly one commission
	// of 100.00.
	collaboratorID := 7
	svc, commissions, budgets := newCommissionService(t, models.Budget{
		ID: 3, CompanyID: 1, CollaboratorID: &collaboratorID, AmountCents: 100000, Status: models.BudgetDraft,
	}, 1000)
	admin := models.ActingUser{ID: 1, Role: models.RoleAdmin}

	budget, err := svc.AcceptBudget(context.Background(), admin, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if budget.Status != models.BudgetAcceptedPendingInvoice {
		t.Fatalf("expected accepted_pending_invoice, got %s", budget.Status)
	}
	if commissions.created != 1 {
		t.Fatalf("expected 1 commission, got %d", commissions.created)
	}
	if commissions.commission.CommissionCents != 10000 {
		t.Fatalf("expected 10000 cents, got %d", commissions.commission.CommissionCents)
	}

	if _, err := svc.AcceptBudget(context.Background(), admin, 3); err != nil {
		t.Fatalf("unexpected error on second acceptance: %v", err)
	}
	if commissions.created != 1 {
		t.Fatalf("second acceptance must not accrue again, got %d commissions", commissions.created)
	}
	if budgets.b.Status != models.BudgetAcceptedPendingInvoice {
		t.Fatalf("unexpected status %s", budgets.b.Status)
	}
}

func TestAcceptBudgetWithoutCollaborator(t *testing.T) {
	svc, commissions, _ := newCommissionService(t, models.Budget{
		ID: 3, CompanyID: 1, AmountCents: 100000, Status: models.BudgetSent,
	}, 1000)

	if _, err := svc.AcceptBudget(context.Background(), models.ActingUser{ID: 1, Role: models.RoleAdmin}, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if commissions.created != 0 {
		t.Fatalf("no collaborator attached, expected 0 commissions, got %d", commissions.created)
	}
}

func TestPayCommission(t *testing.T) {
	collaboratorID := 7
	svc, commissions, _ := newCommissionService(t, models.Budget{
		ID: 3, CollaboratorID: &collaboratorID, AmountCents: 100000, Status: models.BudgetDraft,
	}, 1000)
	admin := models.ActingUser{ID: 1, Role: models.RoleAdmin}

	if _, err := svc.AcceptBudget(context.Background(), admin, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Pay(context.Background(), admin, 1, "   ", nil); err != models.ErrPaymentRefRequired {
		t.Fatalf("expected ErrPaymentRefRequired, got %v", err)
	}

	paid, err := svc.Pay(context.Background(), admin, 1, "SEPA-2026-001", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.Status != models.CommissionPaid {
		t.Fatalf("expected paid, got %s", paid.Status)
	}
	if paid.PaymentReference == nil || *paid.PaymentReference != "SEPA-2026-001" {
		t.Fatalf("expected reference recorded, got %v", paid.PaymentReference)
	}

	if _, err := svc.Pay(context.Background(), admin, 1, "SEPA-2026-002", nil); err != models.ErrCommissionAlreadyPaid {
		t.Fatalf("expected ErrCommissionAlreadyPaid, got %v", err)
	}
	if *commissions.commission.PaymentReference != "SEPA-2026-001" {
		t.Fatalf("re-pay must not overwrite the reference, got %s", *commissions.commission.PaymentReference)
	}

	collaborator := models.ActingUser{ID: 2, Role: models.RoleCollaborator, CollaboratorID: 7}
	if _, err := svc.Pay(context.Background(), collaborator, 1, "SEPA-2026-003", nil); err != models.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMarkBudgetPaidIdempotent(t *testing.T) {
	svc, _, budgets := newCommissionService(t, models.Budget{
		ID: 3, CompanyID: 1, AmountCents: 100000, Status: models.BudgetInvoiced,
	}, 1000)

	if err := svc.MarkBudgetPaid(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if budgets.b.Status != models.BudgetPaid {
		t.Fatalf("expected paid, got %s", budgets.b.Status)
	}
	if err := svc.MarkBudgetPaid(context.Background(), 3); err != nil {
		t.Fatalf("replay must be a no-op, got %v", err)
	}
}
