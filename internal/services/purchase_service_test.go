package services

import (
	"context"
	"testing"

	"mindaudit/internal/models"
)

func newPurchaseService(t *testing.T, purchase models.HourPurchase) (*PurchaseService, *fakePurchases, *fakeLedger) {
	purchases := &fakePurchases{p: purchase}
	ledger := &fakeLedger{collab: models.Collaborator{ID: purchase.CollaboratorID, UserID: 9, Status: models.CollaboratorActive}}
	svc := &PurchaseService{
		DB:               stubDB(t),
		PurchaseRepo:     purchases,
		CollaboratorRepo: ledger,
		AuditRepo:        &fakeAudit{},
	}
	return svc, purchases, ledger
}

func TestConfirmCreditsExactlyOnce(t *testing.T) {
	// A 10-hour package webhook delivered twice for the same session credits
	// the balance exactly once.
	svc, purchases, ledger := newPurchaseService(t, models.HourPurchase{
		ID:              1,
		CollaboratorID:  7,
		PackageID:       2,
		PackageHours:    1000,
		PricePaidCents:  69900,
		Status:          models.PurchasePending,
		StripeSessionID: "cs_test_1",
	})

	first, err := svc.Confirm(context.Background(), "cs_test_1", "pi_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Status != models.PurchaseCompleted {
		t.Fatalf("expected completed, got %s", first.Status)
	}
	if ledger.collab.AvailableHours != 1000 {
		t.Fatalf("expected balance 1000, got %d", ledger.collab.AvailableHours)
	}

	second, err := svc.Confirm(context.Background(), "cs_test_1", "pi_1")
	if err != nil {
		t.Fatalf("unexpected error on replay: %v", err)
	}
	if second.Status != models.PurchaseCompleted {
		t.Fatalf("expected completed on replay, got %s", second.Status)
	}
	if ledger.collab.AvailableHours != 1000 {
		t.Fatalf("replay must not credit again, balance %d", ledger.collab.AvailableHours)
	}
	if purchases.p.StripePaymentIntentID == nil || *purchases.p.StripePaymentIntentID != "pi_1" {
		t.Fatalf("expected payment intent recorded, got %v", purchases.p.StripePaymentIntentID)
	}
}

func TestConfirmUnknownSession(t *testing.T) {
	svc, _, ledger := newPurchaseService(t, models.HourPurchase{
		ID: 1, CollaboratorID: 7, Status: models.PurchasePending, StripeSessionID: "cs_test_1",
	})

	if _, err := svc.Confirm(context.Background(), "cs_other", "pi_1"); err != models.ErrPurchaseNotFound {
		t.Fatalf("expected ErrPurchaseNotFound, got %v", err)
	}
	if ledger.collab.AvailableHours != 0 {
		t.Fatalf("expected no credit, balance %d", ledger.collab.AvailableHours)
	}
}

func TestConfirmLosesCompletionRace(t *testing.T) {
	// The pending->completed flip failing means a concurrent delivery won and
	// credited; this call must not credit on top.
	svc, purchases, ledger := newPurchaseService(t, models.HourPurchase{
		ID: 1, CollaboratorID: 7, PackageHours: 1000, Status: models.PurchasePending, StripeSessionID: "cs_test_1",
	})
	purchases.loseRace = true

	if _, err := svc.Confirm(context.Background(), "cs_test_1", "pi_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledger.collab.AvailableHours != 0 {
		t.Fatalf("race loser must not credit, balance %d", ledger.collab.AvailableHours)
	}
}
