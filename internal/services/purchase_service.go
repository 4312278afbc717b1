package services

import (
	"context"
	"database/sql"
	"strconv"

	"mindaudit/internal/models"
)

// PurchaseService sells hour packages through Stripe Checkout. A purchase row
// is created pending at checkout time and completed exactly once by the
// webhook, keyed by the Stripe session id.
type PurchaseService struct {
	DB               *sql.DB
	Stripe           *StripeService
	PurchaseRepo     PurchaseStore
	PackageRepo      PackageStore
	CollaboratorRepo CollaboratorLedger
	AuditRepo        AuditTrail
	Notifications    *NotificationService
}

type CheckoutResult struct {
	Purchase    models.HourPurchase `json:"purchase"`
	CheckoutURL string              `json:"checkout_url"`
	SessionID   string              `json:"session_id"`
}

// CreateCheckout opens a Stripe session for a package and records the pending
// purchase. The session metadata carries the routing type and the ids needed
// to complete the purchase when the webhook lands.
func (s *PurchaseService) CreateCheckout(ctx context.Context, actor models.ActingUser, packageID int) (CheckoutResult, error) {
	if actor.Role != models.RoleCollaborator {
		return CheckoutResult{}, models.ErrForbidden
	}
	collab, err := s.CollaboratorRepo.GetByID(ctx, actor.CollaboratorID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if collab.Status != models.CollaboratorActive {
		return CheckoutResult{}, models.ErrCollaboratorInactive
	}

	pkg, err := s.PackageRepo.GetByID(ctx, packageID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if !pkg.Active {
		return CheckoutResult{}, models.ErrPackageNotFound
	}

	price := pkg.EffectivePriceCents()
	session, err := s.Stripe.CreateCheckoutSession(ctx, pkg.Name, price, map[string]string{
		"tipo":           "compra_horas",
		"colaborador_id": strconv.Itoa(collab.ID),
		"package_id":     strconv.Itoa(pkg.ID),
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	purchase, err := s.PurchaseRepo.CreatePending(ctx, collab.ID, pkg.ID, pkg.Hours, price, session.ID)
	if err != nil {
		return CheckoutResult{}, err
	}
	return CheckoutResult{Purchase: purchase, CheckoutURL: session.URL, SessionID: session.ID}, nil
}

// Confirm completes the purchase for a paid checkout session. Safe to call
// any number of times for the same session: the pending->completed flip and
// the hours credit happen in one transaction, and a replay that finds the
// purchase already completed returns it unchanged without crediting again.
func (s *PurchaseService) Confirm(ctx context.Context, sessionID, paymentIntentID string) (models.HourPurchase, error) {
	purchase, err := s.PurchaseRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return models.HourPurchase{}, err
	}
	if purchase.Status == models.PurchaseCompleted {
		return purchase, nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.HourPurchase{}, err
	}

	completed, err := s.PurchaseRepo.MarkCompletedTx(ctx, tx, purchase.ID, paymentIntentID)
	if err != nil {
		tx.Rollback()
		return models.HourPurchase{}, err
	}
	if !completed {
		// Lost the race against a concurrent delivery; the winner credited.
		tx.Rollback()
		return s.PurchaseRepo.GetBySessionID(ctx, sessionID)
	}

	if err := s.CollaboratorRepo.CreditHoursTx(ctx, tx, purchase.CollaboratorID, purchase.PackageHours); err != nil {
		tx.Rollback()
		return models.HourPurchase{}, err
	}
	if err := s.AuditRepo.InsertTx(ctx, tx, models.AuditLog{
		ActorID:     0,
		Role:        "system",
		Action:      "purchase.complete",
		EntityType:  "hour_purchase",
		EntityID:    int64(purchase.ID),
		Description: "credited " + models.FormatHours(purchase.PackageHours) + " hours for session " + sessionID,
	}); err != nil {
		tx.Rollback()
		return models.HourPurchase{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.HourPurchase{}, err
	}

	purchase, err = s.PurchaseRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return models.HourPurchase{}, err
	}

	if collab, err := s.CollaboratorRepo.GetByID(ctx, purchase.CollaboratorID); err == nil {
		s.Notifications.NotifyUser(ctx, collab.UserID, "Hours purchase completed",
			models.FormatHours(purchase.PackageHours)+" hours added to your balance",
			map[string]string{"purchase_id": strconv.Itoa(purchase.ID)})
	}
	return purchase, nil
}

// History lists the collaborator's purchases, newest first.
func (s *PurchaseService) History(ctx context.Context, actor models.ActingUser, collaboratorID int) ([]models.HourPurchase, error) {
	if !actor.IsAdmin() {
		if actor.Role != models.RoleCollaborator || actor.CollaboratorID != collaboratorID {
			return nil, models.ErrForbidden
		}
	}
	return s.PurchaseRepo.ListByCollaborator(ctx, collaboratorID)
}
