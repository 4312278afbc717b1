package handlers

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mindaudit/internal/models"
	"mindaudit/internal/services"
)

type markerStub struct {
	seen  bool
	marks []string
}

func (m *markerStub) IsProcessed(context.Context, string, string) (bool, error) {
	return m.seen, nil
}

func (m *markerStub) MarkProcessed(_ context.Context, provider, eventID string) (bool, error) {
	m.marks = append(m.marks, provider+":"+eventID)
	return true, nil
}

type confirmerStub struct {
	calls int
	err   error
}

func (c *confirmerStub) Confirm(context.Context, string, string) (models.HourPurchase, error) {
	c.calls++
	return models.HourPurchase{Status: models.PurchaseCompleted}, c.err
}

func newStripeWebhookHandler() (*StripeWebhookHandler, *services.StripeService) {
	stripe := &services.StripeService{WebhookSecret: "whsec_test"}
	return &StripeWebhookHandler{
		Stripe:   stripe,
		ErrorLog: log.New(bytes.NewBuffer(nil), "", 0),
	}, stripe
}

func signedCheckoutRequest(stripe *services.StripeService) *http.Request {
	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_test_1", "payment_intent": "pi_1", "metadata": {"tipo": "compra_horas"}}}
	}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", stripe.SignPayload(payload, time.Now()))
	return req
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	h, _ := newStripeWebhookHandler()
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=123,v1=deadbeef")
	rec := httptest.NewRecorder()

	h.Receive(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestStripeWebhookRejectsMissingSignature(t *testing.T) {
	h, _ := newStripeWebhookHandler()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	h.Receive(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestStripeWebhookMarksAfterSuccess(t *testing.T) {
	h, stripe := newStripeWebhookHandler()
	marker := &markerStub{}
	confirmer := &confirmerStub{}
	h.Events = marker
	h.Purchases = confirmer

	rec := httptest.NewRecorder()
	h.Receive(rec, signedCheckoutRequest(stripe))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if confirmer.calls != 1 {
		t.Fatalf("expected 1 confirmation, got %d", confirmer.calls)
	}
	if len(marker.marks) != 1 || marker.marks[0] != "stripe:evt_1" {
		t.Fatalf("expected event marked after success, got %v", marker.marks)
	}
}

func TestStripeWebhookFailureLeavesNoMarker(t *testing.T) {
	// A handler failure must return 5xx with the event unmarked, so the
	// provider's retry gets processed instead of being acked as a duplicate.
	h, stripe := newStripeWebhookHandler()
	marker := &markerStub{}
	confirmer := &confirmerStub{err: errors.New("store unavailable")}
	h.Events = marker
	h.Purchases = confirmer

	rec := httptest.NewRecorder()
	h.Receive(rec, signedCheckoutRequest(stripe))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	if len(marker.marks) != 0 {
		t.Fatalf("failed dispatch must not mark the event, got %v", marker.marks)
	}
}

func TestStripeWebhookDuplicateAcked(t *testing.T) {
	h, stripe := newStripeWebhookHandler()
	marker := &markerStub{seen: true}
	confirmer := &confirmerStub{}
	h.Events = marker
	h.Purchases = confirmer

	rec := httptest.NewRecorder()
	h.Receive(rec, signedCheckoutRequest(stripe))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if confirmer.calls != 0 {
		t.Fatalf("duplicate must not dispatch, got %d calls", confirmer.calls)
	}
	if len(marker.marks) != 0 {
		t.Fatalf("duplicate must not re-mark, got %v", marker.marks)
	}
}

func TestStripeWebhookRejectsInvalidPayload(t *testing.T) {
	h, stripe := newStripeWebhookHandler()
	payload := []byte(`{"id":"evt_1"}`) // missing type

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", stripe.SignPayload(payload, time.Now()))
	rec := httptest.NewRecorder()

	h.Receive(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
