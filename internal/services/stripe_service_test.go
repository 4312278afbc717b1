package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStripeVerifySignature(t *testing.T) {
	svc := &StripeService{WebhookSecret: "whsec_test"}
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Now()

	t.Run("accepts own signature", func(t *testing.T) {
		header := svc.SignPayload(payload, now)
		if err := svc.VerifySignature(payload, header, now); err != nil {
			t.Fatalf("expected valid signature, got %v", err)
		}
	})

	t.Run("rejects tampered payload", func(t *testing.T) {
		header := svc.SignPayload(payload, now)
		if err := svc.VerifySignature([]byte(`{"id":"evt_2"}`), header, now); err == nil {
			t.Fatal("expected signature error")
		}
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		other := &StripeService{WebhookSecret: "whsec_other"}
		header := other.SignPayload(payload, now)
		if err := svc.VerifySignature(payload, header, now); err == nil {
			t.Fatal("expected signature error")
		}
	})

	t.Run("rejects stale timestamp", func(t *testing.T) {
		header := svc.SignPayload(payload, now.Add(-10*time.Minute))
		if err := svc.VerifySignature(payload, header, now); err == nil {
			t.Fatal("expected stale timestamp to be rejected")
		}
	})

	t.Run("rejects malformed header", func(t *testing.T) {
		for _, header := range []string{"", "t=abc,v1=00", "v1=00", "t=123"} {
			if err := svc.VerifySignature(payload, header, now); err == nil {
				t.Fatalf("expected error for header %q", header)
			}
		}
	})
}

func TestParseStripeEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_test_1", "payment_intent": "pi_1", "metadata": {"tipo": "compra_horas", "colaborador_id": "7"}}}
	}`)
	event, err := ParseStripeEvent(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.ID != "evt_1" || event.Type != "checkout.session.completed" {
		t.Fatalf("unexpected envelope: %+v", event)
	}
	if event.Data.Object.ID != "cs_test_1" || event.Data.Object.PaymentIntent != "pi_1" {
		t.Fatalf("unexpected session: %+v", event.Data.Object)
	}
	if event.Data.Object.Metadata["tipo"] != "compra_horas" {
		t.Fatalf("expected metadata tipo, got %v", event.Data.Object.Metadata)
	}

	if _, err := ParseStripeEvent([]byte(`{"id":"evt_1"}`)); err == nil {
		t.Fatal("expected error for missing type")
	}
	if _, err := ParseStripeEvent([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotAuth, gotAmount, gotTipo string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotAuth = r.Header.Get("Authorization")
		gotAmount = r.PostForm.Get("line_items[0][price_data][unit_amount]")
		gotTipo = r.PostForm.Get("metadata[tipo]")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_9","url":"https://checkout.stripe.com/pay/cs_test_9"}`))
	}))
	defer server.Close()

	svc := &StripeService{
		SecretKey:  "sk_test",
		SuccessURL: "https://example.com/ok",
		CancelURL:  "https://example.com/cancel",
		BaseURL:    server.URL,
		Client:     server.Client(),
	}
	session, err := svc.CreateCheckoutSession(context.Background(), "Pack 10h", 45000, map[string]string{"tipo": "compra_horas"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ID != "cs_test_9" {
		t.Fatalf("expected cs_test_9, got %s", session.ID)
	}
	if gotAuth != "Bearer sk_test" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotAmount != "45000" {
		t.Fatalf("expected amount 45000, got %q", gotAmount)
	}
	if gotTipo != "compra_horas" {
		t.Fatalf("expected metadata tipo, got %q", gotTipo)
	}
}

func TestCreateCheckoutSessionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"card declined"}}`))
	}))
	defer server.Close()

	svc := &StripeService{SecretKey: "sk_test", BaseURL: server.URL, Client: server.Client()}
	_, err := svc.CreateCheckoutSession(context.Background(), "Pack", 100, nil)
	stripeErr, ok := err.(*StripeError)
	if !ok {
		t.Fatalf("expected *StripeError, got %T: %v", err, err)
	}
	if stripeErr.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected %d, got %d", http.StatusPaymentRequired, stripeErr.StatusCode)
	}
}
