package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StripeService creates checkout sessions and verifies webhook signatures.
type StripeService struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string

	BaseURL string // default https://api.stripe.com
	Client  *http.Client

	// Tolerance limits how old a signed webhook timestamp may be.
	Tolerance time.Duration
}

type StripeError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StripeError) Error() string {
	return fmt.Sprintf("stripe: unexpected response %s: %s", e.Status, e.Body)
}

// StripeCheckoutSession is the subset of the session object this service uses.
type StripeCheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

// StripeEvent is the envelope delivered to the webhook endpoint.
type StripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object StripeCheckoutSession `json:"object"`
	} `json:"data"`
}

func (s *StripeService) baseURL() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return "https://api.stripe.com"
}

func (s *StripeService) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// CreateCheckoutSession opens a payment session for a single line item. The
// metadata travels back on the completed-session webhook and drives routing.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, name string, amountCents int64, metadata map[string]string) (StripeCheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", s.SuccessURL)
	form.Set("cancel_url", s.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "eur")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(amountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", name)
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL()+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return StripeCheckoutSession{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client().Do(req)
	if err != nil {
		return StripeCheckoutSession{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return StripeCheckoutSession{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return StripeCheckoutSession{}, &StripeError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	var session StripeCheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return StripeCheckoutSession{}, err
	}
	return session, nil
}

var ErrBadStripeSignature = errors.New("stripe signature verification failed")

// VerifySignature checks the Stripe-Signature header: HMAC-SHA256 of
// "<t>.<payload>" keyed with the webhook secret, compared against every v1
// candidate in the header. Rejects stale timestamps outside the tolerance.
func (s *StripeService) VerifySignature(payload []byte, header string, now time.Time) error {
	tolerance := s.Tolerance
	if tolerance == 0 {
		tolerance = 5 * time.Minute
	}

	var ts string
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts = kv[1]
		case "v1":
			candidates = append(candidates, kv[1])
		}
	}
	if ts == "" || len(candidates) == 0 {
		return ErrBadStripeSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrBadStripeSignature
	}
	age := now.Sub(time.Unix(unix, 0))
	if age > tolerance || age < -tolerance {
		return ErrBadStripeSignature
	}

	mac := hmac.New(sha256.New, []byte(s.WebhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		sig, err := hex.DecodeString(candidate)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return ErrBadStripeSignature
}

// SignPayload produces a Stripe-Signature header value for the payload. Used
// by tests and local tooling.
func (s *StripeService) SignPayload(payload []byte, now time.Time) string {
	ts := strconv.FormatInt(now.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(s.WebhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// ParseEvent decodes a webhook envelope.
func ParseStripeEvent(payload []byte) (StripeEvent, error) {
	var event StripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return StripeEvent{}, err
	}
	if event.ID == "" || event.Type == "" {
		return StripeEvent{}, errors.New("stripe event missing id or type")
	}
	return event, nil
}
