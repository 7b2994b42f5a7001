package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/receitas-next/internal/payment"
)

func signedHeaders(secret string, ts int64, body []byte) map[string]string {
	return map[string]string{
		"Stripe-Signature": fmt.Sprintf("t=%d,v1=%s", ts, computeSignature(secret, ts, body)),
	}
}

func TestVerifyAndParseWebhookCheckoutCompleted(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := &Config{
		WebhookSecret:           "whsec_test_abc",
		WebhookToleranceSeconds: 300,
	}
	payload := map[string]interface{}{
		"id":   "evt_test_1",
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"object":               "checkout.session",
				"id":                   "cs_test_123",
				"payment_intent":       "pi_test_123",
				"payment_status":       "paid",
				"currency":             "brl",
				"amount_total":         2990,
				"created":              now.Unix(),
				"payment_method_types": []interface{}{"card"},
				"customer_details":     map[string]interface{}{"email": "payer@example.com"},
				"metadata": map[string]interface{}{
					"user_id":      "12",
					"affiliate_id": "7",
				},
			},
		},
	}
	body, _ := json.Marshal(payload)

	result, err := VerifyAndParseWebhook(cfg, signedHeaders(cfg.WebhookSecret, now.Unix(), body), body, now)
	if err != nil {
		t.Fatalf("verify and parse webhook failed: %v", err)
	}
	if result.Status != payment.StatusSuccess {
		t.Fatalf("unexpected status: %s", result.Status)
	}
	if result.GatewayPaymentID() != "pi_test_123" {
		t.Fatalf("payment intent should be the idempotency key, got %s", result.GatewayPaymentID())
	}
	if result.Amount != "29.90" || result.Currency != "BRL" {
		t.Fatalf("unexpected amount: %s %s", result.Amount, result.Currency)
	}
	if result.UserID != 12 || result.AffiliateID != 7 {
		t.Fatalf("unexpected metadata ids: user=%d affiliate=%d", result.UserID, result.AffiliateID)
	}
	if result.CustomerEmail != "payer@example.com" || result.Method != "card" {
		t.Fatalf("unexpected customer details: %s %s", result.CustomerEmail, result.Method)
	}
}

func TestVerifyAndParseWebhookInvalidSignature(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := &Config{WebhookSecret: "whsec_test_abc"}
	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"object":"checkout.session","id":"cs_1"}}}`)
	headers := map[string]string{
		"Stripe-Signature": "t=1760000000,v1=invalid-signature",
	}

	_, err := VerifyAndParseWebhook(cfg, headers, body, now)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected signature error, got %v", err)
	}
}

func TestVerifyAndParseWebhookOutsideTolerance(t *testing.T) {
	signedAt := time.Unix(1760000000, 0)
	cfg := &Config{WebhookSecret: "whsec_test_abc", WebhookToleranceSeconds: 60}
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"object":"payment_intent","id":"pi_1"}}}`)

	_, err := VerifyAndParseWebhook(cfg, signedHeaders(cfg.WebhookSecret, signedAt.Unix(), body), body, signedAt.Add(10*time.Minute))
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected replayed event to be rejected, got %v", err)
	}
}

func TestGatewayParseWebhookPaymentIntent(t *testing.T) {
	now := time.Unix(1760000000, 0)
	gateway := New(Config{WebhookSecret: "whsec_gateway"})
	gateway.now = func() time.Time { return now }

	body := []byte(`{"id":"evt_2","type":"payment_intent.succeeded","data":{"object":{"object":"payment_intent","id":"pi_42","currency":"brl","amount":1990,"amount_received":1990,"receipt_email":"buyer@example.com","metadata":{"user_id":"3"}}}}`)
	event, err := gateway.ParseWebhook(context.Background(), payment.WebhookRequest{
		Headers: signedHeaders("whsec_gateway", now.Unix(), body),
		Body:    body,
	})
	if err != nil {
		t.Fatalf("parse webhook failed: %v", err)
	}
	if !event.IsSuccess() || event.GatewayPaymentID != "pi_42" || event.PayerUserID != 3 || event.AffiliateID != 0 {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Amount != "19.90" {
		t.Fatalf("unexpected amount: %s", event.Amount)
	}

	_, err = gateway.ParseWebhook(context.Background(), payment.WebhookRequest{
		Headers: map[string]string{"Stripe-Signature": "t=1760000000,v1=deadbeef"},
		Body:    body,
	})
	if !errors.Is(err, payment.ErrSignatureInvalid) {
		t.Fatalf("expected payment.ErrSignatureInvalid, got %v", err)
	}
}

func TestMapPaymentIntentStatus(t *testing.T) {
	if got := mapPaymentIntentStatus("succeeded"); got != payment.StatusSuccess {
		t.Fatalf("expected success, got %s", got)
	}
	if got := mapPaymentIntentStatus("processing"); got != payment.StatusPending {
		t.Fatalf("expected pending, got %s", got)
	}
	if got := mapPaymentIntentStatus("canceled"); got != payment.StatusFailed {
		t.Fatalf("expected failed, got %s", got)
	}
}

func TestVerifyAndParseWebhookCheckoutCompletedUsesPaymentStatus(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := &Config{WebhookSecret: "whsec_test_abc", WebhookToleranceSeconds: 300}
	cases := map[string]string{
		"unpaid":              payment.StatusPending,
		"paid":                payment.StatusSuccess,
		"no_payment_required": payment.StatusSuccess,
	}
	for paymentStatus, want := range cases {
		body := []byte(fmt.Sprintf(`{"id":"evt_boleto","type":"checkout.session.completed","data":{"object":{"object":"checkout.session","id":"cs_boleto","payment_status":%q,"currency":"brl","amount_total":2990,"payment_method_types":["boleto"],"metadata":{"user_id":"12"}}}}`, paymentStatus))
		result, err := VerifyAndParseWebhook(cfg, signedHeaders(cfg.WebhookSecret, now.Unix(), body), body, now)
		if err != nil {
			t.Fatalf("payment_status=%s: parse failed: %v", paymentStatus, err)
		}
		if result.Status != want {
			t.Fatalf("payment_status=%s: got status %s want %s", paymentStatus, result.Status, want)
		}
	}
}

func TestVerifyAndParseWebhookAsyncPaymentSucceeded(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := &Config{WebhookSecret: "whsec_test_abc"}
	// async_payment_succeeded 时 session 快照可能仍带 unpaid
	body := []byte(`{"id":"evt_async","type":"checkout.session.async_payment_succeeded","data":{"object":{"object":"checkout.session","id":"cs_boleto","payment_status":"unpaid","currency":"brl","amount_total":2990}}}`)
	result, err := VerifyAndParseWebhook(cfg, signedHeaders(cfg.WebhookSecret, now.Unix(), body), body, now)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.Status != payment.StatusSuccess {
		t.Fatalf("expected success, got %s", result.Status)
	}
}
