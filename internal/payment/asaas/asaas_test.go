package asaas

import (
	"context"
	"errors"
	"testing"

	"github.com/receitas-next/internal/payment"
)

const confirmedBody = `{
	"id": "evt_05b708f961d739ea7eba7e4db318f621",
	"event": "PAYMENT_CONFIRMED",
	"payment": {
		"id": "pay_080225913252",
		"value": 49.9,
		"billingType": "PIX",
		"externalReference": "user:21;affiliate:4",
		"confirmedDate": "2025-02-10"
	}
}`

func TestVerifyToken(t *testing.T) {
	if err := VerifyToken("secret-token", map[string]string{"Asaas-Access-Token": "secret-token"}); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if err := VerifyToken("secret-token", map[string]string{"asaas-access-token": "other"}); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("wrong token should fail, got %v", err)
	}
	if err := VerifyToken("", map[string]string{"asaas-access-token": "x"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing config should fail, got %v", err)
	}
}

func TestParseWebhookConfirmed(t *testing.T) {
	result, err := ParseWebhook([]byte(confirmedBody))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.Status != payment.StatusSuccess || result.PaymentID != "pay_080225913252" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.UserID != 21 || result.AffiliateID != 4 || result.Amount != "49.90" || result.BillingType != "pix" {
		t.Fatalf("unexpected details: %+v", result)
	}
	if result.PaidAt == nil || result.PaidAt.Format("2006-01-02") != "2025-02-10" {
		t.Fatalf("unexpected paid at: %v", result.PaidAt)
	}
}

func TestGatewayParseWebhook(t *testing.T) {
	gateway := New(Config{WebhookToken: "secret-token"})

	event, err := gateway.ParseWebhook(context.Background(), payment.WebhookRequest{
		Headers: map[string]string{"asaas-access-token": "secret-token"},
		Body:    []byte(`{"event":"PAYMENT_CREATED","payment":{"id":"pay_1","value":10}}`),
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if event.IsSuccess() {
		t.Fatalf("created payment must not be treated as success")
	}

	_, err = gateway.ParseWebhook(context.Background(), payment.WebhookRequest{
		Headers: map[string]string{"asaas-access-token": "nope"},
		Body:    []byte(confirmedBody),
	})
	if !errors.Is(err, payment.ErrSignatureInvalid) {
		t.Fatalf("expected signature error, got %v", err)
	}
}
