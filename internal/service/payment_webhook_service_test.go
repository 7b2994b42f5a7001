package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/payment"
	"github.com/receitas-next/internal/payment/stripe"
)

type stubGateway struct {
	name  string
	event *payment.Event
	err   error
}

func (g stubGateway) Name() string { return g.name }

func (g stubGateway) ParseWebhook(context.Context, payment.WebhookRequest) (*payment.Event, error) {
	return g.event, g.err
}

func TestPaymentWebhookAccruesOnSuccess(t *testing.T) {
	env := setupLedgerServiceTest(t)
	affiliate := env.createUser(t, "afiliado@example.com", nil)
	payer := env.createUser(t, "comprador@example.com", &affiliate.ID)
	svc := NewPaymentWebhookService(payment.NewRegistry(stubGateway{
		name: constants.PaymentFlowStripe,
		event: &payment.Event{
			Gateway:          constants.PaymentFlowStripe,
			GatewayPaymentID: "pi_hook",
			Status:           payment.StatusSuccess,
			Amount:           "29.90",
			Currency:         "brl",
			PayerUserID:      payer.ID,
			Raw:              map[string]interface{}{"id": "evt_1"},
		},
	}), env.commissions)

	outcome, err := svc.Handle(context.Background(), "Stripe", payment.WebhookRequest{})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if !outcome.Accepted || !outcome.Updated || outcome.CommissionID == 0 {
		t.Fatalf("expected accrued outcome, got %+v", outcome)
	}
	var stored models.Pagamento
	if err := env.db.First(&stored, "id_pagamento_gateway = ?", "pi_hook").Error; err != nil {
		t.Fatalf("payment not stored: %v", err)
	}
	assertMoney(t, "valor", stored.Valor, "29.90")

	replay, err := svc.Handle(context.Background(), "stripe", payment.WebhookRequest{})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !replay.Accepted || replay.Updated || !replay.Duplicate {
		t.Fatalf("expected duplicate no-op, got %+v", replay)
	}
}

func TestPaymentWebhookIgnoresNonSuccess(t *testing.T) {
	env := setupLedgerServiceTest(t)
	svc := NewPaymentWebhookService(payment.NewRegistry(stubGateway{
		name:  constants.PaymentFlowMercadoPago,
		event: &payment.Event{Status: payment.StatusPending, GatewayPaymentID: "1"},
	}), env.commissions)

	outcome, err := svc.Handle(context.Background(), constants.PaymentFlowMercadoPago, payment.WebhookRequest{})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if !outcome.Accepted || outcome.Updated {
		t.Fatalf("expected accepted without update, got %+v", outcome)
	}
}

func TestPaymentWebhookUnknownPayerIsAcknowledged(t *testing.T) {
	env := setupLedgerServiceTest(t)
	svc := NewPaymentWebhookService(payment.NewRegistry(stubGateway{
		name:  constants.PaymentFlowAsaas,
		event: &payment.Event{Status: payment.StatusSuccess, GatewayPaymentID: "pay_x", PayerEmail: "x@example.com"},
	}), env.commissions)

	outcome, err := svc.Handle(context.Background(), constants.PaymentFlowAsaas, payment.WebhookRequest{})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if !outcome.Accepted || outcome.Updated {
		t.Fatalf("expected acknowledged no-op, got %+v", outcome)
	}
}

func TestPaymentWebhookErrors(t *testing.T) {
	env := setupLedgerServiceTest(t)
	svc := NewPaymentWebhookService(payment.NewRegistry(
		stubGateway{name: constants.PaymentFlowStripe, err: errors.Join(payment.ErrSignatureInvalid, errors.New("bad v1"))},
		stubGateway{name: constants.PaymentFlowAsaas, event: &payment.Event{Status: payment.StatusSuccess}},
	), env.commissions)
	ctx := context.Background()

	if _, err := svc.Handle(ctx, constants.PaymentFlowStripe, payment.WebhookRequest{}); !errors.Is(err, payment.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
	if _, err := svc.Handle(ctx, "paypal", payment.WebhookRequest{}); !errors.Is(err, payment.ErrGatewayNotFound) {
		t.Fatalf("expected ErrGatewayNotFound, got %v", err)
	}
	if _, err := svc.Handle(ctx, constants.PaymentFlowAsaas, payment.WebhookRequest{}); !errors.Is(err, payment.ErrPayloadInvalid) {
		t.Fatalf("expected ErrPayloadInvalid for missing payment id, got %v", err)
	}
}

func stripeWebhookRequest(secret string, body []byte) payment.WebhookRequest {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(fmt.Sprintf("%d.%s", ts, body)))
	return payment.WebhookRequest{
		Headers: map[string]string{"Stripe-Signature": fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))},
		Body:    body,
	}
}

func TestPaymentWebhookUnpaidCheckoutDoesNotAccrue(t *testing.T) {
	env := setupLedgerServiceTest(t)
	affiliate := env.createUser(t, "afiliado-boleto@example.com", nil)
	payer := env.createUser(t, "comprador-boleto@example.com", &affiliate.ID)
	const secret = "whsec_boleto"
	svc := NewPaymentWebhookService(payment.NewRegistry(stripe.New(stripe.Config{WebhookSecret: secret})), env.commissions)

	session := func(paymentStatus string) []byte {
		return []byte(fmt.Sprintf(`{"id":"evt_%[1]s","type":"checkout.session.completed","data":{"object":{"object":"checkout.session","id":"cs_boleto","payment_intent":"pi_boleto","payment_status":%[1]q,"currency":"brl","amount_total":2990,"payment_method_types":["boleto"],"metadata":{"user_id":"%[2]d"}}}}`, paymentStatus, payer.ID))
	}

	outcome, err := svc.Handle(context.Background(), constants.PaymentFlowStripe, stripeWebhookRequest(secret, session("unpaid")))
	if err != nil {
		t.Fatalf("handle unpaid failed: %v", err)
	}
	if !outcome.Accepted || outcome.Updated || outcome.CommissionID != 0 {
		t.Fatalf("unpaid session must not accrue, got %+v", outcome)
	}
	var payments, commissions int64
	env.db.Model(&models.Pagamento{}).Count(&payments)
	env.db.Model(&models.Comissao{}).Count(&commissions)
	if payments != 0 || commissions != 0 {
		t.Fatalf("expected no rows, got payments=%d commissions=%d", payments, commissions)
	}

	// 款项到账后同一支付仍可正常计提
	outcome, err = svc.Handle(context.Background(), constants.PaymentFlowStripe, stripeWebhookRequest(secret, session("paid")))
	if err != nil {
		t.Fatalf("handle paid failed: %v", err)
	}
	if !outcome.Updated || outcome.CommissionID == 0 {
		t.Fatalf("paid session should accrue, got %+v", outcome)
	}
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"comprador@example.com": "c***@example.com",
		"ágata@example.com":     "á***@example.com",
		"sem-arroba":            "",
		"":                      "",
	}
	for in, want := range cases {
		if got := maskEmail(in); got != want {
			t.Fatalf("maskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
