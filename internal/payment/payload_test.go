package payment

import (
	"context"
	"errors"
	"testing"
)

func TestDecodeRawMapKeepsNumbers(t *testing.T) {
	raw, err := DecodeRawMap([]byte(`{"id":123456789012,"amount":9.9,"meta":{"user_id":"7"}}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got := ReadString(raw, "id"); got != "123456789012" {
		t.Fatalf("large id should keep precision, got %s", got)
	}
	if got := ReadString(raw, "amount"); got != "9.9" {
		t.Fatalf("amount text mismatch, got %s", got)
	}
	if got := ParseUintID(ReadString(ReadMap(raw, "meta"), "user_id")); got != 7 {
		t.Fatalf("user id want 7 got %d", got)
	}
	if got := ReadInt64(raw, "id"); got != 123456789012 {
		t.Fatalf("int64 id mismatch, got %d", got)
	}
}

func TestParseUintIDRejectsInvalid(t *testing.T) {
	for _, raw := range []string{"", "0", "-1", "abc", "1.5"} {
		if got := ParseUintID(raw); got != 0 {
			t.Fatalf("ParseUintID(%q) want 0 got %d", raw, got)
		}
	}
}

func TestWebhookRequestHeaderCaseInsensitive(t *testing.T) {
	req := WebhookRequest{Headers: map[string]string{"X-Signature": " ts=1,v1=abc "}}
	if got := req.Header("x-signature"); got != "ts=1,v1=abc" {
		t.Fatalf("header lookup mismatch: %q", got)
	}
}

type stubGateway struct{ name string }

func (g stubGateway) Name() string { return g.name }

func (g stubGateway) ParseWebhook(context.Context, WebhookRequest) (*Event, error) {
	return &Event{Gateway: g.name, Status: StatusSuccess}, nil
}

func TestRegistryGet(t *testing.T) {
	registry := NewRegistry(stubGateway{name: "Stripe"}, nil)
	gateway, err := registry.Get(" stripe ")
	if err != nil || gateway.Name() != "Stripe" {
		t.Fatalf("registry lookup failed: %v", err)
	}
	if _, err := registry.Get("asaas"); !errors.Is(err, ErrGatewayNotFound) {
		t.Fatalf("expected ErrGatewayNotFound, got %v", err)
	}
}

func TestParseExternalReference(t *testing.T) {
	cases := []struct {
		ref       string
		user      uint
		affiliate uint
	}{
		{ref: "", user: 0, affiliate: 0},
		{ref: "42", user: 42, affiliate: 0},
		{ref: "user:5;affiliate:9", user: 5, affiliate: 9},
		{ref: " affiliate:3 ; user:8 ", user: 8, affiliate: 3},
		{ref: "order-abc", user: 0, affiliate: 0},
	}
	for _, tc := range cases {
		user, affiliate := ParseExternalReference(tc.ref)
		if user != tc.user || affiliate != tc.affiliate {
			t.Fatalf("ParseExternalReference(%q) = (%d,%d), want (%d,%d)", tc.ref, user, affiliate, tc.user, tc.affiliate)
		}
	}
}
