package models

import (
	"encoding/json"
	"testing"
)

func TestParseMoneyAcceptsCommaDecimal(t *testing.T) {
	got, err := ParseMoney(" 9,9 ")
	if err != nil {
		t.Fatalf("parse comma amount failed: %v", err)
	}
	if got.String() != "9.90" {
		t.Fatalf("unexpected amount: %s", got.String())
	}
	if _, err := ParseMoney("abc"); err == nil {
		t.Fatalf("expected error for invalid amount")
	}
}

func TestMoneyJSONRoundsToCents(t *testing.T) {
	var payload struct {
		Amount Money `json:"amount"`
		Fee    Money `json:"fee"`
	}
	if err := json.Unmarshal([]byte(`{"amount":"19.805","fee":null}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload.Amount.String() != "19.81" || !payload.Fee.IsZero() {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if err := json.Unmarshal([]byte(`{"amount":12.5}`), &payload); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	raw, err := json.Marshal(payload.Amount)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `"12.50"` {
		t.Fatalf("unexpected json: %s", raw)
	}
}
