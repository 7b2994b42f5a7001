package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/receitas-next/internal/config"
	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/models"
)

func TestLedgerDefaultSettingFromConfig(t *testing.T) {
	setting := LedgerDefaultSetting(config.LedgerConfig{
		CommissionValue:   "9,9",
		MaturationDays:    map[string]int{" Stripe ": 15, "mercadopago": 45, "": 3},
		MinWithdrawAmount: "",
	})
	if setting.CommissionValue != "9.90" {
		t.Fatalf("expected 9.90, got %s", setting.CommissionValue)
	}
	if setting.MinWithdrawAmount != "0.01" {
		t.Fatalf("expected default minimum, got %s", setting.MinWithdrawAmount)
	}
	if setting.MaturationDays["stripe"] != 15 || setting.MaturationDays["mercadopago"] != 45 {
		t.Fatalf("unexpected maturation days %+v", setting.MaturationDays)
	}
	if setting.MaturationDays[constants.PaymentFlowDefault] != 15 {
		t.Fatalf("expected default flow to be filled, got %+v", setting.MaturationDays)
	}
	if _, ok := setting.MaturationDays[""]; ok {
		t.Fatalf("empty flow key must be dropped")
	}
}

func TestLedgerPolicyReleaseDate(t *testing.T) {
	policy := LedgerSetting{
		CommissionValue:   "9.90",
		MaturationDays:    map[string]int{"default": 10, "mercadopago": 45},
		MinWithdrawAmount: "1",
	}.ToPolicy()
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	if got := policy.ReleaseDate("MercadoPago", now); !got.Equal(now.AddDate(0, 0, 45)) {
		t.Fatalf("unexpected mercadopago release %v", got)
	}
	if got := policy.ReleaseDate("pix-manual", now); !got.Equal(now.AddDate(0, 0, 10)) {
		t.Fatalf("unknown flow must use default window, got %v", got)
	}
	if policy.CommissionValue.StringFixed(2) != "9.90" {
		t.Fatalf("unexpected commission value %s", policy.CommissionValue)
	}
}

func TestValidateLedgerSetting(t *testing.T) {
	valid := LedgerSetting{CommissionValue: "9.90", MaturationDays: map[string]int{"stripe": 15}, MinWithdrawAmount: "0.01"}
	if err := ValidateLedgerSetting(valid); err != nil {
		t.Fatalf("expected valid setting, got %v", err)
	}
	cases := []LedgerSetting{
		{CommissionValue: "0", MinWithdrawAmount: "1"},
		{CommissionValue: "abc", MinWithdrawAmount: "1"},
		{CommissionValue: "9.90", MinWithdrawAmount: "-1"},
		{CommissionValue: "9.90", MinWithdrawAmount: "1", MaturationDays: map[string]int{"stripe": -1}},
		{CommissionValue: "9.90", MinWithdrawAmount: "1", MaturationDays: map[string]int{" ": 3}},
	}
	for i, item := range cases {
		if err := ValidateLedgerSetting(item); !errors.Is(err, ErrLedgerConfigInvalid) {
			t.Fatalf("case %d expected ErrLedgerConfigInvalid, got %v", i, err)
		}
	}
}

func TestUpdateLedgerSettingPersists(t *testing.T) {
	env := setupLedgerServiceTest(t)
	ctx := context.Background()

	updated, err := env.settings.UpdateLedgerSetting(ctx, LedgerSetting{
		CommissionValue:   "12.5",
		MaturationDays:    map[string]int{"asaas": 30},
		MinWithdrawAmount: "20",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.CommissionValue != "12.50" {
		t.Fatalf("expected normalized commission, got %s", updated.CommissionValue)
	}

	loaded, err := env.settings.GetLedgerSetting(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.CommissionValue != "12.50" || loaded.MinWithdrawAmount != "20.00" {
		t.Fatalf("unexpected loaded setting %+v", loaded)
	}
	if loaded.MaturationDays["asaas"] != 30 || loaded.MaturationDays["mercadopago"] != 45 {
		t.Fatalf("expected override merged over defaults, got %+v", loaded.MaturationDays)
	}

	var stored models.Setting
	if err := env.db.First(&stored, "key = ?", constants.SettingKeyLedgerConfig).Error; err != nil {
		t.Fatalf("setting row missing: %v", err)
	}

	if _, err := env.settings.UpdateLedgerSetting(ctx, LedgerSetting{CommissionValue: "0", MinWithdrawAmount: "1"}); !errors.Is(err, ErrLedgerConfigInvalid) {
		t.Fatalf("expected ErrLedgerConfigInvalid, got %v", err)
	}
}
