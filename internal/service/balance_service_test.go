package service

import (
	"context"
	"errors"
	"testing"

	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/models"

	"github.com/shopspring/decimal"
)

func TestReleaseBalancePromotesWholePendingRecords(t *testing.T) {
	env := setupLedgerServiceTest(t)
	user := env.createUser(t, "afiliado@example.com", nil)
	future := ledgerTestNow.AddDate(0, 0, 30)
	first := env.createCommission(t, user.ID, "5.00", constants.CommissionStatusPending, future)
	second := env.createCommission(t, user.ID, "5.00", constants.CommissionStatusPending, future)
	third := env.createCommission(t, user.ID, "5.00", constants.CommissionStatusPending, future)

	result, err := env.balances.ReleaseBalance(context.Background(), user.ID, decimal.RequireFromString("6"), 1)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	assertMoney(t, "released", result.Released, "10.00")
	assertMoney(t, "saldo_pendente", result.SaldoPendente, "5.00")
	assertMoney(t, "saldo_disponivel", result.SaldoDisponivel, "10.00")
	if len(result.CommissionIDs) != 2 || result.CommissionIDs[0] != first.ID || result.CommissionIDs[1] != second.ID {
		t.Fatalf("expected oldest two records promoted, got %v", result.CommissionIDs)
	}
	if row := env.reloadCommission(t, third.ID); row.Status != constants.CommissionStatusPending {
		t.Fatalf("third record must stay pending, got %s", row.Status)
	}
	if row := env.reloadCommission(t, first.ID); row.DataDisponivel == nil {
		t.Fatalf("promoted record must carry data_disponivel")
	}
	if got := env.countNotifications(t, user.ID, constants.NotificationTypeBalanceReleased); got != 1 {
		t.Fatalf("expected release notification, got %d", got)
	}
}

func TestReleaseBalanceErrors(t *testing.T) {
	env := setupLedgerServiceTest(t)
	user := env.createUser(t, "afiliado@example.com", nil)
	env.createCommission(t, user.ID, "9.90", constants.CommissionStatusPending, ledgerTestNow.AddDate(0, 0, 30))
	ctx := context.Background()

	if _, err := env.balances.ReleaseBalance(ctx, user.ID, decimal.Zero, 1); !errors.Is(err, ErrReleaseAmountInvalid) {
		t.Fatalf("expected ErrReleaseAmountInvalid, got %v", err)
	}
	if _, err := env.balances.ReleaseBalance(ctx, 9999, decimal.NewFromInt(1), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := env.balances.ReleaseBalance(ctx, user.ID, decimal.NewFromInt(10), 1); !errors.Is(err, ErrInsufficientPendingBalance) {
		t.Fatalf("expected ErrInsufficientPendingBalance, got %v", err)
	}
	reloaded := env.reloadUser(t, user.ID)
	assertMoney(t, "saldo_pendente", reloaded.SaldoPendente, "9.90")
}

func TestRecomputeBalancesRepairsCache(t *testing.T) {
	env := setupLedgerServiceTest(t)
	user := env.createUser(t, "afiliado@example.com", nil)
	env.createCommission(t, user.ID, "9.90", constants.CommissionStatusAvailable, ledgerTestNow)
	env.createCommission(t, user.ID, "9.90", constants.CommissionStatusPending, ledgerTestNow.AddDate(0, 0, 3))
	if err := env.db.Model(&models.Usuario{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"saldo":            "999.00",
		"saldo_disponivel": "999.00",
	}).Error; err != nil {
		t.Fatalf("corrupt cache failed: %v", err)
	}

	snapshot, err := env.balances.RecomputeBalances(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if snapshot.Total().StringFixed(2) != "19.80" {
		t.Fatalf("expected total 19.80, got %s", snapshot.Total().StringFixed(2))
	}
	reloaded := env.reloadUser(t, user.ID)
	assertMoney(t, "saldo_disponivel", reloaded.SaldoDisponivel, "9.90")
	assertMoney(t, "saldo", reloaded.Saldo, "19.80")
}

func TestGetCommissionOverview(t *testing.T) {
	env := setupLedgerServiceTest(t)
	user := env.createUser(t, "afiliado@example.com", nil)
	env.createCommission(t, user.ID, "9.90", constants.CommissionStatusAvailable, ledgerTestNow)
	env.createCommission(t, user.ID, "9.90", constants.CommissionStatusPending, ledgerTestNow.AddDate(0, 0, 3))

	overview, err := env.balances.GetCommissionOverview(user.ID)
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if len(overview.Comissoes) != 2 {
		t.Fatalf("expected 2 commissions, got %d", len(overview.Comissoes))
	}
	assertMoney(t, "saldo_pendente", overview.SaldoPendente, "9.90")
	assertMoney(t, "saldo_disponivel", overview.SaldoDisponivel, "9.90")

	if _, err := env.balances.GetCommissionOverview(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
