package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/repository"

	"github.com/shopspring/decimal"
)

func setupWithdrawalFixture(t *testing.T) (*ledgerTestEnv, models.Usuario, []models.Comissao) {
	t.Helper()
	env := setupLedgerServiceTest(t)
	user := env.createUser(t, "afiliado@example.com", nil)
	rows := []models.Comissao{
		env.createCommission(t, user.ID, "5.00", constants.CommissionStatusAvailable, ledgerTestNow),
		env.createCommission(t, user.ID, "5.00", constants.CommissionStatusAvailable, ledgerTestNow),
		env.createCommission(t, user.ID, "5.00", constants.CommissionStatusAvailable, ledgerTestNow),
	}
	return env, user, rows
}

func TestRequestWithdrawalAllocatesWholeRecordsFIFO(t *testing.T) {
	env, user, rows := setupWithdrawalFixture(t)

	withdrawal, err := env.withdrawals.RequestWithdrawal(context.Background(), WithdrawalRequestInput{
		UserID: user.ID,
		Amount: decimal.RequireFromString("8"),
		PixKey: "afiliado@example.com",
	})
	if err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}
	if withdrawal.Status != constants.WithdrawalStatusPending {
		t.Fatalf("expected pendente, got %s", withdrawal.Status)
	}
	assertMoney(t, "valor", withdrawal.Valor, "8.00")
	assertMoney(t, "valor_alocado", withdrawal.ValorAlocado, "10.00")

	for i, row := range rows[:2] {
		got := env.reloadCommission(t, row.ID)
		if got.Status != constants.CommissionStatusPaid || got.IDSaque == nil || *got.IDSaque != withdrawal.ID {
			t.Fatalf("row %d expected paid and linked, got %+v", i, got)
		}
	}
	if third := env.reloadCommission(t, rows[2].ID); third.Status != constants.CommissionStatusAvailable || third.IDSaque != nil {
		t.Fatalf("third row must stay available, got %+v", third)
	}

	reloaded := env.reloadUser(t, user.ID)
	assertMoney(t, "saldo_disponivel", reloaded.SaldoDisponivel, "5.00")
	assertMoney(t, "saldo", reloaded.Saldo, "5.00")
	if got := env.publisher.count(constants.LedgerEventWithdrawalRequested); got != 1 {
		t.Fatalf("expected requested event, got %d", got)
	}
}

func TestRequestWithdrawalInsufficientBalance(t *testing.T) {
	env, user, _ := setupWithdrawalFixture(t)
	env.createCommission(t, user.ID, "50.00", constants.CommissionStatusPending, ledgerTestNow.AddDate(0, 0, 10))

	_, err := env.withdrawals.RequestWithdrawal(context.Background(), WithdrawalRequestInput{
		UserID: user.ID,
		Amount: decimal.RequireFromString("20"),
		PixKey: "pix",
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	var count int64
	env.db.Model(&models.Saque{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no withdrawal rows, got %d", count)
	}
}

func TestRequestWithdrawalValidation(t *testing.T) {
	env, user, _ := setupWithdrawalFixture(t)
	ctx := context.Background()

	if _, err := env.withdrawals.RequestWithdrawal(ctx, WithdrawalRequestInput{UserID: user.ID, Amount: decimal.Zero, PixKey: "pix"}); !errors.Is(err, ErrWithdrawalAmountInvalid) {
		t.Fatalf("expected ErrWithdrawalAmountInvalid, got %v", err)
	}
	if _, err := env.withdrawals.RequestWithdrawal(ctx, WithdrawalRequestInput{UserID: user.ID, Amount: decimal.RequireFromString("1")}); !errors.Is(err, ErrWithdrawalDestinationMissing) {
		t.Fatalf("expected ErrWithdrawalDestinationMissing, got %v", err)
	}

	if _, err := env.settings.UpdateLedgerSetting(ctx, LedgerSetting{
		CommissionValue:   "9.90",
		MaturationDays:    map[string]int{"default": 15},
		MinWithdrawAmount: "10.00",
	}); err != nil {
		t.Fatalf("update ledger setting failed: %v", err)
	}
	if _, err := env.withdrawals.RequestWithdrawal(ctx, WithdrawalRequestInput{UserID: user.ID, Amount: decimal.RequireFromString("9.99"), PixKey: "pix"}); !errors.Is(err, ErrWithdrawalAmountBelowMinimum) {
		t.Fatalf("expected ErrWithdrawalAmountBelowMinimum, got %v", err)
	}
}

func TestRequestWithdrawalFallsBackToStoredPixKey(t *testing.T) {
	env, user, _ := setupWithdrawalFixture(t)
	if err := env.db.Model(&models.Usuario{}).Where("id = ?", user.ID).Update("chave_pix", "+5511999999999").Error; err != nil {
		t.Fatalf("update pix failed: %v", err)
	}

	withdrawal, err := env.withdrawals.RequestWithdrawal(context.Background(), WithdrawalRequestInput{
		UserID: user.ID,
		Amount: decimal.RequireFromString("5"),
	})
	if err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}
	if withdrawal.ChavePixUsada != "+5511999999999" {
		t.Fatalf("expected stored pix key, got %q", withdrawal.ChavePixUsada)
	}
	assertMoney(t, "valor_alocado", withdrawal.ValorAlocado, "5.00")
}

func TestProcessWithdrawalRejectRestoresCommissions(t *testing.T) {
	env, user, rows := setupWithdrawalFixture(t)
	ctx := context.Background()
	withdrawal, err := env.withdrawals.RequestWithdrawal(ctx, WithdrawalRequestInput{
		UserID: user.ID,
		Amount: decimal.RequireFromString("8"),
		PixKey: "pix",
	})
	if err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}

	processed, err := env.withdrawals.ProcessWithdrawal(ctx, WithdrawalProcessInput{
		WithdrawalID: withdrawal.ID,
		AdminID:      7,
		Decision:     "Rejeitado",
		Reason:       "dados bancários inválidos",
	})
	if err != nil {
		t.Fatalf("process withdrawal failed: %v", err)
	}
	if processed.Status != constants.WithdrawalStatusRejected {
		t.Fatalf("expected rejeitado, got %s", processed.Status)
	}
	if processed.ProcessadoPor == nil || *processed.ProcessadoPor != 7 || processed.DataProcessamento == nil {
		t.Fatalf("expected processed_by and processed_at recorded, got %+v", processed)
	}
	if processed.MotivoRejeicao != "dados bancários inválidos" {
		t.Fatalf("unexpected reason %q", processed.MotivoRejeicao)
	}
	for _, row := range rows {
		got := env.reloadCommission(t, row.ID)
		if got.Status != constants.CommissionStatusAvailable || got.IDSaque != nil {
			t.Fatalf("expected restored commission, got %+v", got)
		}
	}
	reloaded := env.reloadUser(t, user.ID)
	assertMoney(t, "saldo_disponivel", reloaded.SaldoDisponivel, "15.00")
	if got := env.countNotifications(t, user.ID, constants.NotificationTypeWithdrawalRejected); got != 1 {
		t.Fatalf("expected rejection notification, got %d", got)
	}

	_, err = env.withdrawals.ProcessWithdrawal(ctx, WithdrawalProcessInput{
		WithdrawalID: withdrawal.ID,
		AdminID:      7,
		Decision:     constants.WithdrawalStatusApproved,
	})
	if !errors.Is(err, ErrWithdrawalAlreadyProcessed) {
		t.Fatalf("expected ErrWithdrawalAlreadyProcessed, got %v", err)
	}
}

func TestProcessWithdrawalApproveKeepsLedger(t *testing.T) {
	env, user, rows := setupWithdrawalFixture(t)
	ctx := context.Background()
	withdrawal, err := env.withdrawals.RequestWithdrawal(ctx, WithdrawalRequestInput{
		UserID: user.ID,
		Amount: decimal.RequireFromString("15"),
		PixKey: "pix",
	})
	if err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}

	processed, err := env.withdrawals.ProcessWithdrawal(ctx, WithdrawalProcessInput{
		WithdrawalID: withdrawal.ID,
		AdminID:      1,
		Decision:     constants.WithdrawalStatusApproved,
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if processed.Status != constants.WithdrawalStatusApproved {
		t.Fatalf("expected aprovado, got %s", processed.Status)
	}
	for _, row := range rows {
		if got := env.reloadCommission(t, row.ID); got.Status != constants.CommissionStatusPaid {
			t.Fatalf("approved withdrawal must keep rows paid, got %s", got.Status)
		}
	}
	reloaded := env.reloadUser(t, user.ID)
	assertMoney(t, "saldo", reloaded.Saldo, "0.00")
}

func TestProcessWithdrawalErrors(t *testing.T) {
	env, _, _ := setupWithdrawalFixture(t)
	ctx := context.Background()

	if _, err := env.withdrawals.ProcessWithdrawal(ctx, WithdrawalProcessInput{WithdrawalID: 99, Decision: "pago"}); !errors.Is(err, ErrWithdrawalDecisionInvalid) {
		t.Fatalf("expected ErrWithdrawalDecisionInvalid, got %v", err)
	}
	if _, err := env.withdrawals.ProcessWithdrawal(ctx, WithdrawalProcessInput{WithdrawalID: 99, Decision: "aprovado"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListWithdrawalsIncludesRequesterName(t *testing.T) {
	env, user, _ := setupWithdrawalFixture(t)
	ctx := context.Background()
	if _, err := env.withdrawals.RequestWithdrawal(ctx, WithdrawalRequestInput{
		UserID: user.ID,
		Amount: decimal.RequireFromString("5"),
		PixKey: "pix",
	}); err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}

	items, total, err := env.withdrawals.ListWithdrawals(repository.WithdrawalListFilter{Status: "PENDENTE"})
	if err != nil {
		t.Fatalf("list withdrawals failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected one item, got total=%d len=%d", total, len(items))
	}
	if items[0].NomeSolicitante != user.Nome || items[0].Usuario != nil {
		t.Fatalf("expected flattened requester name, got %+v", items[0])
	}

	if _, _, err := env.withdrawals.ListWithdrawals(repository.WithdrawalListFilter{Status: "pago"}); !errors.Is(err, ErrWithdrawalStatusInvalid) {
		t.Fatalf("expected ErrWithdrawalStatusInvalid, got %v", err)
	}

	own, err := env.withdrawals.ListUserWithdrawals(user.ID)
	if err != nil || len(own) != 1 {
		t.Fatalf("expected one own withdrawal, got %d err=%v", len(own), err)
	}
}

func TestProcessWithdrawalRejectClampsReasonOnRuneBoundary(t *testing.T) {
	env, user, _ := setupWithdrawalFixture(t)
	ctx := context.Background()
	withdrawal, err := env.withdrawals.RequestWithdrawal(ctx, WithdrawalRequestInput{
		UserID: user.ID,
		Amount: decimal.RequireFromString("5"),
		PixKey: "pix",
	})
	if err != nil {
		t.Fatalf("request withdrawal failed: %v", err)
	}

	// 奇数个 ASCII 前缀让字节截断落在 "ã" 中间
	reason := "a" + strings.Repeat("ã", 600)
	processed, err := env.withdrawals.ProcessWithdrawal(ctx, WithdrawalProcessInput{
		WithdrawalID: withdrawal.ID,
		AdminID:      7,
		Decision:     constants.WithdrawalStatusRejected,
		Reason:       reason,
	})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	var stored models.Saque
	if err := env.db.First(&stored, withdrawal.ID).Error; err != nil {
		t.Fatalf("reload withdrawal failed: %v", err)
	}
	for _, got := range []string{processed.MotivoRejeicao, stored.MotivoRejeicao} {
		if !utf8.ValidString(got) {
			t.Fatalf("reason is not valid utf-8: %q", got)
		}
		if n := utf8.RuneCountInString(got); n != withdrawalReasonMaxLength {
			t.Fatalf("expected %d characters, got %d", withdrawalReasonMaxLength, n)
		}
		if !strings.HasPrefix(got, "aãã") {
			t.Fatalf("unexpected reason prefix: %q", string([]rune(got)[:3]))
		}
	}
}

func TestClampWithdrawalReason(t *testing.T) {
	if got := clampWithdrawalReason("  não  "); got != "não" {
		t.Fatalf("unexpected trim result %q", got)
	}
	short := strings.Repeat("é", withdrawalReasonMaxLength)
	if got := clampWithdrawalReason(short); got != short {
		t.Fatalf("reason at the limit must be kept intact")
	}
}
