package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupLedgerRepositoryTest(t *testing.T) (*GormLedgerRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.LedgerModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewLedgerRepository(db, LedgerOptions{TxTimeout: 5 * time.Second}), db
}

func createLedgerUser(t *testing.T, db *gorm.DB, email string) models.Usuario {
	t.Helper()
	user := models.Usuario{
		Nome:            email,
		Email:           email,
		SenhaHash:       "hash",
		Status:          constants.UserStatusActive,
		CodigoIndicacao: fmt.Sprintf("code-%d", time.Now().UnixNano()),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createLedgerCommission(t *testing.T, db *gorm.DB, affiliateID uint, amount string, status string, releaseAt time.Time) models.Comissao {
	t.Helper()
	row := models.Comissao{
		IDAfiliado:       affiliateID,
		IDUsuarioPagador: affiliateID,
		Fluxo:            constants.PaymentFlowDefault,
		Valor:            models.NewMoneyFromDecimal(decimal.RequireFromString(amount)),
		Status:           status,
		DataLiberacao:    releaseAt,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create commission failed: %v", err)
	}
	return row
}

func TestLedgerRepositoryRecomputeUserBalances(t *testing.T) {
	repo, db := setupLedgerRepositoryTest(t)
	now := time.Now().UTC()
	user := createLedgerUser(t, db, "recompute@example.com")

	createLedgerCommission(t, db, user.ID, "9.90", constants.CommissionStatusPending, now)
	createLedgerCommission(t, db, user.ID, "9.90", constants.CommissionStatusPending, now)
	createLedgerCommission(t, db, user.ID, "5.00", constants.CommissionStatusAvailable, now)
	createLedgerCommission(t, db, user.ID, "7.00", constants.CommissionStatusPaid, now)

	snapshot, err := repo.RecomputeUserBalances(user.ID)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if !snapshot.Pending.Equal(decimal.RequireFromString("19.80")) {
		t.Fatalf("pending want 19.80 got %s", snapshot.Pending)
	}
	if !snapshot.Available.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("available want 5.00 got %s", snapshot.Available)
	}

	var reloaded models.Usuario
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.Saldo.String() != "24.80" || reloaded.SaldoPendente.String() != "19.80" || reloaded.SaldoDisponivel.String() != "5.00" {
		t.Fatalf("unexpected cached balances: saldo=%s pendente=%s disponivel=%s",
			reloaded.Saldo, reloaded.SaldoPendente, reloaded.SaldoDisponivel)
	}
}

func TestLedgerRepositoryMatureDueCommissions(t *testing.T) {
	repo, db := setupLedgerRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)
	alice := createLedgerUser(t, db, "alice_mature@example.com")
	bob := createLedgerUser(t, db, "bob_mature@example.com")

	createLedgerCommission(t, db, alice.ID, "9.90", constants.CommissionStatusPending, now.Add(-time.Hour))
	createLedgerCommission(t, db, alice.ID, "9.90", constants.CommissionStatusPending, now.Add(-2*time.Hour))
	createLedgerCommission(t, db, bob.ID, "9.90", constants.CommissionStatusPending, now.Add(-time.Minute))
	future := createLedgerCommission(t, db, bob.ID, "9.90", constants.CommissionStatusPending, now.Add(24*time.Hour))

	summary, err := repo.SummarizeDueCommissions(now)
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("summary len want 2 got %d", len(summary))
	}
	if summary[0].AffiliateID != alice.ID || summary[0].Count != 2 || !summary[0].Total.Equal(decimal.RequireFromString("19.80")) {
		t.Fatalf("unexpected alice summary: %+v", summary[0])
	}

	affected, err := repo.MatureDueCommissions(now, nil)
	if err != nil {
		t.Fatalf("mature failed: %v", err)
	}
	if affected != 3 {
		t.Fatalf("affected want 3 got %d", affected)
	}

	var reloaded models.Comissao
	if err := db.First(&reloaded, future.ID).Error; err != nil {
		t.Fatalf("reload future failed: %v", err)
	}
	if reloaded.Status != constants.CommissionStatusPending {
		t.Fatalf("future commission should stay pending, got %s", reloaded.Status)
	}

	again, err := repo.MatureDueCommissions(now, nil)
	if err != nil {
		t.Fatalf("second mature failed: %v", err)
	}
	if again != 0 {
		t.Fatalf("second sweep should be a no-op, got %d", again)
	}
}

func TestLedgerRepositoryListCommissionsForUpdateSkipsAllocated(t *testing.T) {
	repo, db := setupLedgerRepositoryTest(t)
	now := time.Now().UTC()
	user := createLedgerUser(t, db, "fifo@example.com")

	first := createLedgerCommission(t, db, user.ID, "5.00", constants.CommissionStatusAvailable, now)
	second := createLedgerCommission(t, db, user.ID, "5.00", constants.CommissionStatusAvailable, now)
	createLedgerCommission(t, db, user.ID, "5.00", constants.CommissionStatusPending, now)

	withdrawalID := uint(99)
	if err := db.Model(&models.Comissao{}).Where("id = ?", second.ID).Update("id_saque", withdrawalID).Error; err != nil {
		t.Fatalf("mark allocated failed: %v", err)
	}

	rows, err := repo.ListCommissionsForUpdate(user.ID, constants.CommissionStatusAvailable)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != first.ID {
		t.Fatalf("expected only first commission, got %+v", rows)
	}

	linked, err := repo.ListWithdrawalCommissionsForUpdate(withdrawalID)
	if err != nil {
		t.Fatalf("list linked failed: %v", err)
	}
	if len(linked) != 1 || linked[0].ID != second.ID {
		t.Fatalf("expected second commission linked, got %+v", linked)
	}
}

func TestLedgerRepositoryTransactionRollback(t *testing.T) {
	repo, db := setupLedgerRepositoryTest(t)
	user := createLedgerUser(t, db, "rollback@example.com")

	boom := fmt.Errorf("boom")
	err := repo.Transaction(context.Background(), func(tx LedgerRepository) error {
		if err := tx.CreateCommission(&models.Comissao{
			IDAfiliado:       user.ID,
			IDUsuarioPagador: user.ID,
			Fluxo:            constants.PaymentFlowDefault,
			Valor:            models.NewMoneyFromDecimal(decimal.RequireFromString("9.90")),
			Status:           constants.CommissionStatusPending,
			DataLiberacao:    time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	if err != boom {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	if err := db.Model(&models.Comissao{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("commission should be rolled back, count=%d", count)
	}
}

func TestLedgerRepositoryPaymentIdempotencyKey(t *testing.T) {
	repo, db := setupLedgerRepositoryTest(t)
	user := createLedgerUser(t, db, "payer@example.com")

	payment := &models.Pagamento{
		IDUsuario:          user.ID,
		IDPagamentoGateway: "pi_123",
		Gateway:            constants.PaymentFlowStripe,
		Valor:              models.NewMoneyFromDecimal(decimal.RequireFromString("29.90")),
		Status:             constants.PaymentStatusApproved,
		DataPagamento:      time.Now().UTC(),
	}
	if err := repo.CreatePayment(payment); err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	found, err := repo.GetPaymentByGatewayID("pi_123")
	if err != nil || found == nil || found.ID != payment.ID {
		t.Fatalf("lookup by gateway id failed: %+v err=%v", found, err)
	}
	missing, err := repo.GetPaymentByGatewayID("pi_missing")
	if err != nil || missing != nil {
		t.Fatalf("missing payment should return nil,nil, got %+v err=%v", missing, err)
	}

	dup := *payment
	dup.ID = 0
	err = repo.CreatePayment(&dup)
	if !IsUniqueViolation(err) {
		t.Fatalf("duplicate gateway id should be a unique violation, got %v", err)
	}
}

func TestLedgerRepositoryListWithdrawals(t *testing.T) {
	repo, db := setupLedgerRepositoryTest(t)
	now := time.Now().UTC()
	alice := createLedgerUser(t, db, "alice_list@example.com")
	bob := createLedgerUser(t, db, "bob_list@example.com")

	rows := []models.Saque{
		{IDAfiliado: alice.ID, Valor: models.NewMoneyFromDecimal(decimal.NewFromInt(10)), ValorAlocado: models.NewMoneyFromDecimal(decimal.NewFromInt(10)), Status: constants.WithdrawalStatusPending, ChavePixUsada: "alice-pix", DataSolicitacao: now},
		{IDAfiliado: bob.ID, Valor: models.NewMoneyFromDecimal(decimal.NewFromInt(20)), ValorAlocado: models.NewMoneyFromDecimal(decimal.NewFromInt(20)), Status: constants.WithdrawalStatusApproved, ChavePixUsada: "bob-pix", DataSolicitacao: now},
		{IDAfiliado: bob.ID, Valor: models.NewMoneyFromDecimal(decimal.NewFromInt(30)), ValorAlocado: models.NewMoneyFromDecimal(decimal.NewFromInt(30)), Status: constants.WithdrawalStatusPending, ChavePixUsada: "bob-pix", DataSolicitacao: now},
	}
	for i := range rows {
		if err := repo.CreateWithdrawal(&rows[i]); err != nil {
			t.Fatalf("create withdrawal failed: %v", err)
		}
	}

	list, total, err := repo.ListWithdrawals(WithdrawalListFilter{Status: constants.WithdrawalStatusPending, Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("pending total want 2 got total=%d len=%d", total, len(list))
	}
	if list[0].ID != rows[2].ID {
		t.Fatalf("newest first expected, got id=%d", list[0].ID)
	}
	if list[0].Usuario == nil || list[0].Usuario.Nome != bob.Nome {
		t.Fatalf("requester should be preloaded, got %+v", list[0].Usuario)
	}

	list, total, err = repo.ListWithdrawals(WithdrawalListFilter{Keyword: "alice", Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("keyword list failed: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].IDAfiliado != alice.ID {
		t.Fatalf("keyword filter mismatch: total=%d rows=%+v", total, list)
	}

	mine, err := repo.ListWithdrawalsByAffiliate(bob.ID)
	if err != nil {
		t.Fatalf("list by affiliate failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("bob should have 2 withdrawals, got %d", len(mine))
	}
}
