package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/receitas-next/internal/config"
	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ledgerTestNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type ledgerTestEnv struct {
	db          *gorm.DB
	repo        *repository.GormLedgerRepository
	settings    *SettingService
	notifier    *NotificationService
	publisher   *recordingPublisher
	commissions *CommissionService
	withdrawals *WithdrawalService
	balances    *BalanceService
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(routingKey string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, key := range p.keys {
		if key == routingKey {
			total++
		}
	}
	return total
}

func setupLedgerServiceTest(t *testing.T) *ledgerTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	tables := append([]interface{}{&models.Admin{}, &models.Setting{}}, models.LedgerModels()...)
	if err := db.AutoMigrate(tables...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	repo := repository.NewLedgerRepository(db, repository.LedgerOptions{TxTimeout: 5 * time.Second})
	settings := NewSettingService(repository.NewSettingRepository(db), config.LedgerConfig{
		CommissionValue: "9.90",
		MaturationDays: map[string]int{
			constants.PaymentFlowDefault:     15,
			constants.PaymentFlowStripe:      15,
			constants.PaymentFlowMercadoPago: 45,
			constants.PaymentFlowAsaas:       45,
		},
		MinWithdrawAmount: "0.01",
	})
	notifier := NewNotificationService(repository.NewNotificationRepository(db), nil)
	publisher := &recordingPublisher{}
	clock := func() time.Time { return ledgerTestNow }

	commissions := NewCommissionService(repo, settings, notifier, publisher)
	commissions.now = clock
	withdrawals := NewWithdrawalService(repo, settings, notifier, publisher)
	withdrawals.now = clock
	balances := NewBalanceService(repo, notifier, publisher)
	balances.now = clock

	return &ledgerTestEnv{
		db:          db,
		repo:        repo,
		settings:    settings,
		notifier:    notifier,
		publisher:   publisher,
		commissions: commissions,
		withdrawals: withdrawals,
		balances:    balances,
	}
}

func (e *ledgerTestEnv) createUser(t *testing.T, email string, referrerID *uint) models.Usuario {
	t.Helper()
	user := models.Usuario{
		Nome:            "Usuário " + email,
		Email:           email,
		SenhaHash:       "hash",
		Status:          constants.UserStatusActive,
		IDIndicador:     referrerID,
		CodigoIndicacao: fmt.Sprintf("C%d", time.Now().UnixNano()),
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (e *ledgerTestEnv) createCommission(t *testing.T, affiliateID uint, amount, status string, releaseAt time.Time) models.Comissao {
	t.Helper()
	row := models.Comissao{
		IDAfiliado:       affiliateID,
		IDUsuarioPagador: affiliateID,
		Fluxo:            constants.PaymentFlowDefault,
		Valor:            models.NewMoneyFromDecimal(decimal.RequireFromString(amount)),
		Status:           status,
		DataLiberacao:    releaseAt,
	}
	if err := e.db.Create(&row).Error; err != nil {
		t.Fatalf("create commission failed: %v", err)
	}
	if _, err := e.repo.RecomputeUserBalances(affiliateID); err != nil {
		t.Fatalf("recompute balances failed: %v", err)
	}
	return row
}

func (e *ledgerTestEnv) reloadUser(t *testing.T, id uint) models.Usuario {
	t.Helper()
	var user models.Usuario
	if err := e.db.First(&user, id).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	return user
}

func (e *ledgerTestEnv) reloadCommission(t *testing.T, id uint) models.Comissao {
	t.Helper()
	var row models.Comissao
	if err := e.db.First(&row, id).Error; err != nil {
		t.Fatalf("reload commission failed: %v", err)
	}
	return row
}

func (e *ledgerTestEnv) countNotifications(t *testing.T, userID uint, kind string) int64 {
	t.Helper()
	var total int64
	if err := e.db.Model(&models.Notificacao{}).Where("id_usuario = ? AND tipo = ?", userID, kind).Count(&total).Error; err != nil {
		t.Fatalf("count notifications failed: %v", err)
	}
	return total
}

func assertMoney(t *testing.T, label string, got models.Money, want string) {
	t.Helper()
	if got.String() != want {
		t.Fatalf("%s want %s got %s", label, want, got.String())
	}
}
