package service

import (
	"context"
	"time"

	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/events"
	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CommissionOverview 用户佣金概览
type CommissionOverview struct {
	Comissoes       []models.Comissao `json:"comissoes"`
	SaldoPendente   models.Money      `json:"saldo_pendente"`
	SaldoDisponivel models.Money      `json:"saldo_disponivel"`
	Saldo           models.Money      `json:"saldo"`
}

// BalanceReleaseResult 人工释放结果
type BalanceReleaseResult struct {
	UserID          uint         `json:"user_id"`
	Released        models.Money `json:"released"`
	CommissionIDs   []uint       `json:"commission_ids"`
	SaldoPendente   models.Money `json:"saldo_pendente"`
	SaldoDisponivel models.Money `json:"saldo_disponivel"`
}

// BalanceService 余额查询与人工调整
type BalanceService struct {
	repo      repository.LedgerRepository
	notifier  *NotificationService
	publisher events.Publisher
	now       func() time.Time
}

// NewBalanceService 创建余额服务
func NewBalanceService(repo repository.LedgerRepository, notifier *NotificationService, publisher events.Publisher) *BalanceService {
	return &BalanceService{
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetCommissionOverview 返回佣金明细与余额缓存
func (s *BalanceService) GetCommissionOverview(userID uint) (*CommissionOverview, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	rows, err := s.repo.ListCommissionsByAffiliate(user.ID)
	if err != nil {
		return nil, err
	}
	return &CommissionOverview{
		Comissoes:       rows,
		SaldoPendente:   user.SaldoPendente,
		SaldoDisponivel: user.SaldoDisponivel,
		Saldo:           user.Saldo,
	}, nil
}

// ReleaseBalance 管理员提前释放待成熟佣金（整条提升，累计达到金额即停止）
func (s *BalanceService) ReleaseBalance(ctx context.Context, userID uint, amount decimal.Decimal, adminID uint) (*BalanceReleaseResult, error) {
	amount = amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrReleaseAmountInvalid
	}
	if userID == 0 {
		return nil, ErrNotFound
	}

	result := &BalanceReleaseResult{UserID: userID}
	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		user, err := tx.LockUser(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrNotFound
		}
		rows, err := tx.ListCommissionsForUpdate(user.ID, constants.CommissionStatusPending)
		if err != nil {
			return err
		}
		ids, promoted := allocateWholeCommissions(rows, amount)
		if promoted.LessThan(amount) {
			return ErrInsufficientPendingBalance
		}
		now := s.now()
		if err := tx.UpdateCommissions(ids, map[string]interface{}{
			"status":          constants.CommissionStatusAvailable,
			"data_disponivel": now,
			"updated_at":      now,
		}); err != nil {
			return err
		}
		snapshot, err := tx.RecomputeUserBalances(user.ID)
		if err != nil {
			return err
		}
		result.Released = models.NewMoneyFromDecimal(promoted)
		result.CommissionIDs = ids
		result.SaldoPendente = models.NewMoneyFromDecimal(snapshot.Pending)
		result.SaldoDisponivel = models.NewMoneyFromDecimal(snapshot.Available)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("balance_released",
		"user_id", userID,
		"admin_id", adminID,
		"requested", amount.StringFixed(2),
		"released", result.Released.String(),
		"commission_count", len(result.CommissionIDs),
	)
	s.notifier.Notify(buildLedgerNotification(userID, constants.NotificationTypeBalanceReleased, result.Released.String()))
	publishLedgerEvent(ctx, s.publisher, constants.LedgerEventBalanceReleased, BalanceReleasedEvent{
		UserID:        userID,
		AdminID:       adminID,
		Requested:     amount.StringFixed(2),
		Released:      result.Released.String(),
		CommissionIDs: result.CommissionIDs,
	})
	return result, nil
}

// RecomputeBalances 由佣金记录重建余额缓存（修复工具）
func (s *BalanceService) RecomputeBalances(ctx context.Context, userID uint) (*repository.BalanceSnapshot, error) {
	var snapshot *repository.BalanceSnapshot
	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		user, err := tx.LockUser(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrNotFound
		}
		snapshot, err = tx.RecomputeUserBalances(user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("balance_recomputed",
		"user_id", userID,
		"pending", snapshot.Pending.StringFixed(2),
		"available", snapshot.Available.StringFixed(2),
	)
	return snapshot, nil
}
