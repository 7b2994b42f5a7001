package service

import (
	"context"
	"strings"
	"time"

	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/events"
	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/repository"

	"github.com/shopspring/decimal"
)

const withdrawalReasonMaxLength = 500

// WithdrawalRequestInput 提现申请输入
type WithdrawalRequestInput struct {
	UserID      uint
	Amount      decimal.Decimal
	PixKey      string
	BankDetails models.JSON
}

// WithdrawalProcessInput 提现审核输入
type WithdrawalProcessInput struct {
	WithdrawalID uint
	AdminID      uint
	Decision     string
	Reason       string
}

// WithdrawalAdminItem 后台提现列表项
type WithdrawalAdminItem struct {
	models.Saque
	NomeSolicitante  string `json:"nome_solicitante"`
	EmailSolicitante string `json:"email_solicitante"`
}

// WithdrawalService 提现结算服务
type WithdrawalService struct {
	repo           repository.LedgerRepository
	settingService *SettingService
	notifier       *NotificationService
	publisher      events.Publisher
	now            func() time.Time
}

// NewWithdrawalService 创建提现服务
func NewWithdrawalService(
	repo repository.LedgerRepository,
	settingService *SettingService,
	notifier *NotificationService,
	publisher events.Publisher,
) *WithdrawalService {
	return &WithdrawalService{
		repo:           repo,
		settingService: settingService,
		notifier:       notifier,
		publisher:      publisher,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// RequestWithdrawal 提交提现：按 id 升序整条占用可提现佣金，直到覆盖申请金额
func (s *WithdrawalService) RequestWithdrawal(ctx context.Context, input WithdrawalRequestInput) (*models.Saque, error) {
	if input.UserID == 0 {
		return nil, ErrNotFound
	}
	amount := input.Amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrWithdrawalAmountInvalid
	}
	policy, err := s.settingService.GetLedgerPolicy(ctx)
	if err != nil {
		return nil, err
	}
	if amount.LessThan(policy.MinWithdrawAmount) {
		return nil, ErrWithdrawalAmountBelowMinimum
	}

	pixKey := strings.TrimSpace(input.PixKey)
	bankDetails := input.BankDetails
	if pixKey == "" && len(bankDetails) == 0 {
		user, err := s.repo.GetUserByID(input.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrNotFound
		}
		pixKey = strings.TrimSpace(user.ChavePix)
		if pixKey == "" {
			return nil, ErrWithdrawalDestinationMissing
		}
	}

	var withdrawal *models.Saque
	var selectedIDs []uint
	err = s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		user, err := tx.LockUser(input.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrNotFound
		}
		if user.Status == constants.UserStatusDisabled {
			return ErrUserDisabled
		}

		available, err := tx.SumCommissions(user.ID, constants.CommissionStatusAvailable)
		if err != nil {
			return err
		}
		if available.LessThan(amount) {
			return ErrInsufficientBalance
		}

		rows, err := tx.ListCommissionsForUpdate(user.ID, constants.CommissionStatusAvailable)
		if err != nil {
			return err
		}
		ids, allocated := allocateWholeCommissions(rows, amount)
		if allocated.LessThan(amount) {
			return ErrAllocationConflict
		}

		now := s.now()
		withdrawal = &models.Saque{
			IDAfiliado:      user.ID,
			Valor:           models.NewMoneyFromDecimal(amount),
			ValorAlocado:    models.NewMoneyFromDecimal(allocated),
			Status:          constants.WithdrawalStatusPending,
			ChavePixUsada:   pixKey,
			DadosBancarios:  bankDetails,
			DataSolicitacao: now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.CreateWithdrawal(withdrawal); err != nil {
			return err
		}
		if err := tx.UpdateCommissions(ids, map[string]interface{}{
			"status":     constants.CommissionStatusPaid,
			"id_saque":   withdrawal.ID,
			"updated_at": now,
		}); err != nil {
			return err
		}
		if _, err := tx.RecomputeUserBalances(user.ID); err != nil {
			return err
		}
		selectedIDs = ids
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("withdrawal_requested",
		"withdrawal_id", withdrawal.ID,
		"affiliate_id", withdrawal.IDAfiliado,
		"amount", withdrawal.Valor.String(),
		"allocated", withdrawal.ValorAlocado.String(),
		"commission_count", len(selectedIDs),
	)
	publishLedgerEvent(ctx, s.publisher, constants.LedgerEventWithdrawalRequested, WithdrawalEvent{
		WithdrawalID:  withdrawal.ID,
		AffiliateID:   withdrawal.IDAfiliado,
		Amount:        withdrawal.Valor.String(),
		Allocated:     withdrawal.ValorAlocado.String(),
		Status:        withdrawal.Status,
		CommissionIDs: selectedIDs,
	})
	return withdrawal, nil
}

// allocateWholeCommissions 贪心选择整条记录，累计金额首次达到 amount 即停止
func allocateWholeCommissions(rows []models.Comissao, amount decimal.Decimal) ([]uint, decimal.Decimal) {
	ids := make([]uint, 0)
	allocated := decimal.Zero
	for _, row := range rows {
		if allocated.GreaterThanOrEqual(amount) {
			break
		}
		value := row.Valor.Decimal.Round(2)
		if value.LessThanOrEqual(decimal.Zero) {
			continue
		}
		ids = append(ids, row.ID)
		allocated = allocated.Add(value)
	}
	return ids, allocated.Round(2)
}

// ProcessWithdrawal 审核提现：驳回时释放占用佣金，通过时不改动账本
func (s *WithdrawalService) ProcessWithdrawal(ctx context.Context, input WithdrawalProcessInput) (*models.Saque, error) {
	if input.WithdrawalID == 0 {
		return nil, ErrNotFound
	}
	decision := strings.ToLower(strings.TrimSpace(input.Decision))
	if decision != constants.WithdrawalStatusApproved && decision != constants.WithdrawalStatusRejected {
		return nil, ErrWithdrawalDecisionInvalid
	}
	reason := clampWithdrawalReason(input.Reason)

	var withdrawal *models.Saque
	var restoredIDs []uint
	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		row, err := tx.GetWithdrawalByIDForUpdate(input.WithdrawalID)
		if err != nil {
			return err
		}
		if row == nil {
			return ErrNotFound
		}
		if row.Status != constants.WithdrawalStatusPending {
			return ErrWithdrawalAlreadyProcessed
		}

		now := s.now()
		if decision == constants.WithdrawalStatusRejected {
			if _, err := tx.LockUser(row.IDAfiliado); err != nil {
				return err
			}
			commissions, err := tx.ListWithdrawalCommissionsForUpdate(row.ID)
			if err != nil {
				return err
			}
			ids := make([]uint, 0, len(commissions))
			for _, commission := range commissions {
				ids = append(ids, commission.ID)
			}
			if err := tx.UpdateCommissions(ids, map[string]interface{}{
				"status":     constants.CommissionStatusAvailable,
				"id_saque":   nil,
				"updated_at": now,
			}); err != nil {
				return err
			}
			if _, err := tx.RecomputeUserBalances(row.IDAfiliado); err != nil {
				return err
			}
			row.MotivoRejeicao = reason
			restoredIDs = ids
		} else {
			row.MotivoRejeicao = ""
		}

		adminID := input.AdminID
		row.Status = decision
		row.ProcessadoPor = &adminID
		row.DataProcessamento = &now
		row.UpdatedAt = now
		if err := tx.UpdateWithdrawal(row); err != nil {
			return err
		}
		withdrawal = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("withdrawal_processed",
		"withdrawal_id", withdrawal.ID,
		"affiliate_id", withdrawal.IDAfiliado,
		"status", withdrawal.Status,
		"admin_id", input.AdminID,
		"restored_commissions", len(restoredIDs),
	)
	kind := constants.NotificationTypeWithdrawalApproved
	if withdrawal.Status == constants.WithdrawalStatusRejected {
		kind = constants.NotificationTypeWithdrawalRejected
	}
	s.notifier.Notify(buildLedgerNotification(withdrawal.IDAfiliado, kind,
		withdrawal.Valor.String(),
		withdrawal.MotivoRejeicao,
	))
	publishLedgerEvent(ctx, s.publisher, constants.LedgerEventWithdrawalProcessed, WithdrawalEvent{
		WithdrawalID:  withdrawal.ID,
		AffiliateID:   withdrawal.IDAfiliado,
		Amount:        withdrawal.Valor.String(),
		Allocated:     withdrawal.ValorAlocado.String(),
		Status:        withdrawal.Status,
		ProcessedBy:   withdrawal.ProcessadoPor,
		CommissionIDs: restoredIDs,
	})
	return withdrawal, nil
}

// ListUserWithdrawals 用户自己的提现记录
func (s *WithdrawalService) ListUserWithdrawals(userID uint) ([]models.Saque, error) {
	return s.repo.ListWithdrawalsByAffiliate(userID)
}

// ListWithdrawals 后台提现列表（附申请人姓名）
func (s *WithdrawalService) ListWithdrawals(filter repository.WithdrawalListFilter) ([]WithdrawalAdminItem, int64, error) {
	status := strings.ToLower(strings.TrimSpace(filter.Status))
	switch status {
	case "", constants.WithdrawalStatusPending, constants.WithdrawalStatusApproved, constants.WithdrawalStatusRejected:
	default:
		return nil, 0, ErrWithdrawalStatusInvalid
	}
	filter.Status = status

	rows, total, err := s.repo.ListWithdrawals(filter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]WithdrawalAdminItem, 0, len(rows))
	for _, row := range rows {
		item := WithdrawalAdminItem{Saque: row}
		if row.Usuario != nil {
			item.NomeSolicitante = row.Usuario.Nome
			item.EmailSolicitante = row.Usuario.Email
		}
		item.Usuario = nil
		items = append(items, item)
	}
	return items, total, nil
}

// clampWithdrawalReason 按字符截断，不拆开多字节字符
func clampWithdrawalReason(raw string) string {
	reason := strings.TrimSpace(raw)
	if runes := []rune(reason); len(runes) > withdrawalReasonMaxLength {
		reason = string(runes[:withdrawalReasonMaxLength])
	}
	return reason
}
