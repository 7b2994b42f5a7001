package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/events"
	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/repository"

	"github.com/shopspring/decimal"
)

var errDuplicatePayment = errors.New("duplicate payment")

// PaymentConfirmation 网关确认的支付（已归一化）
type PaymentConfirmation struct {
	Gateway          string
	GatewayPaymentID string
	PayerUserID      uint
	PayerEmail       string
	AffiliateID      uint
	Amount           decimal.Decimal
	Currency         string
	Method           string
	PaidAt           *time.Time
	Payload          models.JSON
}

// AccrualResult 佣金入账结果
type AccrualResult struct {
	Duplicate   bool
	Payment     *models.Pagamento
	Commission  *models.Comissao
	AffiliateID uint
}

// CommissionService 佣金入账与成熟
type CommissionService struct {
	repo           repository.LedgerRepository
	settingService *SettingService
	notifier       *NotificationService
	publisher      events.Publisher
	now            func() time.Time
}

// NewCommissionService 创建佣金服务
func NewCommissionService(
	repo repository.LedgerRepository,
	settingService *SettingService,
	notifier *NotificationService,
	publisher events.Publisher,
) *CommissionService {
	return &CommissionService{
		repo:           repo,
		settingService: settingService,
		notifier:       notifier,
		publisher:      publisher,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// AccrueFromPayment 按网关支付ID幂等入账：一笔支付至多一条佣金
func (s *CommissionService) AccrueFromPayment(ctx context.Context, input PaymentConfirmation) (*AccrualResult, error) {
	gatewayPaymentID := strings.TrimSpace(input.GatewayPaymentID)
	if gatewayPaymentID == "" {
		return nil, ErrPaymentReferenceMissing
	}
	policy, err := s.settingService.GetLedgerPolicy(ctx)
	if err != nil {
		return nil, err
	}
	flow := strings.ToLower(strings.TrimSpace(input.Gateway))
	if flow == "" {
		flow = constants.PaymentFlowDefault
	}
	now := s.now()
	paidAt := now
	if input.PaidAt != nil && !input.PaidAt.IsZero() {
		paidAt = input.PaidAt.UTC()
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "BRL"
	}

	result := &AccrualResult{}
	err = s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		existing, err := tx.GetPaymentByGatewayID(gatewayPaymentID)
		if err != nil {
			return err
		}
		if existing != nil {
			result.Duplicate = true
			result.Payment = existing
			return nil
		}

		payer, err := s.resolvePayer(tx, input)
		if err != nil {
			return err
		}
		if payer == nil {
			return ErrPayerNotFound
		}

		var metadataAffiliate *uint
		if input.AffiliateID > 0 {
			id := input.AffiliateID
			metadataAffiliate = &id
		}
		payment := &models.Pagamento{
			IDUsuario:          payer.ID,
			IDPagamentoGateway: gatewayPaymentID,
			Gateway:            flow,
			Valor:              models.NewMoneyFromDecimal(input.Amount),
			Moeda:              currency,
			Status:             constants.PaymentStatusApproved,
			MetodoPagamento:    strings.TrimSpace(input.Method),
			IDAfiliadoMetadata: metadataAffiliate,
			Payload:            input.Payload,
			DataPagamento:      paidAt,
			CreatedAt:          now,
		}
		if err := tx.CreatePayment(payment); err != nil {
			if repository.IsUniqueViolation(err) {
				return errDuplicatePayment
			}
			return err
		}
		result.Payment = payment

		affiliateID, err := s.resolveAffiliate(tx, payer, input.AffiliateID)
		if err != nil {
			return err
		}
		if affiliateID == 0 {
			return nil
		}
		affiliate, err := tx.LockUser(affiliateID)
		if err != nil {
			return err
		}
		if affiliate == nil {
			return nil
		}

		paymentID := payment.ID
		commission := &models.Comissao{
			IDAfiliado:        affiliate.ID,
			IDUsuarioPagador:  payer.ID,
			IDPagamentoOrigem: &paymentID,
			Fluxo:             flow,
			Valor:             models.NewMoneyFromDecimal(policy.CommissionValue),
			Status:            constants.CommissionStatusPending,
			DataLiberacao:     policy.ReleaseDate(flow, now),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.CreateCommission(commission); err != nil {
			if repository.IsUniqueViolation(err) {
				return errDuplicatePayment
			}
			return err
		}
		if _, err := tx.RecomputeUserBalances(affiliate.ID); err != nil {
			return err
		}
		result.Commission = commission
		result.AffiliateID = affiliate.ID
		return nil
	})
	if errors.Is(err, errDuplicatePayment) {
		return &AccrualResult{Duplicate: true}, nil
	}
	if err != nil {
		return nil, err
	}

	if result.Duplicate {
		logger.Infow("commission_accrual_duplicate",
			"gateway", flow,
			"gateway_payment_id", gatewayPaymentID,
		)
		return result, nil
	}
	if result.Commission != nil {
		commission := result.Commission
		logger.Infow("commission_accrued",
			"commission_id", commission.ID,
			"affiliate_id", commission.IDAfiliado,
			"payment_id", result.Payment.ID,
			"gateway", flow,
			"amount", commission.Valor.String(),
			"release_at", commission.DataLiberacao,
		)
		s.notifier.Notify(buildLedgerNotification(commission.IDAfiliado,
			constants.NotificationTypeCommissionAccrued,
			commission.Valor.String(),
			commission.DataLiberacao.Format("02/01/2006"),
		))
		publishLedgerEvent(ctx, s.publisher, constants.LedgerEventCommissionAccrued, CommissionAccruedEvent{
			CommissionID:     commission.ID,
			AffiliateID:      commission.IDAfiliado,
			PayerUserID:      commission.IDUsuarioPagador,
			PaymentID:        result.Payment.ID,
			GatewayPaymentID: gatewayPaymentID,
			Flow:             flow,
			Amount:           commission.Valor.String(),
			ReleaseAt:        commission.DataLiberacao,
		})
	} else {
		logger.Infow("payment_recorded_without_affiliate",
			"payment_id", result.Payment.ID,
			"gateway", flow,
			"payer_user_id", result.Payment.IDUsuario,
		)
	}
	return result, nil
}

// resolvePayer 优先按用户ID，否则按邮箱
func (s *CommissionService) resolvePayer(tx repository.LedgerRepository, input PaymentConfirmation) (*models.Usuario, error) {
	if input.PayerUserID > 0 {
		user, err := tx.GetUserByID(input.PayerUserID)
		if err != nil || user != nil {
			return user, err
		}
	}
	email := strings.TrimSpace(input.PayerEmail)
	if email == "" {
		return nil, nil
	}
	return tx.GetUserByEmail(email)
}

// resolveAffiliate 元数据推广者 -> 付款人的推荐人 -> 无
func (s *CommissionService) resolveAffiliate(tx repository.LedgerRepository, payer *models.Usuario, metadataAffiliateID uint) (uint, error) {
	if metadataAffiliateID > 0 && metadataAffiliateID != payer.ID {
		affiliate, err := tx.GetUserByID(metadataAffiliateID)
		if err != nil {
			return 0, err
		}
		if affiliate != nil {
			return affiliate.ID, nil
		}
		logger.Warnw("commission_metadata_affiliate_missing",
			"affiliate_id", metadataAffiliateID,
			"payer_user_id", payer.ID,
		)
	}
	if payer.IDIndicador != nil && *payer.IDIndicador > 0 && *payer.IDIndicador != payer.ID {
		return *payer.IDIndicador, nil
	}
	return 0, nil
}

// MatureDueCommissions 到期佣金 pending -> available，返回影响行数
func (s *CommissionService) MatureDueCommissions(ctx context.Context, now time.Time) (int64, error) {
	if now.IsZero() {
		now = s.now()
	}
	now = now.UTC()

	var summaries []repository.AffiliateAmount
	var affected int64
	err := s.repo.Transaction(ctx, func(tx repository.LedgerRepository) error {
		rows, err := tx.SummarizeDueCommissions(now)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		ids := make([]uint, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.AffiliateID)
		}
		if _, err := tx.LockUsers(ids); err != nil {
			return err
		}
		affected, err = tx.MatureDueCommissions(now, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := tx.RecomputeUserBalances(id); err != nil {
				return err
			}
		}
		summaries = rows
		return nil
	})
	if err != nil {
		logger.Errorw("commission_maturation_failed", "error", err)
		return 0, err
	}
	if affected == 0 {
		return 0, nil
	}

	logger.Infow("commission_maturation_completed",
		"affected", affected,
		"affiliates", len(summaries),
	)
	for _, summary := range summaries {
		amount := models.NewMoneyFromDecimal(summary.Total).String()
		s.notifier.Notify(buildLedgerNotification(summary.AffiliateID,
			constants.NotificationTypeCommissionMatured,
			summary.Count,
			amount,
		))
		publishLedgerEvent(ctx, s.publisher, constants.LedgerEventCommissionMatured, CommissionMaturedEvent{
			AffiliateID: summary.AffiliateID,
			Count:       summary.Count,
			Amount:      amount,
			MaturedAt:   now,
		})
	}
	return affected, nil
}
