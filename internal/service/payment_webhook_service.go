package service

import (
	"context"
	"errors"
	"strings"

	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/payment"

	"github.com/shopspring/decimal"
)

// WebhookOutcome 回调处理结果
type WebhookOutcome struct {
	Accepted     bool   `json:"accepted"`
	Updated      bool   `json:"updated"`
	Duplicate    bool   `json:"duplicate,omitempty"`
	Status       string `json:"status,omitempty"`
	EventID      string `json:"event_id,omitempty"`
	EventType    string `json:"event_type,omitempty"`
	CommissionID uint   `json:"commission_id,omitempty"`
}

// PaymentWebhookService 网关回调分发
type PaymentWebhookService struct {
	gateways    *payment.Registry
	commissions *CommissionService
}

// NewPaymentWebhookService 创建回调服务
func NewPaymentWebhookService(gateways *payment.Registry, commissions *CommissionService) *PaymentWebhookService {
	return &PaymentWebhookService{gateways: gateways, commissions: commissions}
}

// Handle 验签、归一化并在支付成功时入账
func (s *PaymentWebhookService) Handle(ctx context.Context, gatewayName string, req payment.WebhookRequest) (*WebhookOutcome, error) {
	gateway, err := s.gateways.Get(gatewayName)
	if err != nil {
		return nil, err
	}
	event, err := gateway.ParseWebhook(ctx, req)
	if err != nil {
		logger.Warnw("payment_webhook_rejected",
			"gateway", gateway.Name(),
			"error", err,
		)
		return nil, err
	}
	if !event.IsSuccess() {
		logger.Infow("payment_webhook_ignored",
			"gateway", gateway.Name(),
			"event_id", event.EventID,
			"event_type", event.EventType,
			"status", event.Status,
		)
		return &WebhookOutcome{Accepted: true, Status: event.Status, EventID: event.EventID, EventType: event.EventType}, nil
	}

	amount := decimal.Zero
	if raw := strings.TrimSpace(event.Amount); raw != "" {
		parsed, err := models.ParseMoney(raw)
		if err != nil {
			logger.Warnw("payment_webhook_amount_invalid",
				"gateway", gateway.Name(),
				"gateway_payment_id", event.GatewayPaymentID,
				"amount", raw,
			)
		} else {
			amount = parsed.Decimal
		}
	}

	result, err := s.commissions.AccrueFromPayment(ctx, PaymentConfirmation{
		Gateway:          gateway.Name(),
		GatewayPaymentID: event.GatewayPaymentID,
		PayerUserID:      event.PayerUserID,
		PayerEmail:       event.PayerEmail,
		AffiliateID:      event.AffiliateID,
		Amount:           amount,
		Currency:         event.Currency,
		Method:           event.Method,
		PaidAt:           event.PaidAt,
		Payload:          models.JSON(event.Raw),
	})
	if errors.Is(err, ErrPaymentReferenceMissing) {
		return nil, errors.Join(payment.ErrPayloadInvalid, err)
	}
	if errors.Is(err, ErrPayerNotFound) {
		logger.Warnw("payment_webhook_payer_not_found",
			"gateway", gateway.Name(),
			"gateway_payment_id", event.GatewayPaymentID,
			"payer_user_id", event.PayerUserID,
			"payer_email", maskEmail(event.PayerEmail),
		)
		return &WebhookOutcome{Accepted: true, Status: event.Status, EventID: event.EventID, EventType: event.EventType}, nil
	}
	if err != nil {
		logger.Errorw("payment_webhook_accrual_failed",
			"gateway", gateway.Name(),
			"gateway_payment_id", event.GatewayPaymentID,
			"error", err,
		)
		return nil, err
	}

	outcome := &WebhookOutcome{
		Accepted:  true,
		Updated:   !result.Duplicate,
		Duplicate: result.Duplicate,
		Status:    event.Status,
		EventID:   event.EventID,
		EventType: event.EventType,
	}
	if result.Commission != nil {
		outcome.CommissionID = result.Commission.ID
	}
	return outcome, nil
}

// maskEmail 日志中只保留首字母与域名
func maskEmail(email string) string {
	local, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok || local == "" {
		return ""
	}
	return string([]rune(local)[:1]) + "***@" + domain
}
