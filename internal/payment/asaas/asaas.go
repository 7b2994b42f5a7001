package asaas

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/payment"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid   = errors.New("asaas config invalid")
	ErrTokenInvalid    = errors.New("asaas access token invalid")
	ErrResponseInvalid = errors.New("asaas payload invalid")
)

const tokenHeader = "asaas-access-token"

// Config Asaas 配置
type Config struct {
	WebhookToken string
}

// WebhookResult Asaas 回调解析结果
type WebhookResult struct {
	EventID           string
	EventType         string
	PaymentID         string
	Status            string
	Amount            string
	BillingType       string
	ExternalReference string
	UserID            uint
	AffiliateID       uint
	PaidAt            *time.Time
	Raw               map[string]interface{}
}

// VerifyToken 常量时间比较 asaas-access-token
func VerifyToken(expected string, headers map[string]string) error {
	expected = strings.TrimSpace(expected)
	if expected == "" {
		return fmt.Errorf("%w: webhook_token is required", ErrConfigInvalid)
	}
	got := payment.LookupFold(headers, tokenHeader)
	if got == "" {
		return fmt.Errorf("%w: %s is required", ErrTokenInvalid, tokenHeader)
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
		return fmt.Errorf("%w: token mismatch", ErrTokenInvalid)
	}
	return nil
}

// ParseWebhook 解析回调 body
func ParseWebhook(body []byte) (*WebhookResult, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: body is empty", ErrResponseInvalid)
	}
	raw, err := payment.DecodeRawMap(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode body failed", ErrResponseInvalid)
	}
	eventType := strings.ToUpper(payment.ReadString(raw, "event"))
	if eventType == "" {
		return nil, fmt.Errorf("%w: missing event", ErrResponseInvalid)
	}
	result := &WebhookResult{
		EventID:   payment.ReadString(raw, "id"),
		EventType: eventType,
		Status:    mapEventStatus(eventType),
		Raw:       raw,
	}
	object := payment.ReadMap(raw, "payment")
	if object == nil {
		result.Status = payment.StatusIgnored
		return result, nil
	}
	result.PaymentID = payment.ReadString(object, "id")
	result.BillingType = strings.ToLower(payment.ReadString(object, "billingType"))
	result.ExternalReference = payment.ReadString(object, "externalReference")
	result.UserID, result.AffiliateID = payment.ParseExternalReference(result.ExternalReference)
	if amount, err := decimal.NewFromString(payment.ReadString(object, "value")); err == nil {
		result.Amount = amount.StringFixed(2)
	}
	for _, key := range []string{"confirmedDate", "paymentDate", "clientPaymentDate"} {
		if raw := payment.ReadString(object, key); raw != "" {
			if parsed, err := time.Parse("2006-01-02", raw); err == nil {
				result.PaidAt = &parsed
				break
			}
		}
	}
	return result, nil
}

func mapEventStatus(eventType string) string {
	switch eventType {
	case "PAYMENT_CONFIRMED", "PAYMENT_RECEIVED":
		return payment.StatusSuccess
	case "PAYMENT_CREATED", "PAYMENT_UPDATED", "PAYMENT_AWAITING_RISK_ANALYSIS":
		return payment.StatusPending
	case "PAYMENT_OVERDUE", "PAYMENT_DELETED", "PAYMENT_REFUNDED", "PAYMENT_CHARGEBACK_REQUESTED", "PAYMENT_REPROVED_BY_RISK_ANALYSIS":
		return payment.StatusFailed
	default:
		return payment.StatusIgnored
	}
}

// Gateway Asaas 适配器
type Gateway struct {
	cfg Config
}

// New 创建适配器
func New(cfg Config) *Gateway {
	return &Gateway{cfg: cfg}
}

// Name 网关名称
func (g *Gateway) Name() string {
	return constants.PaymentFlowAsaas
}

// ParseWebhook 校验令牌并转换为统一事件
func (g *Gateway) ParseWebhook(_ context.Context, req payment.WebhookRequest) (*payment.Event, error) {
	if err := VerifyToken(g.cfg.WebhookToken, req.Headers); err != nil {
		if errors.Is(err, ErrConfigInvalid) {
			return nil, errors.Join(payment.ErrGatewayUnavailable, err)
		}
		return nil, errors.Join(payment.ErrSignatureInvalid, err)
	}
	result, err := ParseWebhook(req.Body)
	if err != nil {
		return nil, errors.Join(payment.ErrPayloadInvalid, err)
	}
	return &payment.Event{
		Gateway:          constants.PaymentFlowAsaas,
		EventID:          result.EventID,
		EventType:        result.EventType,
		GatewayPaymentID: result.PaymentID,
		Status:           result.Status,
		Amount:           result.Amount,
		Currency:         "BRL",
		Method:           result.BillingType,
		PayerUserID:      result.UserID,
		AffiliateID:      result.AffiliateID,
		PaidAt:           result.PaidAt,
		Raw:              result.Raw,
	}, nil
}
