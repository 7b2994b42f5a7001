package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/payment"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid    = errors.New("stripe config invalid")
	ErrResponseInvalid  = errors.New("stripe response invalid")
	ErrSignatureInvalid = errors.New("stripe signature invalid")
)

const defaultWebhookToleranceS = 300

var zeroDecimalCurrencies = map[string]struct{}{
	"CLP": {},
	"JPY": {},
	"KRW": {},
	"PYG": {},
	"VND": {},
}

// Config Stripe Webhook 配置。
type Config struct {
	WebhookSecret           string
	WebhookToleranceSeconds int
}

// WebhookResult Stripe Webhook 解析结果。
type WebhookResult struct {
	EventID         string
	EventType       string
	SessionID       string
	PaymentIntentID string
	Status          string
	Amount          string
	Currency        string
	Method          string
	CustomerEmail   string
	UserID          uint
	AffiliateID     uint
	PaidAt          *time.Time
	Raw             map[string]interface{}
}

// GatewayPaymentID 幂等键：优先 payment_intent，使 session 与 intent 两类事件落到同一笔支付
func (r *WebhookResult) GatewayPaymentID() string {
	if r == nil {
		return ""
	}
	if r.PaymentIntentID != "" {
		return r.PaymentIntentID
	}
	return r.SessionID
}

// VerifyAndParseWebhook 校验并解析 Stripe webhook。
func VerifyAndParseWebhook(cfg *Config, headers map[string]string, body []byte, now time.Time) (*WebhookResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("%w: webhook_secret is required", ErrConfigInvalid)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: body is empty", ErrResponseInvalid)
	}
	if now.IsZero() {
		now = time.Now()
	}

	signatureHeader := payment.LookupFold(headers, "Stripe-Signature")
	if signatureHeader == "" {
		return nil, fmt.Errorf("%w: Stripe-Signature is required", ErrSignatureInvalid)
	}
	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, err
	}
	tolerance := cfg.WebhookToleranceSeconds
	if tolerance <= 0 {
		tolerance = defaultWebhookToleranceS
	}
	if math.Abs(float64(now.Unix()-timestamp)) > float64(tolerance) {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrSignatureInvalid)
	}

	expected := computeSignature(cfg.WebhookSecret, timestamp, body)
	matched := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("%w: verify failed", ErrSignatureInvalid)
	}

	eventRaw, err := payment.DecodeRawMap(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode event failed", ErrResponseInvalid)
	}
	eventType := payment.ReadString(eventRaw, "type")
	if eventType == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrResponseInvalid)
	}
	objectRaw := payment.ReadMap(payment.ReadMap(eventRaw, "data"), "object")
	if objectRaw == nil {
		return nil, fmt.Errorf("%w: missing event object", ErrResponseInvalid)
	}

	result := &WebhookResult{
		EventID:   payment.ReadString(eventRaw, "id"),
		EventType: eventType,
		Raw:       eventRaw,
	}
	fillWebhookResult(result, eventType, objectRaw)
	return result, nil
}

func fillWebhookResult(result *WebhookResult, eventType string, objectRaw map[string]interface{}) {
	metadata := payment.ReadMap(objectRaw, "metadata")
	result.UserID = payment.ParseUintID(payment.ReadString(metadata, "user_id"))
	result.AffiliateID = payment.ParseUintID(payment.ReadString(metadata, "affiliate_id"))
	result.Currency = strings.ToUpper(payment.ReadString(objectRaw, "currency"))
	if created := payment.ReadInt64(objectRaw, "created"); created > 0 {
		paidAt := time.Unix(created, 0).UTC()
		result.PaidAt = &paidAt
	}

	var amountMinor int64
	switch payment.ReadString(objectRaw, "object") {
	case "checkout.session":
		result.SessionID = payment.ReadString(objectRaw, "id")
		result.PaymentIntentID = readPaymentIntentID(objectRaw)
		result.CustomerEmail = payment.ReadString(payment.ReadMap(objectRaw, "customer_details"), "email")
		if types, ok := objectRaw["payment_method_types"].([]interface{}); ok && len(types) > 0 {
			result.Method, _ = types[0].(string)
		}
		amountMinor = payment.ReadInt64(objectRaw, "amount_total")
		if status, ok := mapEventTypeStatus(eventType); ok {
			result.Status = status
		} else {
			result.Status = mapCheckoutSessionStatus(payment.ReadString(objectRaw, "payment_status"))
		}
	case "payment_intent":
		result.PaymentIntentID = payment.ReadString(objectRaw, "id")
		result.CustomerEmail = payment.ReadString(objectRaw, "receipt_email")
		if types, ok := objectRaw["payment_method_types"].([]interface{}); ok && len(types) > 0 {
			result.Method, _ = types[0].(string)
		}
		amountMinor = payment.ReadInt64(objectRaw, "amount_received")
		if amountMinor <= 0 {
			amountMinor = payment.ReadInt64(objectRaw, "amount")
		}
		if status, ok := mapEventTypeStatus(eventType); ok {
			result.Status = status
		} else {
			result.Status = mapPaymentIntentStatus(payment.ReadString(objectRaw, "status"))
		}
	default:
		result.Status = payment.StatusIgnored
	}
	if amountMinor > 0 && result.Currency != "" {
		result.Amount = fromMinorAmount(amountMinor, result.Currency)
	}
}

// mapEventTypeStatus checkout.session.completed 不在此列，boleto 等延迟支付完成时 payment_status 仍为 unpaid
func mapEventTypeStatus(eventType string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "checkout.session.async_payment_succeeded", "payment_intent.succeeded":
		return payment.StatusSuccess, true
	case "checkout.session.expired", "checkout.session.async_payment_failed", "payment_intent.payment_failed", "payment_intent.canceled":
		return payment.StatusFailed, true
	case "payment_intent.processing":
		return payment.StatusPending, true
	default:
		return "", false
	}
}

func mapCheckoutSessionStatus(paymentStatus string) string {
	switch strings.ToLower(strings.TrimSpace(paymentStatus)) {
	case "paid", "no_payment_required":
		return payment.StatusSuccess
	default:
		return payment.StatusPending
	}
}

func mapPaymentIntentStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "succeeded":
		return payment.StatusSuccess
	case "canceled", "requires_payment_method":
		return payment.StatusFailed
	default:
		return payment.StatusPending
	}
}

func fromMinorAmount(minor int64, currency string) string {
	scale := 2
	if _, ok := zeroDecimalCurrencies[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		scale = 0
	}
	return decimal.NewFromInt(minor).Shift(int32(-scale)).StringFixed(int32(scale))
}

func readPaymentIntentID(raw map[string]interface{}) string {
	switch typed := raw["payment_intent"].(type) {
	case string:
		return strings.TrimSpace(typed)
	case map[string]interface{}:
		return payment.ReadString(typed, "id")
	default:
		return ""
	}
}

func computeSignature(secret string, timestamp int64, body []byte) string {
	payload := strconv.FormatInt(timestamp, 10) + "." + string(body)
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

func parseSignatureHeader(signatureHeader string) (int64, []string, error) {
	timestamp := int64(0)
	signatures := make([]string, 0)
	for _, part := range strings.Split(signatureHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		value := strings.TrimSpace(kv[1])
		switch strings.TrimSpace(kv[0]) {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil || parsed <= 0 {
				return 0, nil, fmt.Errorf("%w: invalid timestamp", ErrSignatureInvalid)
			}
			timestamp = parsed
		case "v1":
			if value != "" {
				signatures = append(signatures, strings.ToLower(value))
			}
		}
	}
	if timestamp <= 0 {
		return 0, nil, fmt.Errorf("%w: timestamp is missing", ErrSignatureInvalid)
	}
	if len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: v1 signature is missing", ErrSignatureInvalid)
	}
	return timestamp, signatures, nil
}

// Gateway Stripe 适配器
type Gateway struct {
	cfg Config
	now func() time.Time
}

// New 创建 Stripe 适配器
func New(cfg Config) *Gateway {
	return &Gateway{cfg: cfg, now: time.Now}
}

// Name 网关名称
func (g *Gateway) Name() string {
	return constants.PaymentFlowStripe
}

// ParseWebhook 校验签名并转换为统一支付事件
func (g *Gateway) ParseWebhook(_ context.Context, req payment.WebhookRequest) (*payment.Event, error) {
	result, err := VerifyAndParseWebhook(&g.cfg, req.Headers, req.Body, g.now())
	if err != nil {
		switch {
		case errors.Is(err, ErrSignatureInvalid):
			return nil, errors.Join(payment.ErrSignatureInvalid, err)
		case errors.Is(err, ErrConfigInvalid):
			return nil, errors.Join(payment.ErrGatewayUnavailable, err)
		default:
			return nil, errors.Join(payment.ErrPayloadInvalid, err)
		}
	}
	return &payment.Event{
		Gateway:          constants.PaymentFlowStripe,
		EventID:          result.EventID,
		EventType:        result.EventType,
		GatewayPaymentID: result.GatewayPaymentID(),
		Status:           result.Status,
		Amount:           result.Amount,
		Currency:         result.Currency,
		Method:           result.Method,
		PayerUserID:      result.UserID,
		PayerEmail:       result.CustomerEmail,
		AffiliateID:      result.AffiliateID,
		PaidAt:           result.PaidAt,
		Raw:              result.Raw,
	}, nil
}
