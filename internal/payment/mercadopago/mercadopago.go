package mercadopago

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/payment"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid    = errors.New("mercadopago config invalid")
	ErrRequestFailed    = errors.New("mercadopago request failed")
	ErrResponseInvalid  = errors.New("mercadopago response invalid")
	ErrSignatureInvalid = errors.New("mercadopago signature invalid")
)

const (
	defaultAPIBaseURL = "https://api.mercadopago.com"
	defaultTimeout    = 10 * time.Second
)

// Config Mercado Pago 配置
type Config struct {
	AccessToken   string
	WebhookSecret string // 为空时跳过 x-signature 校验（仅限沙箱）
	APIBaseURL    string
	Timeout       time.Duration
}

func (c *Config) normalize() {
	c.AccessToken = strings.TrimSpace(c.AccessToken)
	c.WebhookSecret = strings.TrimSpace(c.WebhookSecret)
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Notification 回调通知（新版 webhook 与旧版 IPN 的 topic/id 两种形态）
type Notification struct {
	Topic  string
	DataID string
	Action string
}

// PaymentInfo GET /v1/payments/{id} 结果
type PaymentInfo struct {
	ID                string
	Status            string
	Amount            string
	Currency          string
	Method            string
	PayerEmail        string
	UserID            uint
	AffiliateID       uint
	ExternalReference string
	ApprovedAt        *time.Time
	Raw               map[string]interface{}
}

// ParseNotification 从查询参数与 body 中提取主题与数据ID
func ParseNotification(query map[string]string, body []byte) (*Notification, error) {
	n := &Notification{
		Topic:  payment.LookupFold(query, "type"),
		DataID: payment.LookupFold(query, "data.id"),
	}
	if n.Topic == "" {
		n.Topic = payment.LookupFold(query, "topic")
	}
	if n.DataID == "" {
		n.DataID = payment.LookupFold(query, "id")
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		raw, err := payment.DecodeRawMap(body)
		if err != nil {
			return nil, fmt.Errorf("%w: decode body failed", ErrResponseInvalid)
		}
		n.Action = payment.ReadString(raw, "action")
		if n.Topic == "" {
			n.Topic = payment.ReadString(raw, "type")
		}
		if n.Topic == "" {
			n.Topic = payment.ReadString(raw, "topic")
		}
		if n.DataID == "" {
			n.DataID = payment.ReadString(payment.ReadMap(raw, "data"), "id")
		}
		if n.DataID == "" {
			n.DataID = payment.ReadString(raw, "id")
		}
	}
	n.Topic = strings.ToLower(strings.TrimSpace(n.Topic))
	return n, nil
}

// VerifySignature 校验 x-signature: ts=...,v1=...，签名清单为 id:{data.id};request-id:{x-request-id};ts:{ts};
func VerifySignature(secret string, headers map[string]string, dataID string) error {
	signature := payment.LookupFold(headers, "x-signature")
	if signature == "" {
		return fmt.Errorf("%w: x-signature is required", ErrSignatureInvalid)
	}
	var ts, v1 string
	for _, part := range strings.Split(signature, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.TrimSpace(kv[0]) {
		case "ts":
			ts = strings.TrimSpace(kv[1])
		case "v1":
			v1 = strings.ToLower(strings.TrimSpace(kv[1]))
		}
	}
	if ts == "" || v1 == "" {
		return fmt.Errorf("%w: malformed x-signature", ErrSignatureInvalid)
	}
	expected := computeSignature(secret, buildManifest(dataID, payment.LookupFold(headers, "x-request-id"), ts))
	if !hmac.Equal([]byte(v1), []byte(expected)) {
		return fmt.Errorf("%w: verify failed", ErrSignatureInvalid)
	}
	return nil
}

func buildManifest(dataID, requestID, ts string) string {
	var b strings.Builder
	if dataID != "" {
		b.WriteString("id:" + strings.ToLower(dataID) + ";")
	}
	if requestID != "" {
		b.WriteString("request-id:" + requestID + ";")
	}
	b.WriteString("ts:" + ts + ";")
	return b.String()
}

func computeSignature(secret, manifest string) string {
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write([]byte(manifest))
	return hex.EncodeToString(h.Sum(nil))
}

// Client 支付查询客户端
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient 创建客户端，httpClient 为空时按超时新建
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.normalize()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// GetPayment 查询支付详情
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*PaymentInfo, error) {
	if c.cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: access_token is required", ErrConfigInvalid)
	}
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, fmt.Errorf("%w: payment id is required", ErrResponseInvalid)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := c.cfg.APIBaseURL + "/v1/payments/" + url.PathEscape(paymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed", ErrRequestFailed)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: payment %s not found", ErrResponseInvalid, paymentID)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d", ErrResponseInvalid, resp.StatusCode)
	}

	raw, err := payment.DecodeRawMap(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode payment failed", ErrResponseInvalid)
	}
	return parsePaymentInfo(raw)
}

func parsePaymentInfo(raw map[string]interface{}) (*PaymentInfo, error) {
	info := &PaymentInfo{
		ID:                payment.ReadString(raw, "id"),
		Status:            strings.ToLower(payment.ReadString(raw, "status")),
		Currency:          strings.ToUpper(payment.ReadString(raw, "currency_id")),
		Method:            payment.ReadString(raw, "payment_method_id"),
		PayerEmail:        payment.ReadString(payment.ReadMap(raw, "payer"), "email"),
		ExternalReference: payment.ReadString(raw, "external_reference"),
		Raw:               raw,
	}
	if info.ID == "" {
		return nil, fmt.Errorf("%w: missing payment id", ErrResponseInvalid)
	}
	if amount, err := decimal.NewFromString(payment.ReadString(raw, "transaction_amount")); err == nil {
		info.Amount = amount.StringFixed(2)
	}
	metadata := payment.ReadMap(raw, "metadata")
	info.UserID = payment.ParseUintID(payment.ReadString(metadata, "user_id"))
	info.AffiliateID = payment.ParseUintID(payment.ReadString(metadata, "affiliate_id"))
	refUser, refAffiliate := payment.ParseExternalReference(info.ExternalReference)
	if info.UserID == 0 {
		info.UserID = refUser
	}
	if info.AffiliateID == 0 {
		info.AffiliateID = refAffiliate
	}
	if approved := payment.ReadString(raw, "date_approved"); approved != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, approved); err == nil {
			utc := parsed.UTC()
			info.ApprovedAt = &utc
		}
	}
	return info, nil
}

func mapStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved":
		return payment.StatusSuccess
	case "rejected", "cancelled", "refunded", "charged_back":
		return payment.StatusFailed
	default:
		return payment.StatusPending
	}
}

// Gateway Mercado Pago 适配器
type Gateway struct {
	cfg    Config
	client *Client
}

// New 创建适配器
func New(cfg Config, httpClient *http.Client) *Gateway {
	cfg.normalize()
	return &Gateway{cfg: cfg, client: NewClient(cfg, httpClient)}
}

// Name 网关名称
func (g *Gateway) Name() string {
	return constants.PaymentFlowMercadoPago
}

// ParseWebhook 校验签名、回查支付并转换为统一事件
func (g *Gateway) ParseWebhook(ctx context.Context, req payment.WebhookRequest) (*payment.Event, error) {
	notification, err := ParseNotification(req.Query, req.Body)
	if err != nil {
		return nil, errors.Join(payment.ErrPayloadInvalid, err)
	}
	if g.cfg.WebhookSecret != "" {
		if err := VerifySignature(g.cfg.WebhookSecret, req.Headers, notification.DataID); err != nil {
			return nil, errors.Join(payment.ErrSignatureInvalid, err)
		}
	}

	event := &payment.Event{
		Gateway:   constants.PaymentFlowMercadoPago,
		EventType: notification.Topic,
		Status:    payment.StatusIgnored,
	}
	if notification.Action != "" {
		event.EventType = notification.Action
	}
	if notification.Topic != "payment" || notification.DataID == "" {
		return event, nil
	}

	info, err := g.client.GetPayment(ctx, notification.DataID)
	if err != nil {
		switch {
		case errors.Is(err, ErrResponseInvalid):
			return nil, errors.Join(payment.ErrPayloadInvalid, err)
		default:
			return nil, errors.Join(payment.ErrGatewayUnavailable, err)
		}
	}
	event.GatewayPaymentID = info.ID
	event.Status = mapStatus(info.Status)
	event.Amount = info.Amount
	event.Currency = info.Currency
	event.Method = info.Method
	event.PayerUserID = info.UserID
	event.PayerEmail = info.PayerEmail
	event.AffiliateID = info.AffiliateID
	event.PaidAt = info.ApprovedAt
	event.Raw = info.Raw
	return event, nil
}
