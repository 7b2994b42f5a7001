package payment

import (
	"context"
	"errors"
	"strings"
	"time"
)

// 网关无关的错误，适配器需用 errors.Join 包装自身错误
var (
	ErrSignatureInvalid   = errors.New("webhook signature invalid")
	ErrPayloadInvalid     = errors.New("webhook payload invalid")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayNotFound    = errors.New("payment gateway not found")
)

// 归一化后的支付状态
const (
	StatusSuccess = "success"
	StatusPending = "pending"
	StatusFailed  = "failed"
	StatusIgnored = "ignored" // 非支付类事件
)

// WebhookRequest 原始回调请求
type WebhookRequest struct {
	Headers map[string]string
	Query   map[string]string
	Body    []byte
}

// Header 忽略大小写读取请求头
func (r WebhookRequest) Header(key string) string {
	return LookupFold(r.Headers, key)
}

// QueryValue 忽略大小写读取查询参数
func (r WebhookRequest) QueryValue(key string) string {
	return LookupFold(r.Query, key)
}

// Event 网关确认的支付事件
type Event struct {
	Gateway          string
	EventID          string
	EventType        string
	GatewayPaymentID string // 幂等键
	Status           string
	Amount           string
	Currency         string
	Method           string
	PayerUserID      uint
	PayerEmail       string
	AffiliateID      uint // 元数据中的推广者，0 表示未携带
	PaidAt           *time.Time
	Raw              map[string]interface{}
}

// IsSuccess 是否支付成功
func (e *Event) IsSuccess() bool {
	return e != nil && e.Status == StatusSuccess
}

// Gateway 支付网关适配器
type Gateway interface {
	Name() string
	ParseWebhook(ctx context.Context, req WebhookRequest) (*Event, error)
}

// Registry 已启用网关
type Registry struct {
	gateways map[string]Gateway
}

// NewRegistry 创建网关注册表，nil 项会被忽略
func NewRegistry(gateways ...Gateway) *Registry {
	registry := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, gateway := range gateways {
		if gateway == nil {
			continue
		}
		registry.gateways[strings.ToLower(gateway.Name())] = gateway
	}
	return registry
}

// Get 按名称获取网关
func (r *Registry) Get(name string) (Gateway, error) {
	if r == nil {
		return nil, ErrGatewayNotFound
	}
	gateway, ok := r.gateways[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrGatewayNotFound
	}
	return gateway, nil
}
