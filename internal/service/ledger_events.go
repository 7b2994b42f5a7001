package service

import (
	"context"
	"time"

	"github.com/receitas-next/internal/events"
	"github.com/receitas-next/internal/logger"
)

const ledgerEventPublishTimeout = 5 * time.Second

// CommissionAccruedEvent 佣金入账事件
type CommissionAccruedEvent struct {
	CommissionID     uint      `json:"commission_id"`
	AffiliateID      uint      `json:"affiliate_id"`
	PayerUserID      uint      `json:"payer_user_id"`
	PaymentID        uint      `json:"payment_id"`
	GatewayPaymentID string    `json:"gateway_payment_id"`
	Flow             string    `json:"flow"`
	Amount           string    `json:"amount"`
	ReleaseAt        time.Time `json:"release_at"`
}

// CommissionMaturedEvent 佣金成熟事件（按推广者汇总）
type CommissionMaturedEvent struct {
	AffiliateID uint      `json:"affiliate_id"`
	Count       int64     `json:"count"`
	Amount      string    `json:"amount"`
	MaturedAt   time.Time `json:"matured_at"`
}

// BalanceReleasedEvent 人工释放余额事件
type BalanceReleasedEvent struct {
	UserID        uint   `json:"user_id"`
	AdminID       uint   `json:"admin_id"`
	Requested     string `json:"requested"`
	Released      string `json:"released"`
	CommissionIDs []uint `json:"commission_ids"`
}

// WithdrawalEvent 提现申请/审核事件
type WithdrawalEvent struct {
	WithdrawalID  uint   `json:"withdrawal_id"`
	AffiliateID   uint   `json:"affiliate_id"`
	Amount        string `json:"amount"`
	Allocated     string `json:"allocated"`
	Status        string `json:"status"`
	ProcessedBy   *uint  `json:"processed_by,omitempty"`
	CommissionIDs []uint `json:"commission_ids,omitempty"`
}

// publishLedgerEvent 事务提交后广播账本事件，失败只记录日志
func publishLedgerEvent(ctx context.Context, publisher events.Publisher, routingKey string, data interface{}) {
	if publisher == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	// 请求结束不应取消已提交事务的事件广播
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ledgerEventPublishTimeout)
	defer cancel()
	if err := publisher.Publish(pubCtx, routingKey, data); err != nil {
		logger.Warnw("ledger_event_publish_failed",
			"routing_key", routingKey,
			"error", err,
		)
	}
}
