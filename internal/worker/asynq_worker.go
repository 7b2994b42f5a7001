package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/provider"
	"github.com/receitas-next/internal/queue"
	"github.com/receitas-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	now func() time.Time
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
		now:       time.Now,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskLedgerNotify, c.handleLedgerNotify)
	mux.HandleFunc(queue.TaskLedgerMatureCommission, c.handleMatureCommissions)
}

func (c *Consumer) handleLedgerNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_ledger_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.LedgerNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_ledger_notify_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_ledger_notify_skip_invalid_payload", "type", payload.Type)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_ledger_notify_skip_service_nil", "user_id", payload.UserID)
		return nil
	}
	err := c.NotificationService.Dispatch(service.LedgerNotification{
		UserID:  payload.UserID,
		Type:    payload.Type,
		Title:   payload.Title,
		Message: payload.Message,
	})
	if err != nil {
		logger.Warnw("worker_ledger_notify_dispatch_failed",
			"user_id", payload.UserID,
			"type", payload.Type,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleMatureCommissions(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_mature_commissions_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.MatureCommissionsPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			logger.Warnw("worker_mature_commissions_unmarshal_failed", "error", err)
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
	}
	if c.CommissionService == nil {
		logger.Warnw("worker_mature_commissions_skip_service_nil")
		return nil
	}
	affected, err := c.CommissionService.MatureDueCommissions(ctx, c.now())
	if err != nil {
		logger.Warnw("worker_mature_commissions_failed",
			"source", payload.Source,
			"requested_by", payload.RequestedBy,
			"error", err,
		)
		return err
	}
	logger.Debugw("worker_mature_commissions_done",
		"source", payload.Source,
		"requested_by", payload.RequestedBy,
		"affected", affected,
	)
	return nil
}
