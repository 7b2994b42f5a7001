package queue

import (
	"encoding/json"

	"github.com/receitas-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskLedgerNotify 账本站内通知任务
	TaskLedgerNotify = constants.TaskLedgerNotify
	// TaskLedgerMatureCommission 佣金成熟扫描任务
	TaskLedgerMatureCommission = constants.TaskLedgerMatureCommission
)

// LedgerNotifyPayload 站内通知任务载荷
type LedgerNotifyPayload struct {
	UserID  uint   `json:"user_id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// MatureCommissionsPayload 成熟扫描任务载荷
type MatureCommissionsPayload struct {
	RequestedBy uint   `json:"requested_by"` // 0 表示定时触发
	Source      string `json:"source"`
}

// NewLedgerNotifyTask 创建通知任务
func NewLedgerNotifyTask(payload LedgerNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerNotify, body), nil
}

// NewMatureCommissionsTask 创建成熟扫描任务
func NewMatureCommissionsTask(payload MatureCommissionsPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerMatureCommission, body), nil
}
