package admin

import (
	"errors"
	"time"

	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/i18n"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/queue"
	"github.com/receitas-next/internal/service"

	"github.com/gin-gonic/gin"
)

const manualMaturationUniqueWindow = time.Minute

// GetLedgerSettings 获取账本策略
func (h *Handler) GetLedgerSettings(c *gin.Context) {
	setting, err := h.SettingService.GetLedgerSetting(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, setting)
}

// UpdateLedgerSettings 更新账本策略，只影响之后产生的佣金
func (h *Handler) UpdateLedgerSettings(c *gin.Context) {
	var req service.LedgerSetting
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.UpdateLedgerSetting(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrLedgerConfigInvalid) {
			requestLog(c).Warnw("admin_ledger_settings_invalid", "error", err)
			respondError(c, response.CodeBadRequest, "error.ledger_config_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	requestLog(c).Infow("admin_ledger_settings_updated",
		"admin_id", c.GetUint(constants.ContextKeyAdminID),
		"commission_value", setting.CommissionValue,
		"maturation_days", setting.MaturationDays,
		"min_withdraw_amount", setting.MinWithdrawAmount,
	)
	h.recordAudit(c, constants.AuditActionLedgerSettings, constants.AuditTargetSetting, 0, models.JSON{
		"key":                 constants.SettingKeyLedgerConfig,
		"commission_value":    setting.CommissionValue,
		"maturation_days":     setting.MaturationDays,
		"min_withdraw_amount": setting.MinWithdrawAmount,
	})
	response.Success(c, setting)
}

// TriggerCommissionMaturation 手动触发成熟扫描：队列可用时异步，否则同步执行
func (h *Handler) TriggerCommissionMaturation(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	err := h.QueueClient.EnqueueMatureCommissions(queue.MatureCommissionsPayload{
		RequestedBy: adminID,
		Source:      "admin",
	}, manualMaturationUniqueWindow)
	if err == nil {
		h.recordAudit(c, constants.AuditActionCommissionMature, "", 0, models.JSON{"queued": true})
		response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.commission_maturation_queued"), gin.H{"queued": true})
		return
	}
	if !errors.Is(err, queue.ErrQueueDisabled) {
		requestLog(c).Warnw("admin_commission_maturation_enqueue_failed", "admin_id", adminID, "error", err)
	}

	affected, err := h.CommissionService.MatureDueCommissions(c.Request.Context(), time.Now().UTC())
	if err != nil {
		if errors.Is(err, service.ErrLedgerBusy) {
			respondError(c, response.CodeInternal, "error.ledger_busy", err)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	h.recordAudit(c, constants.AuditActionCommissionMature, "", 0, models.JSON{"queued": false, "matured": affected})
	response.Success(c, gin.H{"queued": false, "matured": affected})
}
