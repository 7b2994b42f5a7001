package admin

import (
	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/i18n"
	"github.com/receitas-next/internal/models"

	"github.com/gin-gonic/gin"
)

// ReleaseBalanceRequest 人工释放请求
type ReleaseBalanceRequest struct {
	IDUsuario uint         `json:"id_usuario" binding:"required"`
	Valor     models.Money `json:"valor"`
}

// ReleaseBalance 提前把待成熟佣金转为可提现（整条晋升）
func (h *Handler) ReleaseBalance(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req ReleaseBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.BalanceService.ReleaseBalance(c.Request.Context(), req.IDUsuario, req.Valor.Decimal, adminID)
	if err != nil {
		requestLog(c).Warnw("admin_balance_release_failed",
			"user_id", req.IDUsuario,
			"admin_id", adminID,
			"amount", req.Valor.String(),
			"error", err,
		)
		respondBalanceReleaseError(c, err)
		return
	}
	h.recordAudit(c, constants.AuditActionBalanceRelease, constants.AuditTargetUser, req.IDUsuario, models.JSON{
		"valor_solicitado": req.Valor.String(),
		"liberado":         result.Released.String(),
		"comissoes":        result.CommissionIDs,
	})
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.balance_released"), result)
}

// RecomputeUserBalance 由佣金记录重建用户余额缓存
func (h *Handler) RecomputeUserBalance(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "error.user_id_invalid")
	if !ok {
		return
	}

	snapshot, err := h.BalanceService.RecomputeBalances(c.Request.Context(), userID)
	if err != nil {
		respondBalanceRecomputeError(c, err)
		return
	}
	requestLog(c).Infow("admin_balance_recomputed", "user_id", userID, "admin_id", adminID)
	pending := models.NewMoneyFromDecimal(snapshot.Pending)
	available := models.NewMoneyFromDecimal(snapshot.Available)
	h.recordAudit(c, constants.AuditActionBalanceRecompute, constants.AuditTargetUser, userID, models.JSON{
		"saldo_pendente":   pending.String(),
		"saldo_disponivel": available.String(),
	})
	response.Success(c, gin.H{
		"user_id":          userID,
		"saldo_pendente":   pending,
		"saldo_disponivel": available,
		"saldo":            models.NewMoneyFromDecimal(snapshot.Total()),
	})
}
