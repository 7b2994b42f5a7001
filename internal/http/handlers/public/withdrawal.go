package public

import (
	"strings"

	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/i18n"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/service"

	"github.com/gin-gonic/gin"
)

// WithdrawalRequest 提现申请请求，valor 接受数字或 "50,00" 形式的字符串
type WithdrawalRequest struct {
	Valor          models.Money `json:"valor"`
	ChavePix       string       `json:"chave_pix"`
	DadosBancarios models.JSON  `json:"dados_bancarios"`
}

// RequestWithdrawal 提交提现申请
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	withdrawal, err := h.WithdrawalService.RequestWithdrawal(c.Request.Context(), service.WithdrawalRequestInput{
		UserID:      uid,
		Amount:      req.Valor.Decimal,
		PixKey:      strings.TrimSpace(req.ChavePix),
		BankDetails: req.DadosBancarios,
	})
	if err != nil {
		requestLog(c).Warnw("withdrawal_request_failed",
			"user_id", uid,
			"amount", req.Valor.String(),
			"error", err,
		)
		respondWithdrawalRequestError(c, err)
		return
	}

	response.Created(c, i18n.T(i18n.ResolveLocale(c), "message.withdrawal_requested"), withdrawal)
}

// ListWithdrawals 当前用户提现记录
func (h *Handler) ListWithdrawals(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	rows, err := h.WithdrawalService.ListUserWithdrawals(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, rows)
}
