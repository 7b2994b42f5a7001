package public

import (
	"errors"

	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCommissions 当前用户佣金明细与余额
func (h *Handler) GetCommissions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	overview, err := h.BalanceService.GetCommissionOverview(uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, overview)
}
