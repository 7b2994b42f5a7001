package admin

import (
	"strconv"
	"strings"

	"github.com/receitas-next/internal/constants"
	handlershared "github.com/receitas-next/internal/http/handlers/shared"
	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/service"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, constants.ContextKeyAdminID, "error.admin_id_invalid", "error.admin_id_type_invalid")
}

// parseIDParam 解析路径中的正整数 ID
func parseIDParam(c *gin.Context, invalidKey string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, invalidKey, nil)
		return 0, false
	}
	return uint(id), true
}

// recordAudit 记录后台操作审计，操作人取自鉴权上下文
func (h *Handler) recordAudit(c *gin.Context, action, targetType string, targetID uint, detail models.JSON) {
	h.AdminAuditService.Record(service.AdminAuditRecordInput{
		OperatorAdminID:  c.GetUint(constants.ContextKeyAdminID),
		OperatorUsername: c.GetString("username"),
		Action:           action,
		TargetType:       targetType,
		TargetID:         targetID,
		RequestID:        c.GetString("request_id"),
		Detail:           detail,
	})
}
