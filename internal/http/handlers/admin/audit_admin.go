package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/receitas-next/internal/http/handlers/shared"
	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminAuditLogs 后台操作审计列表
func (h *Handler) GetAdminAuditLogs(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	filter := repository.AdminAuditLogListFilter{
		Page:       page,
		PageSize:   pageSize,
		Action:     strings.TrimSpace(c.Query("action")),
		TargetType: strings.TrimSpace(c.Query("target_type")),
	}
	if raw := strings.TrimSpace(c.Query("operator_admin_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
			return
		}
		filter.OperatorAdminID = uint(id)
	}
	if raw := strings.TrimSpace(c.Query("target_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		filter.TargetID = uint(id)
	}
	if raw := strings.TrimSpace(c.Query("created_from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		filter.CreatedFrom = &from
	}
	if raw := strings.TrimSpace(c.Query("created_to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		filter.CreatedTo = &to
	}

	logs, total, err := h.AdminAuditService.ListForAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(filter.Page, filter.PageSize, total))
}
