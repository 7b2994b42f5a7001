package admin

import (
	"strings"
	"time"

	"github.com/receitas-next/internal/cache"
	"github.com/receitas-next/internal/constants"
	handlershared "github.com/receitas-next/internal/http/handlers/shared"
	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// UpdateUserStatusRequest 启用/停用用户
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminUsers 用户列表（含余额快照）
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	filter := repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Status:   strings.ToLower(strings.TrimSpace(c.Query("status"))),
	}
	for key, target := range map[string]**time.Time{"created_from": &filter.CreatedFrom, "created_to": &filter.CreatedTo} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		*target = &parsed
	}

	users, total, err := h.UserRepo.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}

// UpdateUserStatus 停用后已签发 Token 立即失效，余额与佣金不受影响
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	userID, ok := parseIDParam(c, "error.user_id_invalid")
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	user, err := h.UserRepo.GetByID(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		return
	}
	if err := h.UserRepo.UpdateStatus(userID, status); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	_ = cache.DelUserAuthState(c.Request.Context(), userID)

	h.recordAudit(c, constants.AuditActionUserStatus, constants.AuditTargetUser, userID, models.JSON{
		"from": user.Status,
		"to":   status,
	})
	response.Success(c, gin.H{"id": userID, "status": status})
}
