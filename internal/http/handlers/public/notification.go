package public

import (
	"strconv"

	handlershared "github.com/receitas-next/internal/http/handlers/shared"
	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// MarkNotificationsReadRequest 标记已读请求，ids 为空时标记全部
type MarkNotificationsReadRequest struct {
	IDs []uint `json:"ids"`
}

// ListNotifications 当前用户站内通知
func (h *Handler) ListNotifications(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, pageSize := handlershared.ParsePagination(c)
	onlyUnread, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))

	rows, total, err := h.NotificationService.List(repository.NotificationListFilter{
		UserID:     uid,
		OnlyUnread: onlyUnread,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// MarkNotificationsRead 标记通知已读
func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req MarkNotificationsReadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}

	updated, err := h.NotificationService.MarkRead(uid, req.IDs)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"updated": updated})
}
