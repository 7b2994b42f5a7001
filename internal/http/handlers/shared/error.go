package shared

import (
	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/i18n"
	"github.com/receitas-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 携带 request_id 与当前操作人的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	fields := make([]interface{}, 0, 6)
	if id := c.GetString("request_id"); id != "" {
		fields = append(fields, "request_id", id)
	}
	if uid := c.GetUint(constants.ContextKeyUserID); uid != 0 {
		fields = append(fields, "user_id", uid)
	}
	if adminID := c.GetUint(constants.ContextKeyAdminID); adminID != 0 {
		fields = append(fields, "admin_id", adminID)
	}
	return logger.SW(fields...)
}

// RespondError 返回国际化错误响应；5xx 记 error，带原始错误的 4xx 记 warn
func RespondError(c *gin.Context, code int, key string, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	if err != nil || code >= response.CodeInternal {
		log := RequestLog(c)
		if code >= response.CodeInternal {
			log.Errorw("handler_error", "code", code, "key", key, "error", err)
		} else {
			log.Warnw("handler_rejected", "code", code, "key", key, "error", err)
		}
	}
	response.Error(c, code, msg)
}
