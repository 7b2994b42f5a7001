package shared

import (
	"errors"

	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/i18n"
	"github.com/receitas-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RespondPasswordPolicyError 渲染带参数的密码策略错误；非策略错误返回 false。
func RespondPasswordPolicyError(c *gin.Context, err error) bool {
	if !errors.Is(err, service.ErrWeakPassword) {
		return false
	}
	var perr interface {
		Key() string
		Args() []interface{}
	}
	if errors.As(err, &perr) {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), perr.Key(), perr.Args()...)
		response.Error(c, response.CodeBadRequest, msg)
		return true
	}
	RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
	return true
}
