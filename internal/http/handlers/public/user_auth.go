package public

import (
	"time"

	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/i18n"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Nome            string `json:"nome"`
	Email           string `json:"email" binding:"required"`
	Senha           string `json:"senha" binding:"required"`
	CodigoIndicacao string `json:"codigo_indicacao"`
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email string `json:"email" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}

// UserRegister 用户注册，可携带推荐码
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(service.UserRegisterInput{
		Nome:            req.Nome,
		Email:           req.Email,
		Senha:           req.Senha,
		CodigoIndicacao: req.CodigoIndicacao,
	})
	if err != nil {
		respondUserRegisterError(c, err)
		return
	}

	requestLog(c).Infow("user_registered",
		"user_id", user.ID,
		"referrer_id", user.IDIndicador,
	)
	response.Created(c, i18n.T(i18n.ResolveLocale(c), "message.user_registered"), userAuthPayload(user, token, expiresAt))
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Senha)
	if err != nil {
		respondUserLoginError(c, err)
		return
	}
	response.Success(c, userAuthPayload(user, token, expiresAt))
}

func userAuthPayload(user *models.Usuario, token string, expiresAt time.Time) gin.H {
	return gin.H{
		"user": gin.H{
			"id":               user.ID,
			"nome":             user.Nome,
			"email":            user.Email,
			"codigo_indicacao": user.CodigoIndicacao,
			"id_indicador":     user.IDIndicador,
		},
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	}
}
