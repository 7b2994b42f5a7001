package public

import "github.com/receitas-next/internal/provider"

// Handler 用户侧接口与支付网关回调
type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
