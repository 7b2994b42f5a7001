package admin

import "github.com/receitas-next/internal/provider"

// Handler 后台接口：提现审核、余额放款、账本配置、用户与权限管理
type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
