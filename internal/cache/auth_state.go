package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/receitas-next/internal/models"
)

// 鉴权快照缓存时长，禁用或改密时主动失效
const authStateTTL = 10 * time.Minute

// UserAuthState 中间件校验用户令牌所需的最小字段
type UserAuthState struct {
	UserID             uint   `json:"user_id"`
	Status             string `json:"status"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"` // Unix 秒，0 为未设置
	CachedAt           int64  `json:"cached_at"`
}

// AdminAuthState 中间件校验管理员令牌所需的最小字段
type AdminAuthState struct {
	AdminID            uint   `json:"admin_id"`
	Username           string `json:"username"`
	IsSuper            bool   `json:"is_super"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	CachedAt           int64  `json:"cached_at"`
}

func authKey(kind string, id uint) string {
	return Key("auth", kind, strconv.FormatUint(uint64(id), 10))
}

func unixOrZero(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}

// BuildUserAuthState 由用户记录生成快照
func BuildUserAuthState(user *models.Usuario) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{
		UserID:             user.ID,
		Status:             user.Status,
		TokenVersion:       user.TokenVersion,
		TokenInvalidBefore: unixOrZero(user.TokenInvalidBefore),
		CachedAt:           time.Now().Unix(),
	}
}

// BuildAdminAuthState 由管理员记录生成快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	return &AdminAuthState{
		AdminID:            admin.ID,
		Username:           admin.Username,
		IsSuper:            admin.IsSuper,
		TokenVersion:       admin.TokenVersion,
		TokenInvalidBefore: unixOrZero(admin.TokenInvalidBefore),
		CachedAt:           time.Now().Unix(),
	}
}

func loadState[T any](ctx context.Context, kind string, id uint) (*T, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	state := new(T)
	hit, err := GetJSON(ctx, authKey(kind, id), state)
	if err != nil || !hit {
		return nil, false, err
	}
	return state, true, nil
}

func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	return loadState[UserAuthState](ctx, "user", userID)
}

func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, authKey("user", state.UserID), state, authStateTTL)
}

// DelUserAuthState 用户状态变化后调用，下一次请求回源数据库
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, authKey("user", userID))
}

func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	return loadState[AdminAuthState](ctx, "admin", adminID)
}

func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, authKey("admin", state.AdminID), state, authStateTTL)
}

func DelAdminAuthState(ctx context.Context, adminID uint) error {
	if adminID == 0 {
		return nil
	}
	return Del(ctx, authKey("admin", adminID))
}
