package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin 后台操作员，负责审核提现与人工放款
type Admin struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Username     string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"size:128;not null" json:"-"`
	IsSuper      bool       `gorm:"not null;default:false;index" json:"is_super"` // 跳过 RBAC 校验
	LastLoginAt  *time.Time `json:"last_login_at"`

	// 递增 TokenVersion 或设置 TokenInvalidBefore 可让已签发令牌失效
	TokenVersion       uint64     `gorm:"not null;default:0" json:"-"`
	TokenInvalidBefore *time.Time `gorm:"index" json:"-"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Admin) TableName() string {
	return "admins"
}
