package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/receitas-next/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 后台管理员读取与登录记录
type AdminRepository interface {
	GetByUsername(username string) (*models.Admin, error)
	GetByID(id uint) (*models.Admin, error)
	TouchLastLogin(id uint, at time.Time) error
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// GetByUsername 未找到返回 nil, nil
func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	return r.takeAdmin(r.db.Where("username = ?", username))
}

// GetByID 未找到返回 nil, nil
func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	if id == 0 {
		return nil, nil
	}
	return r.takeAdmin(r.db.Where("id = ?", id))
}

// TouchLastLogin 只写 last_login_at，不影响令牌字段
func (r *GormAdminRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
}

func (r *GormAdminRepository) takeAdmin(query *gorm.DB) (*models.Admin, error) {
	var admin models.Admin
	err := query.Take(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}
