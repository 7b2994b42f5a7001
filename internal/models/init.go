package models

import (
	"strings"

	"github.com/receitas-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	bootstrapAdminUsername = "admin"
	bootstrapAdminPassword = "admin123"
)

// InitDefaultAdmin 管理员表为空时写入初始超级管理员；已有数据时只保证 admin 账号为超级管理员
func InitDefaultAdmin(username, password string) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&Admin{}).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			res := tx.Model(&Admin{}).
				Where("username = ? AND is_super = ?", bootstrapAdminUsername, false).
				Update("is_super", true)
			if res.Error != nil {
				logger.Warnw("bootstrap_admin_promote_failed", "error", res.Error)
			}
			return nil
		}
		return createBootstrapAdmin(tx, username, password)
	})
}

func createBootstrapAdmin(tx *gorm.DB, username, password string) error {
	name := strings.TrimSpace(username)
	if name == "" {
		name = bootstrapAdminUsername
	}
	usingDefault := password == ""
	if usingDefault {
		password = bootstrapAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &Admin{
		Username:     name,
		PasswordHash: string(hash),
		IsSuper:      strings.EqualFold(name, bootstrapAdminUsername),
	}
	if err := tx.Create(admin).Error; err != nil {
		return err
	}
	if usingDefault {
		logger.Warnw("bootstrap_admin_default_password", "username", name)
		return nil
	}
	logger.Infow("bootstrap_admin_created", "username", name, "is_super", admin.IsSuper)
	return nil
}
