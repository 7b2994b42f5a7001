package repository

import (
	"time"

	"github.com/receitas-next/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository 站内通知数据访问接口
type NotificationRepository interface {
	Create(notification *models.Notificacao) error
	List(filter NotificationListFilter) ([]models.Notificacao, int64, error)
	MarkRead(userID uint, ids []uint) (int64, error)
}

// GormNotificationRepository GORM 实现
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create 写入通知
func (r *GormNotificationRepository) Create(notification *models.Notificacao) error {
	if notification == nil {
		return nil
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	return r.db.Create(notification).Error
}

// List 用户通知列表（新到旧）
func (r *GormNotificationRepository) List(filter NotificationListFilter) ([]models.Notificacao, int64, error) {
	rows := make([]models.Notificacao, 0)
	if filter.UserID == 0 {
		return rows, 0, nil
	}
	query := r.db.Model(&models.Notificacao{}).Where("id_usuario = ?", filter.UserID)
	if filter.OnlyUnread {
		query = query.Where("lida = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkRead 标记已读，ids 为空时标记全部
func (r *GormNotificationRepository) MarkRead(userID uint, ids []uint) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	query := r.db.Model(&models.Notificacao{}).Where("id_usuario = ? AND lida = ?", userID, false)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	result := query.Update("lida", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
