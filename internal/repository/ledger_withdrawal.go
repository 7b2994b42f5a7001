package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/receitas-next/internal/models"

	"gorm.io/gorm"
)

// WithdrawalListFilter 后台提现列表筛选
type WithdrawalListFilter struct {
	Status      string
	AffiliateID uint
	Keyword     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// CreateWithdrawal 写入提现申请
func (r *GormLedgerRepository) CreateWithdrawal(withdrawal *models.Saque) error {
	if withdrawal == nil {
		return nil
	}
	return r.db.Create(withdrawal).Error
}

// GetWithdrawalByIDForUpdate 锁定提现申请
func (r *GormLedgerRepository) GetWithdrawalByIDForUpdate(id uint) (*models.Saque, error) {
	if id == 0 {
		return nil, nil
	}
	var withdrawal models.Saque
	if err := r.locking().Where("id = ?", id).First(&withdrawal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &withdrawal, nil
}

// UpdateWithdrawal 保存提现申请
func (r *GormLedgerRepository) UpdateWithdrawal(withdrawal *models.Saque) error {
	if withdrawal == nil {
		return nil
	}
	return r.db.Omit("Usuario", "Comissoes").Save(withdrawal).Error
}

// ListWithdrawalsByAffiliate 用户自己的提现记录
func (r *GormLedgerRepository) ListWithdrawalsByAffiliate(affiliateID uint) ([]models.Saque, error) {
	rows := make([]models.Saque, 0)
	if affiliateID == 0 {
		return rows, nil
	}
	if err := r.db.Where("id_afiliado = ?", affiliateID).Order("id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListWithdrawals 后台提现列表（带申请人）
func (r *GormLedgerRepository) ListWithdrawals(filter WithdrawalListFilter) ([]models.Saque, int64, error) {
	query := r.db.Model(&models.Saque{})

	if filter.AffiliateID != 0 {
		query = query.Where("saques.id_afiliado = ?", filter.AffiliateID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("saques.status = ?", status)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"u.email", "u.nome", "saques.chave_pix_usada"})
		query = query.
			Joins("LEFT JOIN usuarios u ON u.id = saques.id_afiliado").
			Where(condition, repeatLikeArgs("%"+keyword+"%", argCount)...)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("saques.data_solicitacao >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("saques.data_solicitacao <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Saque
	if err := query.
		Preload("Usuario", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped().Select("id", "nome", "email")
		}).
		Order("saques.id desc").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
